package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge-io/worldforge/internal/naming"
	"github.com/worldforge-io/worldforge/internal/profile"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return name
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	worldClass := writeArtifact(t, dir, "world.json", `{"sierra":"world"}`)
	worldCasm := writeArtifact(t, dir, "world.casm.json", `{"casm":"world"}`)
	actionsClass := writeArtifact(t, dir, "actions.json", `{"sierra":"actions"}`)
	positionClass := writeArtifact(t, dir, "position.json", `{"sierra":"position"}`)

	decl := &profile.Declaration{
		World: profile.ClassRef{
			ClassHash:     "0x1",
			CasmClassHash: "0x101",
			Artifact:      worldClass,
			CasmArtifact:  worldCasm,
		},
		Namespaces: []string{"arena"},
		Contracts: []profile.ResourceRef{{
			Namespace:     "arena",
			Name:          "actions",
			ClassHash:     "0x10",
			CasmClassHash: "0x110",
			Artifact:      actionsClass,
		}},
		Models: []profile.ResourceRef{{
			Namespace:     "arena",
			Name:          "Position",
			ClassHash:     "0x20",
			CasmClassHash: "0x120",
			Artifact:      positionClass,
		}},
	}
	prof := &profile.Profile{
		World: profile.WorldConfig{Seed: "test-seed"},
		Owners: map[string][]string{
			"arena": {"0xaaa"},
		},
		Writers: map[string][]string{
			"arena-Position": {"0xbbb"},
		},
	}

	local, err := LoadLocal(dir, decl, prof)
	require.NoError(t, err)

	assert.Equal(t, "test-seed", local.Seed)
	assert.Equal(t, "0x1", local.Artifact.ClassHash.String())
	assert.JSONEq(t, `{"sierra":"world"}`, string(local.Artifact.Class))
	assert.JSONEq(t, `{"casm":"world"}`, string(local.Artifact.CasmClass))

	nsSel := naming.SelectorFromName("arena")
	require.Contains(t, local.Namespaces, nsSel)

	contractSel := naming.SelectorFromNames("arena", "actions")
	contract, ok := local.Resources[contractSel].(*ContractLocal)
	require.True(t, ok)
	assert.Equal(t, "arena-actions", contract.Tag())
	// No casm artifact declared for the contract: blob stays empty.
	assert.Empty(t, contract.Common.Artifact.CasmClass)

	// Tag-addressed grants resolve to selectors. A dashless tag names a
	// namespace.
	owner, err := parseFelt("0xaaa")
	require.NoError(t, err)
	assert.True(t, local.Owners[nsSel][owner])

	modelSel := naming.SelectorFromNames("arena", "Position")
	writer, err := parseFelt("0xbbb")
	require.NoError(t, err)
	assert.True(t, local.Writers[modelSel][writer])
}

func TestLoadLocal_DefaultNamespace(t *testing.T) {
	dir := t.TempDir()
	worldClass := writeArtifact(t, dir, "world.json", `{}`)
	modelClass := writeArtifact(t, dir, "position.json", `{}`)

	decl := &profile.Declaration{
		World: profile.ClassRef{ClassHash: "0x1", CasmClassHash: "0x101", Artifact: worldClass},
		Models: []profile.ResourceRef{{
			Name:      "Position",
			ClassHash: "0x20", CasmClassHash: "0x120",
			Artifact: modelClass,
		}},
	}

	// With a default, the bare resource lands under it.
	prof := &profile.Profile{
		World:            profile.WorldConfig{Seed: "s"},
		DefaultNamespace: "arena",
	}
	local, err := LoadLocal(dir, decl, prof)
	require.NoError(t, err)
	require.Contains(t, local.Resources, naming.SelectorFromNames("arena", "Position"))

	// Without one, a bare resource is an error.
	prof.DefaultNamespace = ""
	_, err = LoadLocal(dir, decl, prof)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no namespace")
}

func TestLoadLocal_Errors(t *testing.T) {
	dir := t.TempDir()
	worldClass := writeArtifact(t, dir, "world.json", `{}`)

	validWorld := profile.ClassRef{
		ClassHash:     "0x1",
		CasmClassHash: "0x101",
		Artifact:      worldClass,
	}
	prof := &profile.Profile{World: profile.WorldConfig{Seed: "s"}}

	// Missing artifact file.
	_, err := LoadLocal(dir, &profile.Declaration{
		World: validWorld,
		Models: []profile.ResourceRef{{
			Namespace: "arena", Name: "Position",
			ClassHash: "0x20", CasmClassHash: "0x120",
			Artifact: "missing.json",
		}},
	}, prof)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arena-Position")

	// Malformed class hash.
	_, err = LoadLocal(dir, &profile.Declaration{
		World: profile.ClassRef{ClassHash: "not-a-felt", CasmClassHash: "0x101", Artifact: worldClass},
	}, prof)
	require.Error(t, err)

	// Duplicate declaration.
	ref := profile.ResourceRef{
		Namespace: "arena", Name: "Position",
		ClassHash: "0x20", CasmClassHash: "0x120",
		Artifact: worldClass,
	}
	_, err = LoadLocal(dir, &profile.Declaration{
		World:  validWorld,
		Models: []profile.ResourceRef{ref, ref},
	}, prof)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
