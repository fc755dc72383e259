package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/naming"
	"github.com/worldforge-io/worldforge/internal/world"
)

func TestResolveProjectDir(t *testing.T) {
	// No argument: the working directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir, err := resolveProjectDir(nil)
	require.NoError(t, err)
	assert.Equal(t, wd, dir)

	// An explicit directory resolves to its absolute path.
	tmp := t.TempDir()
	dir, err = resolveProjectDir([]string{tmp})
	require.NoError(t, err)
	assert.Equal(t, tmp, dir)

	// A file is rejected.
	file := filepath.Join(tmp, "profile.pkl")
	require.NoError(t, os.WriteFile(file, []byte("amends \"worldforge\"\n"), 0o644))
	_, err = resolveProjectDir([]string{file})
	assert.Error(t, err)

	// A missing path is rejected.
	_, err = resolveProjectDir([]string{filepath.Join(tmp, "nope")})
	assert.Error(t, err)
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestPrintResource(t *testing.T) {
	feltOf := func(v uint64) felt.Felt { return *new(felt.Felt).SetUint64(v) }

	contractSel := naming.SelectorFromNames("arena", "actions")
	modelSel := naming.SelectorFromNames("arena", "Position")

	remote, err := world.BuildRemoteFromEvents([]world.Event{
		world.WorldSpawned{Creator: feltOf(0xacc), ClassHash: feltOf(1)},
		world.NamespaceRegistered{Namespace: "arena"},
		world.ContractRegistered{Namespace: "arena", Name: "actions", ClassHash: feltOf(0x10), Address: feltOf(0x100)},
		world.ModelRegistered{Namespace: "arena", Name: "Position", ClassHash: feltOf(0x20), Address: feltOf(0x101)},
		world.ContractInitialized{Selector: contractSel},
		world.WriterUpdated{Resource: modelSel, Contract: contractSel, Value: true},
	})
	require.NoError(t, err)

	local := world.NewWorldLocal("test-seed", world.ClassArtifact{ClassHash: feltOf(1)})
	require.NoError(t, local.AddResource(&world.ContractLocal{Common: world.CommonLocal{
		Namespace: "arena",
		Name:      "actions",
		Artifact:  world.ClassArtifact{ClassHash: feltOf(0x10)},
	}}))

	p := &project{
		local:  local,
		remote: remote,
		diff:   diff.Compute(local, remote),
	}

	out := captureOutput(t, func() { printResource(p, contractSel, "  ") })
	assert.Contains(t, out, "contract arena-actions [synced]")
	assert.Contains(t, out, "address    0x100")
	assert.Contains(t, out, "class hash 0x10")
	assert.Contains(t, out, "initialized true")

	// A resource the declaration does not track still renders, flagged.
	out = captureOutput(t, func() { printResource(p, modelSel, "") })
	assert.Contains(t, out, "model arena-Position [untracked]")
	assert.Contains(t, out, "class hash 0x20")
	assert.Contains(t, out, "writer")

	// Unknown selectors print nothing.
	out = captureOutput(t, func() { printResource(p, feltOf(0xdead), "") })
	assert.Empty(t, out)
}
