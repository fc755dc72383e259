package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/naming"
	"github.com/worldforge-io/worldforge/internal/profile"
)

// LoadLocal materializes a declaration into the desired world state:
// artifact files are read from disk, hashes parsed, and the profile's
// permission grants attached by tag.
func LoadLocal(baseDir string, decl *profile.Declaration, prof *profile.Profile) (*WorldLocal, error) {
	worldArtifact, err := loadArtifact(baseDir, profile.ResourceRef{
		ClassHash:     decl.World.ClassHash,
		CasmClassHash: decl.World.CasmClassHash,
		Artifact:      decl.World.Artifact,
		CasmArtifact:  decl.World.CasmArtifact,
	})
	if err != nil {
		return nil, fmt.Errorf("world class: %w", err)
	}

	local := NewWorldLocal(prof.World.Seed, worldArtifact)

	for _, ns := range decl.Namespaces {
		local.AddNamespace(ns)
	}

	for _, ref := range decl.Contracts {
		common, err := loadCommon(baseDir, ref, prof.DefaultNamespace)
		if err != nil {
			return nil, err
		}
		if err := local.AddResource(&ContractLocal{Common: *common}); err != nil {
			return nil, err
		}
	}
	for _, ref := range decl.Models {
		common, err := loadCommon(baseDir, ref, prof.DefaultNamespace)
		if err != nil {
			return nil, err
		}
		if err := local.AddResource(&ModelLocal{Common: *common}); err != nil {
			return nil, err
		}
	}
	for _, ref := range decl.Events {
		common, err := loadCommon(baseDir, ref, prof.DefaultNamespace)
		if err != nil {
			return nil, err
		}
		if err := local.AddResource(&EventLocal{Common: *common}); err != nil {
			return nil, err
		}
	}

	if err := applyGrants(local, prof.Owners, local.GrantOwner); err != nil {
		return nil, err
	}
	if err := applyGrants(local, prof.Writers, local.GrantWriter); err != nil {
		return nil, err
	}

	return local, nil
}

func loadCommon(baseDir string, ref profile.ResourceRef, defaultNamespace string) (*CommonLocal, error) {
	namespace := ref.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	if namespace == "" {
		return nil, fmt.Errorf("resource %s has no namespace and the profile declares no default", ref.Name)
	}

	artifact, err := loadArtifact(baseDir, ref)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", naming.Tag(namespace, ref.Name), err)
	}
	return &CommonLocal{
		Namespace: namespace,
		Name:      ref.Name,
		Artifact:  artifact,
	}, nil
}

func loadArtifact(baseDir string, ref profile.ResourceRef) (ClassArtifact, error) {
	hash, err := parseFelt(ref.ClassHash)
	if err != nil {
		return ClassArtifact{}, fmt.Errorf("invalid class hash %q: %w", ref.ClassHash, err)
	}
	casmHash, err := parseFelt(ref.CasmClassHash)
	if err != nil {
		return ClassArtifact{}, fmt.Errorf("invalid casm class hash %q: %w", ref.CasmClassHash, err)
	}

	class, err := os.ReadFile(filepath.Join(baseDir, ref.Artifact))
	if err != nil {
		return ClassArtifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact := ClassArtifact{
		ClassHash:     hash,
		CasmClassHash: casmHash,
		Class:         class,
	}

	if ref.CasmArtifact != "" {
		casm, err := os.ReadFile(filepath.Join(baseDir, ref.CasmArtifact))
		if err != nil {
			return ClassArtifact{}, fmt.Errorf("failed to read casm artifact: %w", err)
		}
		artifact.CasmClass = casm
	}

	return artifact, nil
}

// applyGrants resolves tags to selectors and records each grant. A tag
// without a dash names a namespace; otherwise it is namespace-name.
func applyGrants(local *WorldLocal, grants map[string][]string, grant func(selector, address felt.Felt)) error {
	for tag, addresses := range grants {
		selector, err := selectorForTag(tag)
		if err != nil {
			return err
		}
		for _, raw := range addresses {
			addr, err := parseFelt(raw)
			if err != nil {
				return fmt.Errorf("invalid grantee address %q for %s: %w", raw, tag, err)
			}
			grant(selector, addr)
		}
	}
	return nil
}

func selectorForTag(tag string) (felt.Felt, error) {
	if !strings.Contains(tag, "-") {
		return naming.SelectorFromName(tag), nil
	}
	namespace, name, err := naming.SplitTag(tag)
	if err != nil {
		return felt.Felt{}, err
	}
	return naming.SelectorFromNames(namespace, name), nil
}

func parseFelt(s string) (felt.Felt, error) {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		return felt.Felt{}, err
	}
	return *f, nil
}
