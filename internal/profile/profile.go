// Package profile holds the pkl-evaluated configuration of a migration run:
// where the world lives, how transactions are submitted and which
// permissions and init arguments the declaration carries.
package profile

import (
	"fmt"
	"strings"
)

// Profile is the top-level per-environment configuration.
type Profile struct {
	World     WorldConfig     `pkl:"world"`
	RPC       RPCConfig       `pkl:"rpc"`
	Account   AccountConfig   `pkl:"account"`
	Migration MigrationConfig `pkl:"migration"`

	// DefaultNamespace is applied to declared resources that carry no
	// explicit namespace.
	DefaultNamespace string `pkl:"defaultNamespace"`

	// InitCallArgs maps contract tags to felt-literal init arguments.
	InitCallArgs map[string][]string `pkl:"initCallArgs"`

	// Owners and Writers map resource tags to grantee addresses.
	Owners  map[string][]string `pkl:"owners"`
	Writers map[string][]string `pkl:"writers"`

	Store *StoreConfig `pkl:"store"`
}

// WorldConfig identifies the managed world.
type WorldConfig struct {
	// Seed salts the deterministic world deployment.
	Seed string `pkl:"seed"`

	// Address overrides address derivation for already-deployed worlds.
	Address string `pkl:"address"`
}

// RPCConfig points at the Starknet JSON-RPC node.
type RPCConfig struct {
	URL string `pkl:"url"`
}

// AccountConfig identifies the signing account submitting the migration.
// The private key is usually injected through an external property rather
// than committed to the profile.
type AccountConfig struct {
	Address    string `pkl:"address"`
	PublicKey  string `pkl:"publicKey"`
	PrivateKey string `pkl:"privateKey"`
}

// ValidateAccount checks the fields only submission needs. Read-only
// commands run without an account.
func (p *Profile) ValidateAccount() error {
	if p.Account.Address == "" {
		return fmt.Errorf("profile needs account.address to submit transactions")
	}
	if p.Account.PublicKey == "" || p.Account.PrivateKey == "" {
		return fmt.Errorf("profile needs account.publicKey and account.privateKey to submit transactions")
	}
	return nil
}

// MigrationConfig carries submission options.
type MigrationConfig struct {
	// DisableMulticall submits calls sequentially instead of atomically.
	DisableMulticall bool `pkl:"disableMulticall"`
}

// StoreConfig selects the manifest store backend.
type StoreConfig struct {
	Type   string `pkl:"type"` // "local" or "s3"
	Dir    string `pkl:"dir"`
	Bucket string `pkl:"bucket"`
	Key    string `pkl:"key"`
	Region string `pkl:"region"`
}

// Validate checks the profile for problems that would only surface
// mid-migration otherwise.
func (p *Profile) Validate() error {
	if p.World.Seed == "" && p.World.Address == "" {
		return fmt.Errorf("profile needs either world.seed or world.address")
	}
	if p.RPC.URL == "" {
		return fmt.Errorf("profile needs rpc.url")
	}
	for tag := range p.InitCallArgs {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("initCallArgs contains an empty contract tag")
		}
	}
	return nil
}

// Declaration is the pkl-evaluated desired state: the world class and every
// resource the project declares.
type Declaration struct {
	World      ClassRef      `pkl:"world"`
	Namespaces []string      `pkl:"namespaces"`
	Contracts  []ResourceRef `pkl:"contracts"`
	Models     []ResourceRef `pkl:"models"`
	Events     []ResourceRef `pkl:"events"`
}

// ClassRef points at one compiled class artifact. Paths are relative to the
// declaration.
type ClassRef struct {
	ClassHash     string `pkl:"classHash"`
	CasmClassHash string `pkl:"casmClassHash"`
	Artifact      string `pkl:"artifact"`
	CasmArtifact  string `pkl:"casmArtifact"`
}

// ResourceRef declares one namespaced resource.
type ResourceRef struct {
	Namespace     string `pkl:"namespace"`
	Name          string `pkl:"name"`
	ClassHash     string `pkl:"classHash"`
	CasmClassHash string `pkl:"casmClassHash"`
	Artifact      string `pkl:"artifact"`
	CasmArtifact  string `pkl:"casmArtifact"`
}
