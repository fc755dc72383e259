package diff

import (
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/google/uuid"

	"github.com/worldforge-io/worldforge/internal/world"
)

// Manifest summarizes the state a migration run converged to. It is the
// artifact handed to downstream reporting and packaging.
type Manifest struct {
	RunID          string             `json:"runId"`
	GeneratedAt    string             `json:"generatedAt"`
	WorldAddress   string             `json:"worldAddress"`
	WorldClassHash string             `json:"worldClassHash"`
	Resources      []ManifestResource `json:"resources"`
}

// ManifestResource is one resource's final state.
type ManifestResource struct {
	Tag       string `json:"tag"`
	Kind      string `json:"kind"`
	Selector  string `json:"selector"`
	ClassHash string `json:"classHash,omitempty"`
	Address   string `json:"address,omitempty"`
	Status    string `json:"status"`
}

// NewManifest builds a manifest from the diff a migration just applied.
// Class hashes reflect the declared (now converged) side; addresses come
// from remote state and are empty for resources first registered this run.
func NewManifest(d *WorldDiff, worldAddress felt.Felt) *Manifest {
	m := &Manifest{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		WorldAddress:   worldAddress.String(),
		WorldClassHash: d.Local.Artifact.ClassHash.String(),
	}

	for _, sel := range d.SortedSelectors() {
		rd := d.Resources[sel]
		res := ManifestResource{
			Tag:      rd.Tag(),
			Kind:     rd.Kind().String(),
			Selector: sel.String(),
			Status:   rd.Status.String(),
		}

		if hash := localClassHash(rd.Local); !hash.IsZero() {
			res.ClassHash = hash.String()
		}
		if rd.Remote != nil {
			if common := remoteCommon(rd.Remote); common != nil {
				res.Address = common.Address.String()
			}
		}

		m.Resources = append(m.Resources, res)
	}

	return m
}

func remoteCommon(r world.Resource) *world.CommonInfo {
	switch v := r.(type) {
	case *world.ContractRemote:
		return &v.Common
	case *world.ModelRemote:
		return &v.Common
	case *world.EventRemote:
		return &v.Common
	default:
		return nil
	}
}
