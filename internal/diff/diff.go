// Package diff computes the difference between a locally declared world and
// the remote state rebuilt from its event log. Computation is pure: no side
// effects, safe to recompute on every run.
package diff

import (
	"sort"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/world"
)

// WorldStatus describes the deployment state of the world contract itself.
type WorldStatus int

const (
	// WorldNotDeployed means the remote log holds no world class hash.
	WorldNotDeployed WorldStatus = iota
	// WorldNewVersion means the local world class differs from the active
	// remote one.
	WorldNewVersion
	// WorldSynced means the local and remote world classes match.
	WorldSynced
)

func (s WorldStatus) String() string {
	switch s {
	case WorldNotDeployed:
		return "not deployed"
	case WorldNewVersion:
		return "new version"
	default:
		return "synced"
	}
}

// Status classifies a single resource against its remote counterpart.
type Status int

const (
	// StatusCreated: declared locally, absent remotely.
	StatusCreated Status = iota
	// StatusUpdated: present in both, class hash differs.
	StatusUpdated
	// StatusSynced: present in both, class hash matches.
	StatusSynced
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	default:
		return "synced"
	}
}

// ResourceDiff pairs a declared resource with its remote counterpart.
// Remote is nil when Status is StatusCreated.
type ResourceDiff struct {
	Status Status
	Local  world.ResourceLocal
	Remote world.Resource
}

// Kind returns the resource kind of the declared side.
func (d *ResourceDiff) Kind() world.ResourceKind { return d.Local.Kind() }

// Tag returns the canonical tag of the declared side.
func (d *ResourceDiff) Tag() string { return d.Local.Tag() }

// Selector returns the resource selector.
func (d *ResourceDiff) Selector() felt.Felt { return d.Local.Selector() }

// PermissionDelta is the per-resource set difference between declared and
// observed owner/writer sets. The OnlyRemote sides are reported but never
// revoked: permission sync only grants, revocation is a separate explicit
// operation.
type PermissionDelta struct {
	OwnersOnlyLocal   []felt.Felt
	OwnersOnlyRemote  []felt.Felt
	WritersOnlyLocal  []felt.Felt
	WritersOnlyRemote []felt.Felt
}

func (p *PermissionDelta) empty() bool {
	return len(p.OwnersOnlyLocal) == 0 && len(p.OwnersOnlyRemote) == 0 &&
		len(p.WritersOnlyLocal) == 0 && len(p.WritersOnlyRemote) == 0
}

// WorldDiff is the full reconciliation input for one migration run. It is
// built once per run and read-only afterwards.
type WorldDiff struct {
	WorldStatus WorldStatus

	Local  *world.WorldLocal
	Remote *world.WorldRemote

	// Namespaces holds the declared namespace selectors, sorted.
	Namespaces []felt.Felt

	// Resources maps every declared selector (namespaces included) to its
	// classification. Remote-only resources are not represented: this
	// engine does not prune.
	Resources map[felt.Felt]*ResourceDiff

	// Permissions holds the non-empty permission deltas by selector.
	Permissions map[felt.Felt]*PermissionDelta

	// Untracked lists selectors present remotely with no local declaration,
	// sorted. Reported for visibility only.
	Untracked []felt.Felt
}

// Compute builds the diff between a declaration and rebuilt remote state.
func Compute(local *world.WorldLocal, remote *world.WorldRemote) *WorldDiff {
	d := &WorldDiff{
		Local:       local,
		Remote:      remote,
		Resources:   make(map[felt.Felt]*ResourceDiff),
		Permissions: make(map[felt.Felt]*PermissionDelta),
	}

	d.WorldStatus = worldStatus(local, remote)
	d.Namespaces = local.SortedNamespaceSelectors()

	for _, sel := range d.Namespaces {
		ns := local.Namespaces[sel]
		rd := &ResourceDiff{Status: StatusCreated, Local: ns}
		if r, ok := remote.Resources[sel]; ok {
			// Namespaces have no upgrade concept, only creation.
			rd.Status = StatusSynced
			rd.Remote = r
		}
		d.Resources[sel] = rd
	}

	for _, sel := range local.SortedSelectors() {
		d.Resources[sel] = classify(local.Resources[sel], remote.Resources[sel])
	}

	for sel := range remote.Resources {
		if _, ok := d.Resources[sel]; !ok {
			d.Untracked = append(d.Untracked, sel)
		}
	}
	sort.Slice(d.Untracked, func(i, j int) bool {
		return d.Untracked[i].Cmp(&d.Untracked[j]) < 0
	})

	for sel := range d.Resources {
		delta := permissionDelta(
			local.Owners[sel], remote.Owners(sel),
			local.Writers[sel], remote.Writers(sel),
		)
		if !delta.empty() {
			d.Permissions[sel] = delta
		}
	}

	return d
}

// GetPermissions returns the permission delta for a selector, zero-valued
// when no delta exists.
func (d *WorldDiff) GetPermissions(selector felt.Felt) PermissionDelta {
	if p, ok := d.Permissions[selector]; ok {
		return *p
	}
	return PermissionDelta{}
}

// SortedSelectors returns the classified selectors in a stable order.
func (d *WorldDiff) SortedSelectors() []felt.Felt {
	out := make([]felt.Felt, 0, len(d.Resources))
	for sel := range d.Resources {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(&out[j]) < 0
	})
	return out
}

// IsSynced reports whether a migration run would be a no-op: world class
// current, every resource synced, and no local-only permissions to grant.
func (d *WorldDiff) IsSynced() bool {
	if d.WorldStatus != WorldSynced {
		return false
	}
	for _, rd := range d.Resources {
		if rd.Status != StatusSynced {
			return false
		}
	}
	for _, p := range d.Permissions {
		if len(p.OwnersOnlyLocal) > 0 || len(p.WritersOnlyLocal) > 0 {
			return false
		}
	}
	return true
}

func worldStatus(local *world.WorldLocal, remote *world.WorldRemote) WorldStatus {
	current, ok := remote.CurrentClassHash()
	if !ok {
		return WorldNotDeployed
	}
	if !current.Equal(&local.Artifact.ClassHash) {
		return WorldNewVersion
	}
	return WorldSynced
}

func classify(local world.ResourceLocal, remote world.Resource) *ResourceDiff {
	if remote == nil {
		return &ResourceDiff{Status: StatusCreated, Local: local}
	}

	localHash := localClassHash(local)
	remoteHash := remoteClassHash(remote)
	if localHash.Equal(&remoteHash) {
		return &ResourceDiff{Status: StatusSynced, Local: local, Remote: remote}
	}
	return &ResourceDiff{Status: StatusUpdated, Local: local, Remote: remote}
}

func localClassHash(r world.ResourceLocal) felt.Felt {
	switch v := r.(type) {
	case *world.ContractLocal:
		return v.Common.Artifact.ClassHash
	case *world.ModelLocal:
		return v.Common.Artifact.ClassHash
	case *world.EventLocal:
		return v.Common.Artifact.ClassHash
	default:
		return felt.Felt{}
	}
}

func remoteClassHash(r world.Resource) felt.Felt {
	switch v := r.(type) {
	case *world.ContractRemote:
		return v.Common.CurrentClassHash()
	case *world.ModelRemote:
		return v.Common.CurrentClassHash()
	case *world.EventRemote:
		return v.Common.CurrentClassHash()
	default:
		return felt.Felt{}
	}
}

// permissionDelta computes the four set differences. Absent sides are
// treated as empty, which is the expected case for resources not yet
// deployed.
func permissionDelta(localOwners, remoteOwners, localWriters, remoteWriters map[felt.Felt]bool) *PermissionDelta {
	return &PermissionDelta{
		OwnersOnlyLocal:   setDifference(localOwners, remoteOwners),
		OwnersOnlyRemote:  setDifference(remoteOwners, localOwners),
		WritersOnlyLocal:  setDifference(localWriters, remoteWriters),
		WritersOnlyRemote: setDifference(remoteWriters, localWriters),
	}
}

// setDifference returns a − b, sorted for deterministic call ordering.
func setDifference(a, b map[felt.Felt]bool) []felt.Felt {
	var out []felt.Felt
	for addr := range a {
		if !b[addr] {
			out = append(out, addr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(&out[j]) < 0
	})
	return out
}
