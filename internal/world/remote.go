package world

import (
	"sort"

	"github.com/NethermindEth/juno/core/felt"
)

// Permissions holds the owner and writer sets of a single resource. Both are
// set-valued: repeated grants and revokes collapse regardless of how many
// times they occur in the log.
type Permissions struct {
	Owners  map[felt.Felt]bool
	Writers map[felt.Felt]bool
}

func newPermissions() *Permissions {
	return &Permissions{
		Owners:  make(map[felt.Felt]bool),
		Writers: make(map[felt.Felt]bool),
	}
}

// NamespaceIndex groups the selectors of the resources registered under one
// namespace.
type NamespaceIndex struct {
	Contracts map[felt.Felt]bool
	Models    map[felt.Felt]bool
	Events    map[felt.Felt]bool
}

func newNamespaceIndex() *NamespaceIndex {
	return &NamespaceIndex{
		Contracts: make(map[felt.Felt]bool),
		Models:    make(map[felt.Felt]bool),
		Events:    make(map[felt.Felt]bool),
	}
}

// WorldRemote is the remote state of a world, rebuilt from its event log.
// It must not be mutated once returned by BuildRemote: every migration run
// rebuilds a fresh value from the authoritative log.
type WorldRemote struct {
	// ClassHashes is the world's own upgrade history, oldest first. Empty
	// means the world has never been deployed.
	ClassHashes []felt.Felt

	// Namespaces is the set of registered namespace selectors.
	Namespaces map[felt.Felt]bool

	// Resources maps every known selector to its resource.
	Resources map[felt.Felt]Resource

	// Permissions maps every known selector to its owner/writer sets. An
	// entry exists for every entry in Resources.
	Permissions map[felt.Felt]*Permissions

	// ByNamespace indexes registered resources by namespace name.
	ByNamespace map[string]*NamespaceIndex
}

// NewWorldRemote returns an empty remote world, the state of a world whose
// log contains no events.
func NewWorldRemote() *WorldRemote {
	return &WorldRemote{
		Namespaces:  make(map[felt.Felt]bool),
		Resources:   make(map[felt.Felt]Resource),
		Permissions: make(map[felt.Felt]*Permissions),
		ByNamespace: make(map[string]*NamespaceIndex),
	}
}

// CurrentClassHash returns the world's active class hash. ok is false when
// the world has never been deployed.
func (w *WorldRemote) CurrentClassHash() (felt.Felt, bool) {
	if len(w.ClassHashes) == 0 {
		return felt.Felt{}, false
	}
	return w.ClassHashes[len(w.ClassHashes)-1], true
}

// Owners returns the owner set of a selector, empty when unknown.
func (w *WorldRemote) Owners(selector felt.Felt) map[felt.Felt]bool {
	if p, ok := w.Permissions[selector]; ok {
		return p.Owners
	}
	return nil
}

// Writers returns the writer set of a selector, empty when unknown.
func (w *WorldRemote) Writers(selector felt.Felt) map[felt.Felt]bool {
	if p, ok := w.Permissions[selector]; ok {
		return p.Writers
	}
	return nil
}

// SortedSelectors returns every known resource selector in a stable order,
// for deterministic iteration in rendering and tests.
func (w *WorldRemote) SortedSelectors() []felt.Felt {
	out := make([]felt.Felt, 0, len(w.Resources))
	for sel := range w.Resources {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(&out[j]) < 0
	})
	return out
}

// addResource inserts a freshly registered resource, indexes it under its
// namespace and creates its empty permission entry.
func (w *WorldRemote) addResource(r Resource) {
	sel := r.Selector()
	w.Resources[sel] = r
	w.Permissions[sel] = newPermissions()

	switch v := r.(type) {
	case *NamespaceRemote:
		w.Namespaces[sel] = true
		if _, ok := w.ByNamespace[v.Name]; !ok {
			w.ByNamespace[v.Name] = newNamespaceIndex()
		}
	case *ContractRemote:
		w.namespaceIndex(v.Common.Namespace).Contracts[sel] = true
	case *ModelRemote:
		w.namespaceIndex(v.Common.Namespace).Models[sel] = true
	case *EventRemote:
		w.namespaceIndex(v.Common.Namespace).Events[sel] = true
	}
}

func (w *WorldRemote) namespaceIndex(namespace string) *NamespaceIndex {
	idx, ok := w.ByNamespace[namespace]
	if !ok {
		idx = newNamespaceIndex()
		w.ByNamespace[namespace] = idx
	}
	return idx
}
