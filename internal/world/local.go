package world

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/naming"
)

// ClassArtifact is a compiled class ready for declaration: the content-
// addressed class hash, the executable (casm) class hash, the flattened
// sierra class submitted with the declaration, and the compiled casm code
// the executable hash is derived from.
type ClassArtifact struct {
	ClassHash     felt.Felt
	CasmClassHash felt.Felt
	Class         json.RawMessage
	CasmClass     json.RawMessage
}

// ResourceLocal is the closed union of locally declared resource variants.
type ResourceLocal interface {
	Kind() ResourceKind
	Selector() felt.Felt
	Tag() string
}

// NamespaceLocal is a namespace the declaration wants registered.
type NamespaceLocal struct {
	Name string
}

func (n *NamespaceLocal) Kind() ResourceKind  { return KindNamespace }
func (n *NamespaceLocal) Selector() felt.Felt { return naming.SelectorFromName(n.Name) }
func (n *NamespaceLocal) Tag() string         { return n.Name }

// CommonLocal carries the declared state shared by contracts, models and
// events.
type CommonLocal struct {
	Namespace string
	Name      string
	Artifact  ClassArtifact
}

func (c *CommonLocal) Tag() string { return naming.Tag(c.Namespace, c.Name) }

// ContractLocal is a locally declared system contract.
type ContractLocal struct {
	Common CommonLocal
}

func (c *ContractLocal) Kind() ResourceKind { return KindContract }
func (c *ContractLocal) Selector() felt.Felt {
	return naming.SelectorFromNames(c.Common.Namespace, c.Common.Name)
}
func (c *ContractLocal) Tag() string { return c.Common.Tag() }

// ModelLocal is a locally declared data-schema record.
type ModelLocal struct {
	Common CommonLocal
}

func (m *ModelLocal) Kind() ResourceKind { return KindModel }
func (m *ModelLocal) Selector() felt.Felt {
	return naming.SelectorFromNames(m.Common.Namespace, m.Common.Name)
}
func (m *ModelLocal) Tag() string { return m.Common.Tag() }

// EventLocal is a locally declared event type.
type EventLocal struct {
	Common CommonLocal
}

func (e *EventLocal) Kind() ResourceKind { return KindEvent }
func (e *EventLocal) Selector() felt.Felt {
	return naming.SelectorFromNames(e.Common.Namespace, e.Common.Name)
}
func (e *EventLocal) Tag() string { return e.Common.Tag() }

// WorldLocal is the declared desired state of a world: its own class
// artifact, deployment seed, resources and declared permission grants.
type WorldLocal struct {
	Seed     string
	Artifact ClassArtifact

	Namespaces map[felt.Felt]*NamespaceLocal
	Resources  map[felt.Felt]ResourceLocal

	// Owners and Writers are the declared permission grants, keyed by the
	// target resource selector.
	Owners  map[felt.Felt]map[felt.Felt]bool
	Writers map[felt.Felt]map[felt.Felt]bool
}

// NewWorldLocal returns an empty declaration.
func NewWorldLocal(seed string, artifact ClassArtifact) *WorldLocal {
	return &WorldLocal{
		Seed:       seed,
		Artifact:   artifact,
		Namespaces: make(map[felt.Felt]*NamespaceLocal),
		Resources:  make(map[felt.Felt]ResourceLocal),
		Owners:     make(map[felt.Felt]map[felt.Felt]bool),
		Writers:    make(map[felt.Felt]map[felt.Felt]bool),
	}
}

// AddNamespace declares a namespace. Re-declaring the same name is a no-op.
func (w *WorldLocal) AddNamespace(name string) *NamespaceLocal {
	sel := naming.SelectorFromName(name)
	if ns, ok := w.Namespaces[sel]; ok {
		return ns
	}
	ns := &NamespaceLocal{Name: name}
	w.Namespaces[sel] = ns
	return ns
}

// AddResource declares a contract, model or event. The owning namespace is
// declared implicitly.
func (w *WorldLocal) AddResource(r ResourceLocal) error {
	var namespace string
	switch v := r.(type) {
	case *ContractLocal:
		namespace = v.Common.Namespace
	case *ModelLocal:
		namespace = v.Common.Namespace
	case *EventLocal:
		namespace = v.Common.Namespace
	case *NamespaceLocal:
		w.AddNamespace(v.Name)
		return nil
	default:
		return fmt.Errorf("unsupported local resource %T", r)
	}

	sel := r.Selector()
	if existing, ok := w.Resources[sel]; ok {
		return fmt.Errorf("duplicate resource declaration %s (selector collides with %s)",
			r.Tag(), existing.Tag())
	}

	w.AddNamespace(namespace)
	w.Resources[sel] = r
	return nil
}

// GrantOwner declares an owner for the resource with the given selector.
func (w *WorldLocal) GrantOwner(selector, address felt.Felt) {
	if w.Owners[selector] == nil {
		w.Owners[selector] = make(map[felt.Felt]bool)
	}
	w.Owners[selector][address] = true
}

// GrantWriter declares a writer for the resource with the given selector.
func (w *WorldLocal) GrantWriter(selector, address felt.Felt) {
	if w.Writers[selector] == nil {
		w.Writers[selector] = make(map[felt.Felt]bool)
	}
	w.Writers[selector][address] = true
}

// SortedSelectors returns the declared resource selectors in a stable order.
func (w *WorldLocal) SortedSelectors() []felt.Felt {
	out := make([]felt.Felt, 0, len(w.Resources))
	for sel := range w.Resources {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(&out[j]) < 0
	})
	return out
}

// SortedNamespaceSelectors returns the declared namespace selectors in a
// stable order.
func (w *WorldLocal) SortedNamespaceSelectors() []felt.Felt {
	out := make([]felt.Felt, 0, len(w.Namespaces))
	for sel := range w.Namespaces {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(&out[j]) < 0
	})
	return out
}
