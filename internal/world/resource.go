// Package world models the remote and local state of a managed world: the
// namespaces, contracts, models and events registered on it, their upgrade
// history and their permission sets. Remote state is only ever rebuilt from
// the world's event log (see builder.go); it is never mutated afterwards.
package world

import (
	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/naming"
)

// ResourceKind discriminates the variants of a world resource.
type ResourceKind int

const (
	KindNamespace ResourceKind = iota
	KindContract
	KindModel
	KindEvent
)

// String returns the lowercase kind name used in tags, logs and manifests.
func (k ResourceKind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindContract:
		return "contract"
	case KindModel:
		return "model"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// CommonInfo carries the fields shared by every registered (non-namespace)
// resource. ClassHashes is the append-only upgrade history, oldest first;
// the last entry is the currently active class.
type CommonInfo struct {
	Namespace   string
	Name        string
	Address     felt.Felt
	ClassHashes []felt.Felt
}

// CurrentClassHash returns the latest entry of the upgrade history.
func (c *CommonInfo) CurrentClassHash() felt.Felt {
	return c.ClassHashes[len(c.ClassHashes)-1]
}

// Tag returns the canonical namespace-name tag.
func (c *CommonInfo) Tag() string {
	return naming.Tag(c.Namespace, c.Name)
}

// Resource is the closed union of remote resource variants. New kinds are
// added as new variants, never through runtime type inspection elsewhere.
type Resource interface {
	Kind() ResourceKind
	Selector() felt.Felt
	Tag() string
}

// NamespaceRemote is a registered namespace. Its permission sets live on the
// WorldRemote keyed by selector, like every other resource.
type NamespaceRemote struct {
	Name string
}

func (n *NamespaceRemote) Kind() ResourceKind  { return KindNamespace }
func (n *NamespaceRemote) Selector() felt.Felt { return naming.SelectorFromName(n.Name) }
func (n *NamespaceRemote) Tag() string         { return n.Name }

// ContractRemote is a registered system contract.
type ContractRemote struct {
	Common      CommonInfo
	Initialized bool
}

func (c *ContractRemote) Kind() ResourceKind { return KindContract }
func (c *ContractRemote) Selector() felt.Felt {
	return naming.SelectorFromNames(c.Common.Namespace, c.Common.Name)
}
func (c *ContractRemote) Tag() string { return c.Common.Tag() }

// ModelRemote is a registered data-schema record.
type ModelRemote struct {
	Common CommonInfo
}

func (m *ModelRemote) Kind() ResourceKind { return KindModel }
func (m *ModelRemote) Selector() felt.Felt {
	return naming.SelectorFromNames(m.Common.Namespace, m.Common.Name)
}
func (m *ModelRemote) Tag() string { return m.Common.Tag() }

// EventRemote is a registered event type.
type EventRemote struct {
	Common CommonInfo
}

func (e *EventRemote) Kind() ResourceKind { return KindEvent }
func (e *EventRemote) Selector() felt.Felt {
	return naming.SelectorFromNames(e.Common.Namespace, e.Common.Name)
}
func (e *EventRemote) Tag() string { return e.Common.Tag() }

// commonOf returns the CommonInfo of a non-namespace resource, or nil for
// namespaces, which have no upgrade history.
func commonOf(r Resource) *CommonInfo {
	switch v := r.(type) {
	case *ContractRemote:
		return &v.Common
	case *ModelRemote:
		return &v.Common
	case *EventRemote:
		return &v.Common
	default:
		return nil
	}
}
