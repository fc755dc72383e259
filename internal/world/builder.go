package world

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/logging"
	"github.com/worldforge-io/worldforge/internal/naming"
)

// ErrInvariant marks a fatal replay failure: an event referenced a selector
// that was never registered, or resolved to the wrong resource variant. The
// log guarantees registration precedes upgrade, initialization and permission
// updates, so a violation means the log is not a valid protocol trace. The
// build aborts and is never retried against the same input.
var ErrInvariant = errors.New("world log invariant violated")

// BuildRemote replays an ordered sequence of raw log entries into the remote
// state of the world. Entries that fail to decode are logged and skipped;
// the upstream key filter is broad and some noise is expected. Order defines
// meaning, so replay is strictly sequential.
func BuildRemote(raws []RawEvent) (*WorldRemote, error) {
	w := NewWorldRemote()

	for i := range raws {
		ev, err := DecodeEvent(&raws[i])
		if err != nil {
			logging.Error("skipping undecodable world event",
				"block", raws[i].BlockNumber, "tx", raws[i].TxHash.String(), "err", err)
			continue
		}
		if ev == nil {
			continue
		}
		if err := w.applyEvent(ev); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// BuildRemoteFromEvents replays already-decoded events. Used by callers that
// decode upstream, and by tests exercising single fold steps.
func BuildRemoteFromEvents(events []Event) (*WorldRemote, error) {
	w := NewWorldRemote()
	for _, ev := range events {
		if err := w.applyEvent(ev); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// applyEvent folds one event into the state. Mutation is confined to the
// build; the finished value is handed out as read-only.
func (w *WorldRemote) applyEvent(ev Event) error {
	switch e := ev.(type) {
	case WorldSpawned:
		w.ClassHashes = append(w.ClassHashes, e.ClassHash)

	case WorldUpgraded:
		w.ClassHashes = append(w.ClassHashes, e.ClassHash)

	case NamespaceRegistered:
		w.addResource(&NamespaceRemote{Name: e.Namespace})

	case ModelRegistered:
		w.addResource(&ModelRemote{Common: CommonInfo{
			Namespace:   e.Namespace,
			Name:        e.Name,
			Address:     e.Address,
			ClassHashes: []felt.Felt{e.ClassHash},
		}})

	case EventRegistered:
		w.addResource(&EventRemote{Common: CommonInfo{
			Namespace:   e.Namespace,
			Name:        e.Name,
			Address:     e.Address,
			ClassHashes: []felt.Felt{e.ClassHash},
		}})

	case ContractRegistered:
		w.addResource(&ContractRemote{Common: CommonInfo{
			Namespace:   e.Namespace,
			Name:        e.Name,
			Address:     e.Address,
			ClassHashes: []felt.Felt{e.ClassHash},
		}})

	case ModelUpgraded:
		return w.pushClassHash(e.Selector, e.ClassHash, "model upgrade")

	case EventUpgraded:
		return w.pushClassHash(e.Selector, e.ClassHash, "event upgrade")

	case ContractUpgraded:
		return w.pushClassHash(e.Selector, e.ClassHash, "contract upgrade")

	case ContractInitialized:
		r, ok := w.Resources[e.Selector]
		if !ok {
			return w.unknownSelector(e.Selector, "contract initialization")
		}
		contract, ok := r.(*ContractRemote)
		if !ok {
			return fmt.Errorf("%w: initialization of %s targets a %s, not a contract",
				ErrInvariant, r.Tag(), r.Kind())
		}
		contract.Initialized = true

	case WriterUpdated:
		p, ok := w.Permissions[e.Resource]
		if !ok {
			return w.unknownSelector(e.Resource, "writer update")
		}
		updateSet(p.Writers, e.Contract, e.Value)

	case OwnerUpdated:
		p, ok := w.Permissions[e.Resource]
		if !ok {
			return w.unknownSelector(e.Resource, "owner update")
		}
		updateSet(p.Owners, e.Contract, e.Value)
	}

	return nil
}

func (w *WorldRemote) pushClassHash(selector, classHash felt.Felt, what string) error {
	r, ok := w.Resources[selector]
	if !ok {
		return w.unknownSelector(selector, what)
	}
	common := commonOf(r)
	if common == nil {
		return fmt.Errorf("%w: %s targets namespace %s, which has no upgrade history",
			ErrInvariant, what, r.Tag())
	}
	common.ClassHashes = append(common.ClassHashes, classHash)
	return nil
}

func (w *WorldRemote) unknownSelector(selector felt.Felt, what string) error {
	return fmt.Errorf("%w: %s references selector %s, which was never registered",
		ErrInvariant, what, selector.String())
}

// updateSet applies a grant (value true) or revoke to a permission set. Both
// directions are idempotent.
func updateSet(set map[felt.Felt]bool, address felt.Felt, value bool) {
	if value {
		set[address] = true
	} else {
		delete(set, address)
	}
}

// selectorOf is a convenience for tests and callers that hold only names.
func selectorOf(namespace, name string) felt.Felt {
	if name == "" {
		return naming.SelectorFromName(namespace)
	}
	return naming.SelectorFromNames(namespace, name)
}
