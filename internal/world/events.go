package world

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/naming"
)

// RawEvent is a single undecoded log entry emitted by the world contract.
// Keys[0] carries the event kind selector; the remaining keys and the data
// segment carry the payload. Resource names travel short-string encoded.
type RawEvent struct {
	Keys        []felt.Felt
	Data        []felt.Felt
	BlockNumber uint64
	TxHash      felt.Felt
}

// Event is the closed union of decoded management events. Resource-data
// events (set, delete, emit) are excluded by the fetch filter and have no
// variant here.
type Event interface {
	eventName() string
}

type WorldSpawned struct {
	Creator   felt.Felt
	ClassHash felt.Felt
}

type WorldUpgraded struct {
	ClassHash felt.Felt
}

type NamespaceRegistered struct {
	Namespace string
}

type ModelRegistered struct {
	Namespace string
	Name      string
	ClassHash felt.Felt
	Address   felt.Felt
}

type EventRegistered struct {
	Namespace string
	Name      string
	ClassHash felt.Felt
	Address   felt.Felt
}

type ContractRegistered struct {
	Namespace string
	Name      string
	ClassHash felt.Felt
	Address   felt.Felt
}

type ModelUpgraded struct {
	Selector  felt.Felt
	ClassHash felt.Felt
}

type EventUpgraded struct {
	Selector  felt.Felt
	ClassHash felt.Felt
}

type ContractUpgraded struct {
	Selector  felt.Felt
	ClassHash felt.Felt
}

type ContractInitialized struct {
	Selector felt.Felt
}

type WriterUpdated struct {
	Resource felt.Felt
	Contract felt.Felt
	Value    bool
}

type OwnerUpdated struct {
	Resource felt.Felt
	Contract felt.Felt
	Value    bool
}

func (WorldSpawned) eventName() string        { return "WorldSpawned" }
func (WorldUpgraded) eventName() string       { return "WorldUpgraded" }
func (NamespaceRegistered) eventName() string { return "NamespaceRegistered" }
func (ModelRegistered) eventName() string     { return "ModelRegistered" }
func (EventRegistered) eventName() string     { return "EventRegistered" }
func (ContractRegistered) eventName() string  { return "ContractRegistered" }
func (ModelUpgraded) eventName() string       { return "ModelUpgraded" }
func (EventUpgraded) eventName() string       { return "EventUpgraded" }
func (ContractUpgraded) eventName() string    { return "ContractUpgraded" }
func (ContractInitialized) eventName() string { return "ContractInitialized" }
func (WriterUpdated) eventName() string       { return "WriterUpdated" }
func (OwnerUpdated) eventName() string        { return "OwnerUpdated" }

// managementEventNames lists the event kinds the reducer consumes, in the
// order used for the fetch filter.
var managementEventNames = []string{
	"WorldSpawned",
	"WorldUpgraded",
	"NamespaceRegistered",
	"ModelRegistered",
	"EventRegistered",
	"ContractRegistered",
	"ModelUpgraded",
	"EventUpgraded",
	"ContractUpgraded",
	"ContractInitialized",
	"WriterUpdated",
	"OwnerUpdated",
}

// ManagementEventKeys returns the key selectors of every management event,
// used to filter the world's log down to the events the reducer consumes.
func ManagementEventKeys() []felt.Felt {
	keys := make([]felt.Felt, len(managementEventNames))
	for i, name := range managementEventNames {
		keys[i] = naming.SelectorFromName(name)
	}
	return keys
}

// EventKey returns the key selector of a single event kind.
func EventKey(name string) felt.Felt {
	return naming.SelectorFromName(name)
}

// DecodeEvent decodes a raw log entry into a typed management event. It
// returns (nil, nil) for kinds outside the management set, which upstream
// filters may still let through. A malformed payload for a known kind is an
// error; callers log and skip it, the replay continues.
func DecodeEvent(raw *RawEvent) (Event, error) {
	if len(raw.Keys) == 0 {
		return nil, fmt.Errorf("event has no keys")
	}
	key := raw.Keys[0]

	switch {
	case keyIs(key, "WorldSpawned"):
		if err := wantData(raw, 2); err != nil {
			return nil, err
		}
		return WorldSpawned{Creator: raw.Data[0], ClassHash: raw.Data[1]}, nil

	case keyIs(key, "WorldUpgraded"):
		if err := wantData(raw, 1); err != nil {
			return nil, err
		}
		return WorldUpgraded{ClassHash: raw.Data[0]}, nil

	case keyIs(key, "NamespaceRegistered"):
		if err := wantData(raw, 1); err != nil {
			return nil, err
		}
		return NamespaceRegistered{Namespace: naming.DecodeShortString(&raw.Data[0])}, nil

	case keyIs(key, "ModelRegistered"):
		ns, name, err := registrationPayload(raw)
		if err != nil {
			return nil, err
		}
		return ModelRegistered{Namespace: ns, Name: name, ClassHash: raw.Data[2], Address: raw.Data[3]}, nil

	case keyIs(key, "EventRegistered"):
		ns, name, err := registrationPayload(raw)
		if err != nil {
			return nil, err
		}
		return EventRegistered{Namespace: ns, Name: name, ClassHash: raw.Data[2], Address: raw.Data[3]}, nil

	case keyIs(key, "ContractRegistered"):
		ns, name, err := registrationPayload(raw)
		if err != nil {
			return nil, err
		}
		return ContractRegistered{Namespace: ns, Name: name, ClassHash: raw.Data[2], Address: raw.Data[3]}, nil

	case keyIs(key, "ModelUpgraded"):
		if err := wantData(raw, 2); err != nil {
			return nil, err
		}
		return ModelUpgraded{Selector: raw.Data[0], ClassHash: raw.Data[1]}, nil

	case keyIs(key, "EventUpgraded"):
		if err := wantData(raw, 2); err != nil {
			return nil, err
		}
		return EventUpgraded{Selector: raw.Data[0], ClassHash: raw.Data[1]}, nil

	case keyIs(key, "ContractUpgraded"):
		if err := wantData(raw, 2); err != nil {
			return nil, err
		}
		return ContractUpgraded{Selector: raw.Data[0], ClassHash: raw.Data[1]}, nil

	case keyIs(key, "ContractInitialized"):
		if err := wantData(raw, 1); err != nil {
			return nil, err
		}
		return ContractInitialized{Selector: raw.Data[0]}, nil

	case keyIs(key, "WriterUpdated"):
		if err := wantData(raw, 3); err != nil {
			return nil, err
		}
		return WriterUpdated{Resource: raw.Data[0], Contract: raw.Data[1], Value: !raw.Data[2].IsZero()}, nil

	case keyIs(key, "OwnerUpdated"):
		if err := wantData(raw, 3); err != nil {
			return nil, err
		}
		return OwnerUpdated{Resource: raw.Data[0], Contract: raw.Data[1], Value: !raw.Data[2].IsZero()}, nil
	}

	// Not a management event. The filter is broad by construction, so this
	// is expected noise, not an error.
	return nil, nil
}

func keyIs(key felt.Felt, name string) bool {
	k := EventKey(name)
	return key.Equal(&k)
}

func wantData(raw *RawEvent, n int) error {
	if len(raw.Data) < n {
		return fmt.Errorf("event data too short: have %d felts, want %d", len(raw.Data), n)
	}
	return nil
}

func registrationPayload(raw *RawEvent) (namespace, name string, err error) {
	if err := wantData(raw, 4); err != nil {
		return "", "", err
	}
	return naming.DecodeShortString(&raw.Data[0]), naming.DecodeShortString(&raw.Data[1]), nil
}
