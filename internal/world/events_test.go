package world

import (
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge-io/worldforge/internal/naming"
)

func shortString(t *testing.T, s string) felt.Felt {
	t.Helper()
	f, err := naming.EncodeShortString(s)
	require.NoError(t, err)
	return f
}

func TestDecodeEvent_Registration(t *testing.T) {
	raw := &RawEvent{
		Keys: []felt.Felt{EventKey("ContractRegistered")},
		Data: []felt.Felt{
			shortString(t, "arena"),
			shortString(t, "actions"),
			feltOf(10),
			feltOf(100),
		},
	}

	ev, err := DecodeEvent(raw)
	require.NoError(t, err)
	require.IsType(t, ContractRegistered{}, ev)

	reg := ev.(ContractRegistered)
	assert.Equal(t, "arena", reg.Namespace)
	assert.Equal(t, "actions", reg.Name)
	assert.Equal(t, feltOf(10), reg.ClassHash)
	assert.Equal(t, feltOf(100), reg.Address)
}

func TestDecodeEvent_WriterUpdated(t *testing.T) {
	grant := &RawEvent{
		Keys: []felt.Felt{EventKey("WriterUpdated")},
		Data: []felt.Felt{feltOf(1), feltOf(2), feltOf(1)},
	}
	ev, err := DecodeEvent(grant)
	require.NoError(t, err)
	assert.Equal(t, WriterUpdated{Resource: feltOf(1), Contract: feltOf(2), Value: true}, ev)

	revoke := &RawEvent{
		Keys: []felt.Felt{EventKey("WriterUpdated")},
		Data: []felt.Felt{feltOf(1), feltOf(2), feltOf(0)},
	}
	ev, err = DecodeEvent(revoke)
	require.NoError(t, err)
	assert.Equal(t, WriterUpdated{Resource: feltOf(1), Contract: feltOf(2), Value: false}, ev)
}

func TestDecodeEvent_UnknownKind(t *testing.T) {
	ev, err := DecodeEvent(&RawEvent{Keys: []felt.Felt{feltOf(0xdead)}})
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, err := DecodeEvent(&RawEvent{})
	assert.Error(t, err)

	_, err = DecodeEvent(&RawEvent{
		Keys: []felt.Felt{EventKey("ModelRegistered")},
		Data: []felt.Felt{shortString(t, "arena")},
	})
	assert.Error(t, err)
}

func TestManagementEventKeys(t *testing.T) {
	keys := ManagementEventKeys()
	require.Len(t, keys, 12)

	seen := make(map[felt.Felt]bool, len(keys))
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate event key")
		seen[k] = true
	}
	assert.True(t, seen[EventKey("WorldSpawned")])
	assert.True(t, seen[EventKey("OwnerUpdated")])
}
