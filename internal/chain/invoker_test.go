package chain

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feltOf(v uint64) felt.Felt {
	return *new(felt.Felt).SetUint64(v)
}

func TestInvoker_Multicall(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	inv := NewInvoker(account, TxnConfig{Multicall: true})

	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_namespace"})
	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_model"})
	assert.Equal(t, 2, inv.Len())

	require.NoError(t, inv.Submit(context.Background()))

	// One atomic transaction carrying both calls, queue reset after.
	require.Len(t, account.Batches, 1)
	assert.Len(t, account.Batches[0], 2)
	assert.Equal(t, 0, inv.Len())
}

func TestInvoker_Sequential(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	inv := NewInvoker(account, TxnConfig{Multicall: false})

	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_namespace"})
	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_model"})

	require.NoError(t, inv.Submit(context.Background()))

	require.Len(t, account.Batches, 2)
	assert.Equal(t, "register_namespace", account.Batches[0][0].EntryPoint)
	assert.Equal(t, "register_model", account.Batches[1][0].EntryPoint)
}

func TestInvoker_SequentialContinuesPastFailure(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	account.FailEntryPoint = "register_model"
	inv := NewInvoker(account, TxnConfig{Multicall: false})

	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_namespace"})
	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_model"})
	inv.AddCall(Call{To: feltOf(1), EntryPoint: "grant_writer"})

	err := inv.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register_model")

	// Calls after the failed one still landed.
	calls := account.AllCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "register_namespace", calls[0].EntryPoint)
	assert.Equal(t, "grant_writer", calls[1].EntryPoint)
}

func TestInvoker_MulticallAllOrNothing(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	account.FailEntryPoint = "register_model"
	inv := NewInvoker(account, TxnConfig{Multicall: true})

	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_namespace"})
	inv.AddCall(Call{To: feltOf(1), EntryPoint: "register_model"})

	require.Error(t, inv.Submit(context.Background()))
	assert.Empty(t, account.Batches)
}

func TestInvoker_EmptySubmit(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	inv := NewInvoker(account, TxnConfig{Multicall: true})

	require.NoError(t, inv.Submit(context.Background()))
	assert.Empty(t, account.Batches)
}
