package chain

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractAddress_Deterministic(t *testing.T) {
	classHash := feltOf(10)
	salt := feltOf(20)
	calldata := []felt.Felt{feltOf(1), feltOf(2)}

	a := ContractAddress(felt.Felt{}, classHash, salt, calldata)
	b := ContractAddress(felt.Felt{}, classHash, salt, calldata)
	assert.Equal(t, a, b)

	// Every input participates in the derivation.
	assert.NotEqual(t, a, ContractAddress(felt.Felt{}, feltOf(11), salt, calldata))
	assert.NotEqual(t, a, ContractAddress(felt.Felt{}, classHash, feltOf(21), calldata))
	assert.NotEqual(t, a, ContractAddress(felt.Felt{}, classHash, salt, []felt.Felt{feltOf(1)}))
	assert.NotEqual(t, a, ContractAddress(feltOf(1), classHash, salt, calldata))
}

func TestDeployViaUDC(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	dep := NewDeployer(account)

	classHash := feltOf(10)
	salt := feltOf(20)
	calldata := []felt.Felt{feltOf(7)}

	address, err := dep.DeployViaUDC(context.Background(), classHash, salt, calldata)
	require.NoError(t, err)
	assert.Equal(t, ContractAddress(felt.Felt{}, classHash, salt, calldata), address)

	require.Len(t, account.Batches, 1)
	call := account.Batches[0][0]
	assert.Equal(t, udcAddress, call.To)
	assert.Equal(t, "deployContract", call.EntryPoint)

	// UDC calldata layout: class hash, salt, origin-independence flag,
	// constructor calldata length, then the calldata itself.
	require.Len(t, call.Calldata, 5)
	assert.Equal(t, classHash, call.Calldata[0])
	assert.Equal(t, salt, call.Calldata[1])
	assert.Equal(t, felt.Felt{}, call.Calldata[2])
	assert.Equal(t, feltOf(1), call.Calldata[3])
	assert.Equal(t, feltOf(7), call.Calldata[4])
}

func TestIsTransientError(t *testing.T) {
	assert.False(t, IsTransientError(nil))
	assert.False(t, IsTransientError(context.Canceled))
	assert.False(t, IsTransientError(assert.AnError))

	for _, msg := range []string{
		"429 Too Many Requests",
		"connection reset by peer",
		"i/o timeout",
		"502 Bad Gateway",
	} {
		assert.True(t, IsTransientError(errString(msg)), msg)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
