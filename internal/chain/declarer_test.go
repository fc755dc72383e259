package chain

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge-io/worldforge/internal/world"
)

func artifact(classHash, casmHash uint64) world.ClassArtifact {
	return world.ClassArtifact{
		ClassHash:     feltOf(classHash),
		CasmClassHash: feltOf(casmHash),
	}
}

func TestDeclarer_DedupByCasmHash(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	dec := NewDeclarer(account)

	dec.AddClass(artifact(1, 100))
	dec.AddClass(artifact(2, 200))
	// Same compiled class under a different sierra hash: dropped.
	dec.AddClass(artifact(3, 100))
	assert.Equal(t, 2, dec.Len())

	require.NoError(t, dec.DeclareAll(context.Background()))

	assert.Equal(t, []felt.Felt{feltOf(1), feltOf(2)}, account.DeclaredOrder)
	assert.Equal(t, 0, dec.Len())
}

func TestDeclarer_SkipsAlreadyDeclared(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	account.MarkDeclared(feltOf(1))
	dec := NewDeclarer(account)

	dec.AddClass(artifact(1, 100))
	dec.AddClass(artifact(2, 200))

	require.NoError(t, dec.DeclareAll(context.Background()))

	// Only the unknown class produced a declaration.
	assert.Equal(t, []felt.Felt{feltOf(2)}, account.DeclaredOrder)
}

func TestDeclare_NoOpWhenKnown(t *testing.T) {
	account := NewInMemoryAccount(feltOf(0xacc))
	account.MarkDeclared(feltOf(1))

	require.NoError(t, Declare(context.Background(), account, artifact(1, 100)))
	assert.Empty(t, account.DeclaredOrder)
}
