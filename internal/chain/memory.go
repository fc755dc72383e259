package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/world"
)

// InMemoryAccount is an Account that records everything submitted to it
// instead of talking to a chain. It backs the planner tests and dry runs,
// the way a null backend would.
type InMemoryAccount struct {
	mu      sync.Mutex
	address felt.Felt
	nonce   uint64

	// Batches holds one entry per Execute invocation, in submission order.
	Batches [][]Call

	// DeclaredOrder holds declared class hashes in declaration order.
	DeclaredOrder []felt.Felt

	declared map[felt.Felt]bool

	// FailEntryPoint, when non-empty, makes Execute fail for any batch
	// containing a call to that entrypoint.
	FailEntryPoint string
}

// NewInMemoryAccount returns an account with the given address and no
// recorded activity.
func NewInMemoryAccount(address felt.Felt) *InMemoryAccount {
	return &InMemoryAccount{
		address:  address,
		declared: make(map[felt.Felt]bool),
	}
}

func (a *InMemoryAccount) Address() felt.Felt {
	return a.address
}

func (a *InMemoryAccount) Execute(ctx context.Context, calls []Call) (felt.Felt, error) {
	if err := ctx.Err(); err != nil {
		return felt.Felt{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailEntryPoint != "" {
		for _, c := range calls {
			if c.EntryPoint == a.FailEntryPoint {
				return felt.Felt{}, fmt.Errorf("execution reverted at %s", c.EntryPoint)
			}
		}
	}

	batch := make([]Call, len(calls))
	copy(batch, calls)
	a.Batches = append(a.Batches, batch)

	return a.nextTxHash(), nil
}

func (a *InMemoryAccount) DeclareClass(ctx context.Context, class world.ClassArtifact) (felt.Felt, error) {
	if err := ctx.Err(); err != nil {
		return felt.Felt{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.declared[class.ClassHash] {
		a.declared[class.ClassHash] = true
		a.DeclaredOrder = append(a.DeclaredOrder, class.ClassHash)
	}

	return a.nextTxHash(), nil
}

func (a *InMemoryAccount) IsDeclared(ctx context.Context, classHash felt.Felt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.declared[classHash], nil
}

// MarkDeclared seeds the set of classes the fake chain already knows.
func (a *InMemoryAccount) MarkDeclared(classHash felt.Felt) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.declared[classHash] {
		a.declared[classHash] = true
	}
}

// AllCalls flattens the recorded batches in submission order.
func (a *InMemoryAccount) AllCalls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []Call
	for _, b := range a.Batches {
		out = append(out, b...)
	}
	return out
}

func (a *InMemoryAccount) nextTxHash() felt.Felt {
	a.nonce++
	return *new(felt.Felt).SetUint64(a.nonce)
}
