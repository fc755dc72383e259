// Package chain provides the call-batching primitives a migration drives:
// an Invoker accumulating state-changing calls, a Declarer accumulating
// class artifacts, and a Deployer for deterministic contract deployment.
// All of them submit through the Account interface; the transaction engine
// behind it is an external collaborator.
package chain

import (
	"context"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/world"
)

// Call is a single state-changing operation against a contract.
type Call struct {
	To         felt.Felt
	EntryPoint string
	Calldata   []felt.Felt
}

// Account abstracts the signing account used to submit operations. An
// Execute with multiple calls is one atomic multicall transaction.
type Account interface {
	// Address returns the account's address.
	Address() felt.Felt

	// Execute signs and submits the calls as a single transaction and
	// returns its hash. Blocks until the transaction is accepted.
	Execute(ctx context.Context, calls []Call) (felt.Felt, error)

	// DeclareClass declares a compiled class and returns the transaction
	// hash. Declaring an already-declared class must succeed as a no-op.
	DeclareClass(ctx context.Context, class world.ClassArtifact) (felt.Felt, error)

	// IsDeclared reports whether a class hash is already known to the chain.
	IsDeclared(ctx context.Context, classHash felt.Felt) (bool, error)
}

// TxnConfig carries per-run submission options.
type TxnConfig struct {
	// Multicall submits each phase's calls as one atomic transaction.
	// When false, calls are submitted one by one and a failed call does
	// not stop the rest of its phase; the next run repairs whatever is
	// missing.
	Multicall bool
}
