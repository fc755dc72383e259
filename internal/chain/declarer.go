package chain

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/logging"
	"github.com/worldforge-io/worldforge/internal/world"
)

// Declarer accumulates class artifacts and batch-declares them before any
// call that names the resulting class is submitted. Artifacts are keyed by
// their executable (casm) class hash, so queueing the same compiled class
// twice declares it once.
type Declarer struct {
	account Account
	classes []world.ClassArtifact
	seen    map[felt.Felt]bool
}

// NewDeclarer returns an empty declarer bound to an account.
func NewDeclarer(account Account) *Declarer {
	return &Declarer{
		account: account,
		seen:    make(map[felt.Felt]bool),
	}
}

// AddClass queues an artifact for declaration. Duplicates are dropped.
func (d *Declarer) AddClass(artifact world.ClassArtifact) {
	if d.seen[artifact.CasmClassHash] {
		return
	}
	d.seen[artifact.CasmClassHash] = true
	d.classes = append(d.classes, artifact)
}

// Len returns the number of distinct queued artifacts.
func (d *Declarer) Len() int {
	return len(d.classes)
}

// DeclareAll declares every queued artifact in insertion order, skipping
// classes the chain already knows, and resets the queue.
func (d *Declarer) DeclareAll(ctx context.Context) error {
	defer func() {
		d.classes = nil
		d.seen = make(map[felt.Felt]bool)
	}()

	for _, class := range d.classes {
		if err := Declare(ctx, d.account, class); err != nil {
			return err
		}
	}
	return nil
}

// Declare declares a single class, skipping it when already declared.
func Declare(ctx context.Context, account Account, class world.ClassArtifact) error {
	declared, err := account.IsDeclared(ctx, class.ClassHash)
	if err != nil {
		return fmt.Errorf("failed to check class %s: %w", class.ClassHash.String(), err)
	}
	if declared {
		logging.Debug("class already declared", "class_hash", class.ClassHash.String())
		return nil
	}

	var txHash felt.Felt
	err = RetryWithBackoff(ctx, DefaultRetryPolicy(), func() error {
		var declErr error
		txHash, declErr = account.DeclareClass(ctx, class)
		return declErr
	}, IsTransientError)
	if err != nil {
		return fmt.Errorf("declaration of class %s failed: %w", class.ClassHash.String(), err)
	}

	logging.Debug("class declared", "class_hash", class.ClassHash.String(), "tx", txHash.String())
	return nil
}
