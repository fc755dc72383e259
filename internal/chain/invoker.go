package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/logging"
)

// Invoker accumulates calls and submits them either as one atomic multicall
// or sequentially, depending on the transaction configuration. Accumulation
// and submission are separate so call-sites only describe operations and
// ordering is enforced here.
type Invoker struct {
	account Account
	cfg     TxnConfig
	calls   []Call
}

// NewInvoker returns an empty invoker bound to an account.
func NewInvoker(account Account, cfg TxnConfig) *Invoker {
	return &Invoker{account: account, cfg: cfg}
}

// AddCall queues a call. Calls are submitted in insertion order.
func (i *Invoker) AddCall(c Call) {
	i.calls = append(i.calls, c)
}

// Len returns the number of queued calls.
func (i *Invoker) Len() int {
	return len(i.calls)
}

// Submit sends the queued calls according to the configuration and resets
// the queue. An empty queue is a no-op.
func (i *Invoker) Submit(ctx context.Context) error {
	if len(i.calls) == 0 {
		return nil
	}
	defer func() { i.calls = nil }()

	if i.cfg.Multicall {
		return i.multicall(ctx)
	}
	return i.invokeAllSequentially(ctx)
}

// multicall submits every queued call as one transaction: all-or-nothing.
func (i *Invoker) multicall(ctx context.Context) error {
	var txHash felt.Felt
	err := RetryWithBackoff(ctx, DefaultRetryPolicy(), func() error {
		var execErr error
		txHash, execErr = i.account.Execute(ctx, i.calls)
		return execErr
	}, IsTransientError)
	if err != nil {
		return fmt.Errorf("multicall of %d calls failed: %w", len(i.calls), err)
	}

	logging.Debug("multicall accepted", "calls", len(i.calls), "tx", txHash.String())
	return nil
}

// invokeAllSequentially submits calls one at a time. A failed call is
// recorded but does not stop the remaining calls; the aggregated error is
// returned at the end. The next reconciliation run repairs whatever did not
// land.
func (i *Invoker) invokeAllSequentially(ctx context.Context) error {
	var errs []error
	for _, call := range i.calls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("submission cancelled: %w", err))
			break
		}

		call := call
		var txHash felt.Felt
		err := RetryWithBackoff(ctx, DefaultRetryPolicy(), func() error {
			var execErr error
			txHash, execErr = i.account.Execute(ctx, []Call{call})
			return execErr
		}, IsTransientError)
		if err != nil {
			logging.Error("call failed", "entrypoint", call.EntryPoint, "err", err)
			errs = append(errs, fmt.Errorf("call %s failed: %w", call.EntryPoint, err))
			continue
		}

		logging.Debug("call accepted", "entrypoint", call.EntryPoint, "tx", txHash.String())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d call(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
