package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/contracts"
	"github.com/NethermindEth/starknet.go/rpc"

	"github.com/worldforge-io/worldforge/internal/logging"
	"github.com/worldforge-io/worldforge/internal/world"
)

// feeMultiplier pads the estimated resource bounds so submissions survive
// moderate gas-price drift between estimate and inclusion.
const feeMultiplier = 1.5

// receiptPollInterval is how often a submitted transaction is polled for
// its receipt before Execute and DeclareClass return.
const receiptPollInterval = 2 * time.Second

// RPCAccountConfig identifies the signing account used for submission.
type RPCAccountConfig struct {
	// URL is the JSON-RPC endpoint of the node.
	URL string

	// Address is the deployed account contract's address.
	Address string

	// PublicKey and PrivateKey are the account's signing key pair, as
	// hex-encoded felts.
	PublicKey  string
	PrivateKey string
}

// rpcAccount submits operations through a Starknet JSON-RPC node, signing
// with a locally held key.
type rpcAccount struct {
	inner    *account.Account
	provider *rpc.Provider
	address  felt.Felt
}

// NewRPCAccount connects to the node in cfg and returns an Account that
// signs with the configured key pair.
func NewRPCAccount(cfg RPCAccountConfig) (Account, error) {
	provider, err := rpc.NewProvider(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}

	address, err := new(felt.Felt).SetString(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid account address %q: %w", cfg.Address, err)
	}

	priv, ok := new(big.Int).SetString(strings.TrimPrefix(cfg.PrivateKey, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("invalid account private key")
	}
	ks := account.SetNewMemKeystore(cfg.PublicKey, priv)

	inner, err := account.NewAccount(provider, address, cfg.PublicKey, ks, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize account %s: %w", cfg.Address, err)
	}

	return &rpcAccount{inner: inner, provider: provider, address: *address}, nil
}

func (a *rpcAccount) Address() felt.Felt {
	return a.address
}

func (a *rpcAccount) Execute(ctx context.Context, calls []Call) (felt.Felt, error) {
	fnCalls := make([]rpc.InvokeFunctionCall, len(calls))
	for i, call := range calls {
		to := call.To
		calldata := make([]*felt.Felt, len(call.Calldata))
		for j := range call.Calldata {
			calldata[j] = &call.Calldata[j]
		}
		fnCalls[i] = rpc.InvokeFunctionCall{
			ContractAddress: &to,
			FunctionName:    call.EntryPoint,
			CallData:        calldata,
		}
	}

	resp, err := a.inner.BuildAndSendInvokeTxn(ctx, fnCalls, feeMultiplier)
	if err != nil {
		return felt.Felt{}, fmt.Errorf("invoke failed: %w", err)
	}

	if err := a.waitForReceipt(ctx, resp.TransactionHash); err != nil {
		return *resp.TransactionHash, err
	}
	return *resp.TransactionHash, nil
}

func (a *rpcAccount) DeclareClass(ctx context.Context, class world.ClassArtifact) (felt.Felt, error) {
	var contractClass contracts.ContractClass
	if err := json.Unmarshal(class.Class, &contractClass); err != nil {
		return felt.Felt{}, fmt.Errorf("invalid class artifact for %s: %w", class.ClassHash.String(), err)
	}
	var casmClass contracts.CasmClass
	if err := json.Unmarshal(class.CasmClass, &casmClass); err != nil {
		return felt.Felt{}, fmt.Errorf("invalid casm artifact for %s: %w", class.ClassHash.String(), err)
	}

	resp, err := a.inner.BuildAndSendDeclareTxn(ctx, &casmClass, &contractClass, feeMultiplier)
	if err != nil {
		// Racing another declaration of the same class is harmless.
		if strings.Contains(strings.ToLower(err.Error()), "already declared") {
			logging.Debug("class already declared", "class_hash", class.ClassHash.String())
			return felt.Felt{}, nil
		}
		return felt.Felt{}, fmt.Errorf("declare failed for %s: %w", class.ClassHash.String(), err)
	}

	if err := a.waitForReceipt(ctx, resp.TransactionHash); err != nil {
		return *resp.TransactionHash, err
	}
	return *resp.TransactionHash, nil
}

func (a *rpcAccount) IsDeclared(ctx context.Context, classHash felt.Felt) (bool, error) {
	_, err := a.provider.Class(ctx, rpc.WithBlockTag("latest"), &classHash)
	if err != nil {
		if errors.Is(err, rpc.ErrClassHashNotFound) ||
			strings.Contains(strings.ToLower(err.Error()), "class hash not found") {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up class %s: %w", classHash.String(), err)
	}
	return true, nil
}

// waitForReceipt blocks until hash has a receipt, then checks its
// execution status. A reverted transaction is an error even though the
// chain accepted it.
func (a *rpcAccount) waitForReceipt(ctx context.Context, hash *felt.Felt) error {
	receipt, err := a.inner.WaitForTransactionReceipt(ctx, hash, receiptPollInterval)
	if err != nil {
		return fmt.Errorf("waiting for transaction %s: %w", hash.String(), err)
	}
	if receipt.ExecutionStatus == rpc.TxnExecutionStatusREVERTED {
		return fmt.Errorf("transaction %s reverted: %s", hash.String(), receipt.RevertReason)
	}
	logging.Debug("transaction accepted", "tx_hash", hash.String())
	return nil
}
