package chain

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/logging"
)

// udcAddress is the universal deployer contract, identical on every network.
var udcAddress = mustFelt("0x041a78e741e5af2fec34b695679bc6891742439f7afb8484ecd7766661ad02bf")

// contractAddressPrefix is the short-string prefix of the address formula.
var contractAddressPrefix = mustFelt("0x535441524b4e45545f434f4e54524143545f41444452455353")

// Deployer deploys contracts through the universal deployer, so the
// resulting address is a pure function of salt, class hash and constructor
// calldata and can be derived without touching the chain.
type Deployer struct {
	account Account
}

// NewDeployer returns a deployer bound to an account.
func NewDeployer(account Account) *Deployer {
	return &Deployer{account: account}
}

// DeployViaUDC submits the deployment and returns the deployed address.
// The deployment is not account-bound (origin-independent), so the derived
// address uses a zero deployer.
func (d *Deployer) DeployViaUDC(ctx context.Context, classHash, salt felt.Felt, calldata []felt.Felt) (felt.Felt, error) {
	address := ContractAddress(felt.Felt{}, classHash, salt, calldata)

	udcCalldata := make([]felt.Felt, 0, len(calldata)+4)
	udcCalldata = append(udcCalldata, classHash, salt, felt.Felt{}, *new(felt.Felt).SetUint64(uint64(len(calldata))))
	udcCalldata = append(udcCalldata, calldata...)

	var txHash felt.Felt
	err := RetryWithBackoff(ctx, DefaultRetryPolicy(), func() error {
		var execErr error
		txHash, execErr = d.account.Execute(ctx, []Call{{
			To:         udcAddress,
			EntryPoint: "deployContract",
			Calldata:   udcCalldata,
		}})
		return execErr
	}, IsTransientError)
	if err != nil {
		return felt.Felt{}, fmt.Errorf("deployment of class %s failed: %w", classHash.String(), err)
	}

	logging.Debug("contract deployed", "address", address.String(), "tx", txHash.String())
	return address, nil
}

// ContractAddress derives the deterministic address of a deployment.
func ContractAddress(deployer, classHash, salt felt.Felt, calldata []felt.Felt) felt.Felt {
	calldataFelts := make([]*felt.Felt, len(calldata))
	for i := range calldata {
		calldataFelts[i] = &calldata[i]
	}
	calldataHash := crypto.PedersenArray(calldataFelts...)

	return *crypto.PedersenArray(&contractAddressPrefix, &deployer, &salt, &classHash, calldataHash)
}

func mustFelt(s string) felt.Felt {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		panic(err)
	}
	return *f
}
