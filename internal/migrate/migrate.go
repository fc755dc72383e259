// Package migrate converges remote world state toward a local declaration.
//
// A migration drives four strictly ordered phases over a computed WorldDiff:
//
//  1. Ensure the world contract exists and runs the declared class.
//  2. Sync resources: register namespaces, declare classes, then register or
//     upgrade contracts, models and events.
//  3. Sync permissions: grant locally declared owners and writers not yet
//     set remotely. Never revokes; revocation is an explicit operation
//     outside this engine.
//  4. Initialize contracts whose remote initialized flag is unset.
//
// Later phases assume earlier phases' operations have landed. A phase
// failure aborts the run, but the whole pipeline is idempotent: remote state
// is rebuilt from the log on the next run and already-synced work is
// skipped.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/chain"
	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/logging"
	"github.com/worldforge-io/worldforge/internal/naming"
	"github.com/worldforge-io/worldforge/internal/world"
)

// Phase names reported in progress events and errors.
const (
	PhaseEnsureWorld     = "ensure world"
	PhaseSyncResources   = "sync resources"
	PhaseSyncPermissions = "sync permissions"
	PhaseInitContracts   = "initialize contracts"
)

// ProgressFunc receives phase progress: status is "started", "completed" or
// "failed". Replaces a hard-coded terminal spinner so callers choose the
// presentation.
type ProgressFunc func(phase, status string)

// Migration executes one reconciliation run over a computed diff.
type Migration struct {
	diff         *diff.WorldDiff
	account      chain.Account
	worldAddress felt.Felt
	txnConfig    chain.TxnConfig
	initCallArgs map[string][]string
	progress     ProgressFunc
}

// New creates a migration run. worldAddress is the world's address when it
// is already deployed; for a fresh world it is recomputed during phase 1.
// initCallArgs maps contract tags to felt-literal initialization arguments.
func New(d *diff.WorldDiff, account chain.Account, worldAddress felt.Felt, txnConfig chain.TxnConfig, initCallArgs map[string][]string) *Migration {
	return &Migration{
		diff:         d,
		account:      account,
		worldAddress: worldAddress,
		txnConfig:    txnConfig,
		initCallArgs: initCallArgs,
	}
}

// OnProgress registers a progress callback for the run.
func (m *Migration) OnProgress(fn ProgressFunc) {
	m.progress = fn
}

// Migrate runs the four phases and returns the manifest of the converged
// state. Configuration problems surface before anything is submitted.
func (m *Migration) Migrate(ctx context.Context) (*diff.Manifest, error) {
	initCalldata, err := m.parseInitCallArgs()
	if err != nil {
		return nil, err
	}

	if err := m.runPhase(ctx, PhaseEnsureWorld, m.ensureWorld); err != nil {
		return nil, err
	}

	if !m.diff.IsSynced() {
		if err := m.runPhase(ctx, PhaseSyncResources, m.syncResources); err != nil {
			return nil, err
		}
	}

	if err := m.runPhase(ctx, PhaseSyncPermissions, m.syncPermissions); err != nil {
		return nil, err
	}

	if err := m.runPhase(ctx, PhaseInitContracts, func(ctx context.Context) error {
		return m.initializeContracts(ctx, initCalldata)
	}); err != nil {
		return nil, err
	}

	return diff.NewManifest(m.diff, m.worldAddress), nil
}

func (m *Migration) runPhase(ctx context.Context, phase string, fn func(context.Context) error) error {
	m.emit(phase, "started")
	if err := fn(ctx); err != nil {
		m.emit(phase, "failed")
		var merr *MigrationError
		if errors.As(err, &merr) {
			return err
		}
		return phaseError(phase, "", err)
	}
	m.emit(phase, "completed")
	return nil
}

func (m *Migration) emit(phase, status string) {
	if m.progress != nil {
		m.progress(phase, status)
	}
}

// ensureWorld declares and deploys (or upgrades) the world contract itself.
func (m *Migration) ensureWorld(ctx context.Context) error {
	local := m.diff.Local

	switch m.diff.WorldStatus {
	case diff.WorldSynced:
		return nil

	case diff.WorldNotDeployed:
		logging.Debug("deploying the first world", "class_hash", local.Artifact.ClassHash.String())

		if err := chain.Declare(ctx, m.account, local.Artifact); err != nil {
			return err
		}

		deployer := chain.NewDeployer(m.account)
		salt := naming.WorldSalt(local.Seed)
		address, err := deployer.DeployViaUDC(ctx, local.Artifact.ClassHash, salt,
			[]felt.Felt{local.Artifact.ClassHash})
		if err != nil {
			return err
		}
		m.worldAddress = address

	case diff.WorldNewVersion:
		logging.Debug("upgrading the world", "class_hash", local.Artifact.ClassHash.String())

		if err := chain.Declare(ctx, m.account, local.Artifact); err != nil {
			return err
		}

		invoker := chain.NewInvoker(m.account, m.txnConfig)
		invoker.AddCall(chain.Call{
			To:         m.worldAddress,
			EntryPoint: "upgrade",
			Calldata:   []felt.Felt{local.Artifact.ClassHash},
		})
		if err := invoker.Submit(ctx); err != nil {
			return err
		}
	}

	return nil
}

// syncResources registers namespaces first (everything else is namespaced),
// queues class declarations and registration/upgrade calls per resource,
// then submits declarations before the calls that reference them.
func (m *Migration) syncResources(ctx context.Context) error {
	invoker := chain.NewInvoker(m.account, m.txnConfig)
	declarer := chain.NewDeclarer(m.account)

	if err := m.namespaceCalls(invoker); err != nil {
		return err
	}

	for _, sel := range m.diff.SortedSelectors() {
		rd := m.diff.Resources[sel]
		switch rd.Kind() {
		case world.KindContract, world.KindModel, world.KindEvent:
			if err := m.resourceCalls(rd, invoker, declarer); err != nil {
				return phaseError(PhaseSyncResources, rd.Tag(), err)
			}
		}
	}

	if err := declarer.DeclareAll(ctx); err != nil {
		return err
	}
	return invoker.Submit(ctx)
}

func (m *Migration) namespaceCalls(invoker *chain.Invoker) error {
	for _, sel := range m.diff.Namespaces {
		rd, ok := m.diff.Resources[sel]
		if !ok {
			return fmt.Errorf("namespace selector %s missing from diff", sel.String())
		}

		ns, isNS := rd.Local.(*world.NamespaceLocal)
		if !isNS || rd.Status != diff.StatusCreated {
			continue
		}

		logging.Debug("registering namespace", "name", ns.Name)

		encoded, err := naming.EncodeShortString(ns.Name)
		if err != nil {
			return phaseError(PhaseSyncResources, ns.Name, err)
		}
		invoker.AddCall(chain.Call{
			To:         m.worldAddress,
			EntryPoint: "register_namespace",
			Calldata:   []felt.Felt{encoded},
		})
	}
	return nil
}

// resourceCalls queues the declaration and the register or upgrade call for
// one contract, model or event. Synced resources queue nothing.
func (m *Migration) resourceCalls(rd *diff.ResourceDiff, invoker *chain.Invoker, declarer *chain.Declarer) error {
	if rd.Status == diff.StatusSynced {
		return nil
	}

	common, err := localCommon(rd.Local)
	if err != nil {
		return err
	}

	nsEncoded, err := naming.EncodeShortString(common.Namespace)
	if err != nil {
		return err
	}
	nameEncoded, err := naming.EncodeShortString(common.Name)
	if err != nil {
		return err
	}

	declarer.AddClass(common.Artifact)

	kind := rd.Kind().String()
	switch rd.Status {
	case diff.StatusCreated:
		logging.Debug("registering resource", "kind", kind, "tag", rd.Tag(),
			"class_hash", common.Artifact.ClassHash.String())

		var calldata []felt.Felt
		if rd.Kind() == world.KindContract {
			// Contracts register under an explicit selector so the world's
			// directory can resolve them before their address is known.
			sel := rd.Selector()
			calldata = []felt.Felt{sel, nsEncoded, common.Artifact.ClassHash}
		} else {
			calldata = []felt.Felt{nsEncoded, nameEncoded, common.Artifact.ClassHash}
		}

		invoker.AddCall(chain.Call{
			To:         m.worldAddress,
			EntryPoint: "register_" + kind,
			Calldata:   calldata,
		})

	case diff.StatusUpdated:
		logging.Debug("upgrading resource", "kind", kind, "tag", rd.Tag(),
			"class_hash", common.Artifact.ClassHash.String())

		invoker.AddCall(chain.Call{
			To:         m.worldAddress,
			EntryPoint: "upgrade_" + kind,
			Calldata:   []felt.Felt{nsEncoded, nameEncoded, common.Artifact.ClassHash},
		})
	}

	return nil
}

// syncPermissions grants the declared owners and writers missing remotely.
// Additive only: remote-only permissions stay untouched.
func (m *Migration) syncPermissions(ctx context.Context) error {
	invoker := chain.NewInvoker(m.account, m.txnConfig)

	for _, sel := range m.diff.SortedSelectors() {
		delta := m.diff.GetPermissions(sel)

		for _, addr := range delta.OwnersOnlyLocal {
			logging.Debug("granting owner permission",
				"target", m.diff.Resources[sel].Tag(), "grantee", addr.String())
			invoker.AddCall(chain.Call{
				To:         m.worldAddress,
				EntryPoint: "grant_owner",
				Calldata:   []felt.Felt{sel, addr},
			})
		}

		for _, addr := range delta.WritersOnlyLocal {
			logging.Debug("granting writer permission",
				"target", m.diff.Resources[sel].Tag(), "grantee", addr.String())
			invoker.AddCall(chain.Call{
				To:         m.worldAddress,
				EntryPoint: "grant_writer",
				Calldata:   []felt.Felt{sel, addr},
			})
		}
	}

	return invoker.Submit(ctx)
}

// initializeContracts initializes every contract that was just created or
// whose remote initialized flag is still unset. Arguments are felt literals
// from configuration; addresses and class hashes are never injected, the
// contract resolves other resources by name through the world's directory.
func (m *Migration) initializeContracts(ctx context.Context, initCalldata map[string][]felt.Felt) error {
	invoker := chain.NewInvoker(m.account, m.txnConfig)

	for _, sel := range m.diff.SortedSelectors() {
		rd := m.diff.Resources[sel]
		if rd.Kind() != world.KindContract {
			continue
		}

		doInit := false
		switch rd.Status {
		case diff.StatusCreated:
			doInit = true
		case diff.StatusUpdated, diff.StatusSynced:
			if remote, ok := rd.Remote.(*world.ContractRemote); ok {
				doInit = !remote.Initialized
			}
		}
		if !doInit {
			continue
		}

		args := initCalldata[rd.Tag()]
		logging.Debug("initializing contract", "tag", rd.Tag(), "args", len(args))

		calldata := make([]felt.Felt, 0, len(args)+2)
		calldata = append(calldata, sel, *new(felt.Felt).SetUint64(uint64(len(args))))
		calldata = append(calldata, args...)

		invoker.AddCall(chain.Call{
			To:         m.worldAddress,
			EntryPoint: "init_contract",
			Calldata:   calldata,
		})
	}

	return invoker.Submit(ctx)
}

// parseInitCallArgs validates and parses the configured init arguments.
// Only felt literals are accepted.
func (m *Migration) parseInitCallArgs() (map[string][]felt.Felt, error) {
	out := make(map[string][]felt.Felt, len(m.initCallArgs))
	for tag, args := range m.initCallArgs {
		parsed := make([]felt.Felt, 0, len(args))
		for _, arg := range args {
			f, err := new(felt.Felt).SetString(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: init argument %q for %s is not a felt: %v",
					ErrPlanning, arg, tag, err)
			}
			parsed = append(parsed, *f)
		}
		out[tag] = parsed
	}
	return out, nil
}

func localCommon(r world.ResourceLocal) (*world.CommonLocal, error) {
	switch v := r.(type) {
	case *world.ContractLocal:
		return &v.Common, nil
	case *world.ModelLocal:
		return &v.Common, nil
	case *world.EventLocal:
		return &v.Common, nil
	default:
		return nil, fmt.Errorf("resource %s has no class artifact", r.Tag())
	}
}
