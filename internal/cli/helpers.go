package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NethermindEth/juno/core/felt"

	"github.com/worldforge-io/worldforge/internal/chain"
	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/eval"
	"github.com/worldforge-io/worldforge/internal/naming"
	"github.com/worldforge-io/worldforge/internal/profile"
	"github.com/worldforge-io/worldforge/internal/world"
)

// project bundles everything a command needs after loading configuration
// and rebuilding remote state.
type project struct {
	dir          string
	prof         *profile.Profile
	local        *world.WorldLocal
	remote       *world.WorldRemote
	diff         *diff.WorldDiff
	worldAddress felt.Felt
}

// resolveProjectDir picks the project directory from an optional positional
// argument, defaulting to the working directory.
func resolveProjectDir(args []string) (string, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", args[0], err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat path %s: %w", args[0], err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", args[0])
	}
	return abs, nil
}

// loadProject evaluates the profile and declaration, rebuilds remote state
// from the world's event log and computes the diff.
func loadProject(ctx context.Context, dir, profileEntry, declarationEntry string, properties map[string]string) (*project, error) {
	evaluator := eval.NewEvaluator(dir)

	fmt.Print("Loading configuration... ")
	prof, err := evaluator.LoadProfile(ctx, profileEntry, properties)
	if err != nil {
		fmt.Println("FAILED")
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	decl, err := evaluator.LoadDeclaration(ctx, filepath.Join(dir, declarationEntry))
	if err != nil {
		fmt.Println("FAILED")
		return nil, fmt.Errorf("failed to load declaration: %w", err)
	}

	local, err := world.LoadLocal(dir, decl, prof)
	if err != nil {
		fmt.Println("FAILED")
		return nil, fmt.Errorf("failed to load declared state: %w", err)
	}
	fmt.Println("OK")

	worldAddress, err := resolveWorldAddress(prof, local)
	if err != nil {
		return nil, err
	}

	fmt.Print("Rebuilding remote state... ")
	remote, err := fetchRemote(ctx, prof.RPC.URL, worldAddress)
	if err != nil {
		fmt.Println("FAILED")
		return nil, err
	}
	fmt.Println("OK")

	return &project{
		dir:          dir,
		prof:         prof,
		local:        local,
		remote:       remote,
		diff:         diff.Compute(local, remote),
		worldAddress: worldAddress,
	}, nil
}

// resolveWorldAddress uses the configured address when present, otherwise
// derives the deterministic deployment address from the seed.
func resolveWorldAddress(prof *profile.Profile, local *world.WorldLocal) (felt.Felt, error) {
	if prof.World.Address != "" {
		f, err := new(felt.Felt).SetString(prof.World.Address)
		if err != nil {
			return felt.Felt{}, fmt.Errorf("invalid world address %q: %w", prof.World.Address, err)
		}
		return *f, nil
	}

	salt := naming.WorldSalt(local.Seed)
	return chain.ContractAddress(felt.Felt{}, local.Artifact.ClassHash, salt,
		[]felt.Felt{local.Artifact.ClassHash}), nil
}

func fetchRemote(ctx context.Context, rpcURL string, worldAddress felt.Felt) (*world.WorldRemote, error) {
	source, err := world.NewRPCEventSource(rpcURL, worldAddress)
	if err != nil {
		return nil, err
	}

	events, err := world.CollectEvents(ctx, source, world.DefaultChunkSize)
	if err != nil {
		return nil, err
	}

	remote, err := world.BuildRemote(events)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild remote state: %w", err)
	}
	return remote, nil
}

// renderDiff prints the classification and pending grants of a diff.
func renderDiff(d *diff.WorldDiff) {
	fmt.Printf("World: %s\n", d.WorldStatus)

	for _, sel := range d.SortedSelectors() {
		rd := d.Resources[sel]
		symbol := " "
		switch rd.Status {
		case diff.StatusCreated:
			symbol = "+"
		case diff.StatusUpdated:
			symbol = "~"
		}
		fmt.Printf("  %s %s %s\n", symbol, rd.Kind(), rd.Tag())

		delta := d.GetPermissions(sel)
		for _, addr := range delta.OwnersOnlyLocal {
			fmt.Printf("      + owner  %s\n", addr.String())
		}
		for _, addr := range delta.WritersOnlyLocal {
			fmt.Printf("      + writer %s\n", addr.String())
		}
	}

	if len(d.Untracked) > 0 {
		fmt.Printf("  %d remote resource(s) have no local declaration (left untouched)\n", len(d.Untracked))
	}
}

// renderDiffSummary prints the create/update/sync counts.
func renderDiffSummary(d *diff.WorldDiff) {
	var created, updated, synced int
	for _, rd := range d.Resources {
		switch rd.Status {
		case diff.StatusCreated:
			created++
		case diff.StatusUpdated:
			updated++
		default:
			synced++
		}
	}
	fmt.Printf("\nPlan: %d to create, %d to update, %d in sync.\n", created, updated, synced)
}
