package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/worldforge-io/worldforge/internal/chain"
	"github.com/worldforge-io/worldforge/internal/migrate"
	"github.com/worldforge-io/worldforge/internal/state"
)

var (
	migrateProfile     string
	migrateDeclaration string
	migrateProperties  map[string]string
	migrateDryRun      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [project-dir]",
	Short: "Converge the onchain world with the local declaration",
	Long: `Rebuild the world's remote state from its event log, diff it against the
local declaration and submit the ordered operations needed to converge:
world deployment or upgrade, resource registration, permission grants and
contract initialization.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateProfile, "profile", "profile.pkl", "Profile entrypoint, relative to the project directory")
	migrateCmd.Flags().StringVar(&migrateDeclaration, "declaration", "declaration.pkl", "Declaration entrypoint, relative to the project directory")
	migrateCmd.Flags().StringToStringVarP(&migrateProperties, "prop", "D", nil, "Set external properties (format: key=value)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Print the plan without submitting anything")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, err := resolveProjectDir(args)
	if err != nil {
		return err
	}

	p, err := loadProject(ctx, dir, migrateProfile, migrateDeclaration, migrateProperties)
	if err != nil {
		return err
	}

	fmt.Println()
	renderDiff(p.diff)
	renderDiffSummary(p.diff)

	if p.diff.IsSynced() {
		fmt.Println("No changes. World is up-to-date.")
		return nil
	}
	if migrateDryRun {
		fmt.Println("Dry run: nothing submitted.")
		return nil
	}

	if err := p.prof.ValidateAccount(); err != nil {
		return err
	}
	account, err := chain.NewRPCAccount(chain.RPCAccountConfig{
		URL:        p.prof.RPC.URL,
		Address:    p.prof.Account.Address,
		PublicKey:  p.prof.Account.PublicKey,
		PrivateKey: p.prof.Account.PrivateKey,
	})
	if err != nil {
		return err
	}

	txnConfig := chain.TxnConfig{Multicall: !p.prof.Migration.DisableMulticall}
	migration := migrate.New(p.diff, account, p.worldAddress, txnConfig, p.prof.InitCallArgs)
	migration.OnProgress(func(phase, status string) {
		fmt.Printf("  %s: %s\n", phase, status)
	})

	fmt.Println("\nMigrating...")
	manifest, err := migration.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	store, err := state.NewStore(p.prof.Store, dir)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Printf("\nMigration complete. World at %s\n", manifest.WorldAddress)
	return nil
}
