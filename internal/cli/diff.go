package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	diffProfile     string
	diffDeclaration string
	diffProperties  map[string]string
)

var diffCmd = &cobra.Command{
	Use:   "diff [project-dir]",
	Short: "Show what a migration would change",
	Long: `Rebuild the world's remote state from its event log and print the
difference against the local declaration without submitting anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffProfile, "profile", "profile.pkl", "Profile entrypoint, relative to the project directory")
	diffCmd.Flags().StringVar(&diffDeclaration, "declaration", "declaration.pkl", "Declaration entrypoint, relative to the project directory")
	diffCmd.Flags().StringToStringVarP(&diffProperties, "prop", "D", nil, "Set external properties (format: key=value)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	dir, err := resolveProjectDir(args)
	if err != nil {
		return err
	}

	p, err := loadProject(cmd.Context(), dir, diffProfile, diffDeclaration, diffProperties)
	if err != nil {
		return err
	}

	fmt.Println()
	renderDiff(p.diff)
	renderDiffSummary(p.diff)

	if p.diff.IsSynced() {
		fmt.Println("No changes. World is up-to-date.")
	}
	return nil
}
