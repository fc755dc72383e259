package cli

import (
	"fmt"
	"sort"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/cobra"

	"github.com/worldforge-io/worldforge/internal/world"
)

var (
	inspectProfile     string
	inspectDeclaration string
	inspectProperties  map[string]string
	inspectResource    string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [project-dir]",
	Short: "Show the world's remote state",
	Long: `Rebuild the world's remote state from its event log and print it:
class hash history, registered resources with their sync status, and
the permissions each resource carries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectProfile, "profile", "profile.pkl", "Profile entrypoint, relative to the project directory")
	inspectCmd.Flags().StringVar(&inspectDeclaration, "declaration", "declaration.pkl", "Declaration entrypoint, relative to the project directory")
	inspectCmd.Flags().StringToStringVarP(&inspectProperties, "prop", "D", nil, "Set external properties (format: key=value)")
	inspectCmd.Flags().StringVar(&inspectResource, "resource", "", "Only show the resource with this tag")
}

func runInspect(cmd *cobra.Command, args []string) error {
	dir, err := resolveProjectDir(args)
	if err != nil {
		return err
	}

	p, err := loadProject(cmd.Context(), dir, inspectProfile, inspectDeclaration, inspectProperties)
	if err != nil {
		return err
	}

	fmt.Printf("\nWorld %s: %s\n", p.worldAddress.String(), p.diff.WorldStatus)
	if len(p.remote.ClassHashes) > 0 {
		fmt.Println("Class hash history:")
		for i, hash := range p.remote.ClassHashes {
			marker := " "
			if i == len(p.remote.ClassHashes)-1 {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, hash.String())
		}
	}

	if inspectResource != "" {
		return inspectOne(p, inspectResource)
	}

	fmt.Println("\nResources:")
	for _, sel := range p.remote.SortedSelectors() {
		printResource(p, sel, "  ")
	}
	if len(p.diff.Untracked) > 0 {
		fmt.Println("\nNot declared locally:")
		for _, sel := range p.diff.Untracked {
			printResource(p, sel, "  ")
		}
	}
	return nil
}

// inspectOne prints a single resource by tag, declared or not.
func inspectOne(p *project, tag string) error {
	for sel, r := range p.remote.Resources {
		if r.Tag() == tag {
			fmt.Println()
			printResource(p, sel, "")
			return nil
		}
	}
	return fmt.Errorf("no remote resource with tag %q", tag)
}

func printResource(p *project, selector felt.Felt, indent string) {
	r, ok := p.remote.Resources[selector]
	if !ok {
		return
	}

	status := "untracked"
	if rd, ok := p.diff.Resources[selector]; ok {
		status = rd.Status.String()
	}
	fmt.Printf("%s%s %s [%s]\n", indent, r.Kind(), r.Tag(), status)
	fmt.Printf("%s  selector   %s\n", indent, selector.String())

	switch res := r.(type) {
	case *world.ContractRemote:
		hash := res.Common.CurrentClassHash()
		fmt.Printf("%s  address    %s\n", indent, res.Common.Address.String())
		fmt.Printf("%s  class hash %s\n", indent, hash.String())
		fmt.Printf("%s  initialized %t\n", indent, res.Initialized)
	case *world.ModelRemote:
		hash := res.Common.CurrentClassHash()
		fmt.Printf("%s  class hash %s\n", indent, hash.String())
	case *world.EventRemote:
		hash := res.Common.CurrentClassHash()
		fmt.Printf("%s  class hash %s\n", indent, hash.String())
	}

	for _, addr := range sortedAddresses(p.remote.Owners(selector)) {
		fmt.Printf("%s  owner      %s\n", indent, addr.String())
	}
	for _, addr := range sortedAddresses(p.remote.Writers(selector)) {
		fmt.Printf("%s  writer     %s\n", indent, addr.String())
	}
}

func sortedAddresses(set map[felt.Felt]bool) []felt.Felt {
	addrs := make([]felt.Felt, 0, len(set))
	for addr := range set {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(&addrs[j]) < 0 })
	return addrs
}
