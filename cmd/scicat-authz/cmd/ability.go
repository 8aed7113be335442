package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

func init() {
	rootCmd.AddCommand(abilityCmd)
}

var abilityCmd = &cobra.Command{
	Use:   "ability",
	Short: "List the actions a principal's groups grant",
	Long: `Derive the principal's grant set and list every granted action.

Examples:
  scicat-authz ability -g labA
  scicat-authz ability --username ingest01 -g ingestor -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ability := engine.Ability(principal())

		granted := make([]string, 0)
		for _, action := range authz.AllActions() {
			if ability.Can(action) {
				granted = append(granted, string(action))
			}
		}
		sort.Strings(granted)

		if outputFormat != "table" {
			return formatOutput(struct {
				Principal string   `json:"principal,omitempty" yaml:"principal,omitempty"`
				Groups    []string `json:"groups,omitempty" yaml:"groups,omitempty"`
				Actions   []string `json:"actions" yaml:"actions"`
			}{Principal: principalName, Groups: principalGroups, Actions: granted})
		}

		if len(granted) == 0 {
			fmt.Println("no actions granted")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RESOURCE\tACTION\tTIER")
		for _, action := range granted {
			parts := strings.SplitN(action, ":", 3)
			if len(parts) == 3 {
				fmt.Fprintf(w, "%s\t%s\t%s\n", parts[0], parts[1], parts[2])
			} else {
				fmt.Fprintf(w, "%s\t\t\n", action)
			}
		}
		return w.Flush()
	},
}
