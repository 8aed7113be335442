package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

var callerFilter string

func init() {
	filterCmd.Flags().StringVarP(&callerFilter, "filter", "f", "", "Caller filter JSON to narrow")
	rootCmd.AddCommand(filterCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter <operation>",
	Short: "Show the narrowed list filter for a principal",
	Long: `Synthesize the query filter a list request would execute as.

The caller's own filter, if any, is combined with the visibility clause
derived from the principal's grants. With a dataset fixture loaded, the
matching pids are listed as well.

Examples:
  scicat-authz filter dataset:read -g labA
  scicat-authz filter dataset:read -g labA -f '{"where": {"type": "raw"}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := authz.Operation(args[0])
		if !authz.ValidOperation(op) {
			return fmt.Errorf("unknown operation %q", args[0])
		}

		caller, err := authz.ParseFilter(callerFilter)
		if err != nil {
			return err
		}
		narrowed, err := engine.NarrowFilter(principal(), op, caller)
		if err != nil {
			return err
		}

		matched, err := datasets.FindAll(cmd.Context(), narrowed)
		if err != nil {
			return err
		}
		pids := make([]string, 0, len(matched))
		for _, ds := range matched {
			pids = append(pids, ds.Pid)
		}

		result := struct {
			Operation string       `json:"operation" yaml:"operation"`
			Filter    authz.Filter `json:"filter" yaml:"filter"`
			Pids      []string     `json:"pids,omitempty" yaml:"pids,omitempty"`
		}{Operation: args[0], Filter: narrowed, Pids: pids}

		if outputFormat != "table" {
			return formatOutput(result)
		}

		if err := outputJSON(narrowed); err != nil {
			return err
		}
		if datasetsPath != "" {
			fmt.Printf("matches %d dataset(s)\n", len(pids))
			for _, pid := range pids {
				fmt.Printf("  %s\n", pid)
			}
		}
		return nil
	},
}
