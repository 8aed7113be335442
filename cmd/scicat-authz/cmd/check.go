package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
)

var (
	permitFmt = color.New(color.FgGreen, color.Bold).SprintFunc()
	denyFmt   = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt    = color.New(color.Faint).SprintFunc()
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <operation> <pid>",
	Short: "Evaluate a single authorization decision",
	Long: `Evaluate whether the principal may perform an operation on a dataset.

The dataset is looked up in the fixture file by pid. Operations use the
"family:verb" form, e.g. dataset:read or origdatablock:delete.

Examples:
  scicat-authz check dataset:read 20.500.12345/abc -g labA --datasets fixtures.json
  scicat-authz check dataset:delete 20.500.12345/abc -g archivemanager --datasets fixtures.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := authz.Operation(args[0])
		if !authz.ValidOperation(op) {
			return fmt.Errorf("unknown operation %q", args[0])
		}

		p := principal()
		instance, err := engine.Authorize(cmd.Context(), p, op, authz.TargetPid(args[1]))

		result := struct {
			Operation string `json:"operation" yaml:"operation"`
			Pid       string `json:"pid" yaml:"pid"`
			Principal string `json:"principal,omitempty" yaml:"principal,omitempty"`
			Decision  string `json:"decision" yaml:"decision"`
			Error     string `json:"error,omitempty" yaml:"error,omitempty"`
		}{
			Operation: args[0],
			Pid:       args[1],
			Principal: p.Username,
			Decision:  "permit",
		}
		if err != nil {
			result.Decision = "deny"
			result.Error = authz.ErrorCode(err)
		}

		if outputFormat != "table" {
			return formatOutput(result)
		}

		if err == nil {
			fmt.Printf("%s %s on %s\n", permitFmt("PERMIT"), args[0], instance.Pid)
			return nil
		}

		var authzErr *authz.AuthzError
		if errors.As(err, &authzErr) {
			fmt.Printf("%s %s on %s %s\n", denyFmt("DENY"), args[0], args[1],
				dimFmt(fmt.Sprintf("(%s: %s)", authzErr.Code, authzErr.Message)))
			return nil
		}
		return err
	},
}
