// Package cmd implements the scicat-authz CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SwissOpenEM/scicat-backend-next/pkg/authz"
	"github.com/SwissOpenEM/scicat-backend-next/pkg/store"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// Global flags
	outputFormat string
	groupsPath   string
	datasetsPath string

	// Principal flags, shared by the commands that evaluate policy
	principalName   string
	principalEmail  string
	principalGroups []string

	// Shared engine and dataset fixture, built in PersistentPreRunE
	engine   *authz.Authorizer
	datasets *store.Memory
)

var rootCmd = &cobra.Command{
	Use:   "scicat-authz",
	Short: "Inspect catalog authorization decisions",
	Long: `scicat-authz evaluates the dataset authorization policy offline.

It answers three questions about a principal: whether a concrete request
would be permitted, which query filter a list request would be narrowed
to, and which actions the principal's groups grant. Datasets are read
from a JSON fixture file, so decisions can be inspected without a
running catalog.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		cfg := authz.DefaultConfig()
		if groupsPath != "" {
			data, err := os.ReadFile(groupsPath)
			if err != nil {
				return fmt.Errorf("failed to read groups file: %w", err)
			}
			cfg.GroupsYAML = data
		}

		datasets = store.NewMemory()
		cfg.Fetcher = datasets
		if datasetsPath != "" {
			if err := loadDatasets(cmd.Context(), datasetsPath, datasets); err != nil {
				return err
			}
		}

		var err error
		engine, err = authz.NewAuthorizer(cfg)
		if err != nil {
			return fmt.Errorf("failed to build authorizer: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&groupsPath, "groups", "", "Group policy YAML (default: built-in policy)")
	rootCmd.PersistentFlags().StringVar(&datasetsPath, "datasets", "", "Dataset fixture JSON file")
	rootCmd.PersistentFlags().StringVar(&principalName, "username", "", "Principal username (empty: anonymous)")
	rootCmd.PersistentFlags().StringVar(&principalEmail, "email", "", "Principal email")
	rootCmd.PersistentFlags().StringSliceVarP(&principalGroups, "group", "g", nil, "Principal group (repeatable)")
}

// principal assembles the Principal from the global flags.
func principal() authz.Principal {
	return authz.Principal{
		Username:      principalName,
		Email:         principalEmail,
		CurrentGroups: principalGroups,
	}
}

// loadDatasets reads a JSON array of datasets into the memory store.
func loadDatasets(ctx context.Context, path string, mem *store.Memory) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset fixture: %w", err)
	}
	var all []store.Dataset
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("failed to parse dataset fixture: %w", err)
	}
	for i := range all {
		if err := mem.Insert(ctx, &all[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatOutput handles output formatting based on the --output flag.
func formatOutput(data interface{}) error {
	switch outputFormat {
	case "json":
		return outputJSON(data)
	case "yaml":
		return outputYAML(data)
	default:
		// Table format is handled by each command
		return nil
	}
}

func outputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func outputYAML(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
