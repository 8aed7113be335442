package authz

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

//go:embed groups.yaml
var defaultGroupsYAML []byte

// Groups are the configured group lists the grant rules key on. They are
// static configuration: loaded once at construction and never mutated.
type Groups struct {
	// Admin members hold every action, including all any-tier actions.
	Admin []string `yaml:"admin"`

	// Delete members hold the delete:any action of every family. Deletion is
	// deliberately not derivable from ownership alone.
	Delete []string `yaml:"delete"`

	// CreateDataset members may create datasets for groups they belong to
	// (without declaring a pid) and manage sub-resources of owned datasets.
	CreateDataset []string `yaml:"createDataset"`

	// CreateDatasetWithPid members may additionally declare the pid at
	// creation time.
	CreateDatasetWithPid []string `yaml:"createDatasetWithPid"`

	// CreateDatasetPrivileged members may create datasets on behalf of any
	// owner group.
	CreateDatasetPrivileged []string `yaml:"createDatasetPrivileged"`
}

// ParseGroups decodes group lists from YAML.
func ParseGroups(data []byte) (Groups, error) {
	var g Groups
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Groups{}, fmt.Errorf("failed to parse group config: %w", err)
	}
	return g, nil
}

// Config contains options for the Authorizer.
type Config struct {
	// Logger for structured decision logging. If nil, uses slog.Default().
	Logger *slog.Logger

	// Audit receives an entry per authorization decision. If nil, decisions
	// are only written to the logger.
	Audit AuditLogger

	// Fetcher resolves pid targets. May be nil when only payload targets and
	// list-filter synthesis are used.
	Fetcher DatasetFetcher

	// GroupsYAML allows loading group lists from a custom source (for
	// testing or deployment config). If nil, the embedded groups.yaml is
	// used.
	GroupsYAML []byte
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Logger:     nil, // Will use slog.Default() in NewAuthorizer
		GroupsYAML: nil, // Use embedded group lists
	}
}
