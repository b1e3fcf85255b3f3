// Package loader assembles validation snapshots from normalized
// snapshot directories and re-submits them on file changes in watch
// mode.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cooksheet/cooksheet/internal/rules"
	"github.com/cooksheet/cooksheet/internal/schema"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// ruleFileNames are tried in order when no explicit rules file is given.
var ruleFileNames = []string{"rules.yaml", "rules.yml", "rules.json"}

// FindRulesFile locates the rule file inside a snapshot directory.
// Returns empty string if none exists.
func FindRulesFile(dir string) string {
	for _, name := range ruleFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadSnapshot reads the three entity tables and the rule set from a
// snapshot directory. rulesFile overrides rule discovery when non-empty.
// Missing tables load as empty; a malformed file is a structural failure.
func LoadSnapshot(dir, rulesFile string) (*validate.Snapshot, error) {
	snap := &validate.Snapshot{}

	var err error
	if snap.Clients, err = schema.LoadTable(dir, schema.EntityClients); err != nil {
		return nil, fmt.Errorf("failed to load clients table: %w", err)
	}
	if snap.Workers, err = schema.LoadTable(dir, schema.EntityWorkers); err != nil {
		return nil, fmt.Errorf("failed to load workers table: %w", err)
	}
	if snap.Tasks, err = schema.LoadTable(dir, schema.EntityTasks); err != nil {
		return nil, fmt.Errorf("failed to load tasks table: %w", err)
	}

	if rulesFile == "" {
		rulesFile = FindRulesFile(dir)
	}
	if rulesFile != "" {
		if snap.Rules, err = rules.Load(rulesFile); err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}
	return snap, nil
}
