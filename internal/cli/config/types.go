// Package config loads CLI configuration from defaults, cooksheet.yaml,
// COOKSHEET_* environment variables, and flags, in ascending precedence.
package config

// Defaults.
const (
	DefaultSnapshotDir = "."
	DefaultStateFile   = "cooksheet.db"
	DefaultListenAddr  = ":8080"
	DefaultOutput      = "auto"
)

// Config is the resolved CLI configuration.
type Config struct {
	// SnapshotDir holds the normalized snapshot tables
	// (clients/workers/tasks/rules as yaml or json).
	SnapshotDir string `koanf:"snapshot_dir"`

	// RulesFile overrides rule discovery inside SnapshotDir.
	RulesFile string `koanf:"rules_file"`

	// StatePath is the pass history database. Empty disables history.
	StatePath string `koanf:"state_path"`

	// ListenAddr is the serve command's bind address.
	ListenAddr string `koanf:"listen"`

	// OutputFormat selects the renderer mode (auto|text|markdown|json).
	OutputFormat string `koanf:"output"`

	Verbose bool `koanf:"verbose"`
}
