// Package commands implements the cooksheet subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/cli/config"
	"github.com/cooksheet/cooksheet/internal/cli/output"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the shared command dependencies from the
// loaded configuration and the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, falling back to
// environment variables when LoadConfig has not run (e.g. direct
// command construction in tests).
func getConfig() *config.Config {
	cfg := config.GetCurrentConfig()

	if v := os.Getenv("COOKSHEET_SNAPSHOT_DIR"); v != "" && cfg.SnapshotDir == config.DefaultSnapshotDir {
		cfg.SnapshotDir = v
	}
	return cfg
}
