package commands

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/cli/output"
	"github.com/cooksheet/cooksheet/internal/loader"
	"github.com/cooksheet/cooksheet/internal/service"
	"github.com/cooksheet/cooksheet/internal/state"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Watch  bool   // Re-validate on snapshot file changes
	Format string // Output format override
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [snapshot-dir]",
		Short: "Validate a snapshot and report every defect found",
		Long: `Run a full validation pass over the snapshot: row and column checks,
cross-table references, dependency cycles, capacity feasibility, and
rule-set consistency. The report is complete and deterministic; the
command exits non-zero when critical errors are present.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate the configured snapshot directory
  cooksheet validate

  # Validate a specific directory
  cooksheet validate ./snapshots/q3

  # Re-validate whenever a snapshot file changes
  cooksheet validate --watch

  # Machine-readable report
  cooksheet validate --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate on snapshot file changes")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	dir := cmdCtx.Cfg.SnapshotDir
	if len(args) > 0 {
		dir = args[0]
	}

	store, closeStore, err := openHistory(cmdCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := service.NewRunner(validate.NewEngine(cmdCtx.Logger), store, cmdCtx.Logger)

	if opts.Watch {
		return watchValidate(cmd, cmdCtx, r, runner, dir)
	}

	snap, err := loader.LoadSnapshot(dir, cmdCtx.Cfg.RulesFile)
	if err != nil {
		return err
	}
	report, err := runner.Submit(cmd.Context(), snap, state.TriggerCLI)
	if err != nil {
		return err
	}

	if err := renderReport(r, report); err != nil {
		return err
	}
	if !report.IsValid {
		return fmt.Errorf("snapshot is invalid: %d critical error(s)", report.TotalErrors)
	}
	return nil
}

// watchValidate keeps validating until interrupted. An invalid snapshot
// does not stop the loop; structural load failures are reported and
// waited out.
func watchValidate(cmd *cobra.Command, cmdCtx *CommandContext, r *output.Renderer, runner *service.Runner, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pass := func() {
		snap, err := loader.LoadSnapshot(dir, cmdCtx.Cfg.RulesFile)
		if err != nil {
			fmt.Fprintf(r.ErrWriter(), "Error: %v\n", err)
			return
		}
		report, err := runner.Submit(ctx, snap, state.TriggerWatch)
		if err != nil {
			cmdCtx.Logger.Debug("watch pass not delivered", "error", err)
			return
		}
		_ = renderReport(r, report)
	}

	pass()
	err := loader.Watch(ctx, dir, cmdCtx.Logger, pass)
	if ctx.Err() != nil {
		// Interrupted; a watch session has no failure exit.
		return nil
	}
	return err
}

// renderReport writes the report in the renderer's effective mode.
func renderReport(r *output.Renderer, report *validate.Report) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	styles := r.Styles()
	r.Println("")
	if report.IsValid {
		r.Println(styles.Success.Render(fmt.Sprintf("Snapshot is valid (%d warning(s))", report.TotalWarnings)))
	} else {
		r.Println(styles.Error.Render(fmt.Sprintf("Snapshot is invalid: %d error(s), %d warning(s)",
			report.TotalErrors, report.TotalWarnings)))
	}
	r.Println("")

	issues := report.Issues()
	if len(issues) > 0 {
		rows := make([][]string, len(issues))
		for i, is := range issues {
			rows[i] = []string{
				formatRow(is.RowIndex),
				formatColumn(is.Column),
				string(is.ErrorType),
				string(is.Severity),
				is.Message,
			}
		}
		r.Table([]string{"Row", "Column", "Type", "Severity", "Message"}, rows)
		r.Println("")
	}

	for _, rec := range report.Recommendations {
		r.Println("  - " + rec)
	}
	if len(report.Recommendations) > 0 {
		r.Println("")
	}
	return nil
}

func formatRow(idx int) string {
	if idx == validate.DatasetScope {
		return "-"
	}
	return strconv.Itoa(idx)
}

func formatColumn(col *string) string {
	if col == nil {
		return "-"
	}
	return *col
}

// openHistory opens the pass history store when configured. The second
// return value closes it and is always safe to defer.
func openHistory(cmdCtx *CommandContext) (*state.Store, func(), error) {
	if cmdCtx.Cfg.StatePath == "" {
		return nil, func() {}, nil
	}
	store := state.NewStore(cmdCtx.Logger)
	if err := store.Open(cmdCtx.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
