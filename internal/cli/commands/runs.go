package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/cli/output"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded validation passes",
		Example: `  # Show the last 20 passes
  cooksheet runs

  # Show more history, machine-readable
  cooksheet runs --limit 100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of passes to show")
	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if cmdCtx.Cfg.StatePath == "" {
		return fmt.Errorf("pass history is disabled: no state path configured")
	}
	store, closeStore, err := openHistory(cmdCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	passes, err := store.ListPasses(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(passes)
	}

	if len(passes) == 0 {
		r.Println("No validation passes recorded.")
		return nil
	}

	styles := r.Styles()
	r.Println(styles.Header1.Render(fmt.Sprintf("Validation passes (%d)", len(passes))))
	r.Println("")

	rows := make([][]string, len(passes))
	for i, p := range passes {
		rows[i] = []string{
			p.ID,
			string(p.Trigger),
			string(p.Status),
			p.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(p.TotalErrors),
			strconv.Itoa(p.TotalWarnings),
			strconv.FormatBool(p.IsValid),
		}
	}
	r.Table([]string{"ID", "Trigger", "Status", "Started", "Errors", "Warnings", "Valid"}, rows)
	return nil
}
