package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/cli/output"
	"github.com/cooksheet/cooksheet/internal/insights"
	"github.com/cooksheet/cooksheet/internal/loader"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// NewInsightsCommand creates the insights command.
func NewInsightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights [snapshot-dir]",
		Short: "Score snapshot quality and suggest rules and fixes",
		Long: `Validate the snapshot, then derive a quality score, a readiness grade,
automatic fix candidates, and rule suggestions from the data shape.`,
		Example: `  # Analyze the configured snapshot directory
  cooksheet insights

  # Machine-readable analysis
  cooksheet insights -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInsights,
	}
	return cmd
}

func runInsights(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	dir := cmdCtx.Cfg.SnapshotDir
	if len(args) > 0 {
		dir = args[0]
	}

	snap, err := loader.LoadSnapshot(dir, cmdCtx.Cfg.RulesFile)
	if err != nil {
		return err
	}

	engine := validate.NewEngine(cmdCtx.Logger)
	report, err := engine.Validate(cmd.Context(), snap)
	if err != nil {
		return err
	}
	analysis := insights.Analyze(snap, report)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(analysis)
	}

	styles := r.Styles()
	r.Println(styles.Header1.Render("Snapshot Insights"))
	r.Println("")
	r.Printf("Quality score: %.2f\n", analysis.QualityScore)
	r.Printf("Readiness:     %s\n", analysis.Readiness)
	r.Println("")

	if len(analysis.AutoFixes) > 0 {
		r.Println(styles.Header2.Render("Automatic fixes"))
		for _, f := range analysis.AutoFixes {
			r.Printf("  - [%s] %s (confidence %.0f%%)\n", f.Type, f.Description, f.Confidence*100)
		}
		r.Println("")
	}

	if len(analysis.Suggestions) > 0 {
		r.Println(styles.Header2.Render(fmt.Sprintf("Suggestions (%d)", len(analysis.Suggestions))))
		rows := make([][]string, len(analysis.Suggestions))
		for i, s := range analysis.Suggestions {
			rows[i] = []string{s.ID, s.Category, s.Title, s.Impact}
		}
		r.Table([]string{"ID", "Category", "Title", "Impact"}, rows)
	}
	return nil
}
