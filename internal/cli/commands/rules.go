package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/cli/output"
	"github.com/cooksheet/cooksheet/internal/loader"
	"github.com/cooksheet/cooksheet/internal/rules"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule set attached to the snapshot",
		Example: `  # List rules from the configured snapshot directory
  cooksheet rules

  # Machine-readable rule set
  cooksheet rules -o json`,
		Args: cobra.NoArgs,
		RunE: runRules,
	}
	return cmd
}

func runRules(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	path := cmdCtx.Cfg.RulesFile
	if path == "" {
		path = loader.FindRulesFile(cmdCtx.Cfg.SnapshotDir)
	}
	if path == "" {
		r.Println("No rules file found.")
		return nil
	}

	ruleSet, err := rules.Load(path)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ruleSet)
	}

	styles := r.Styles()
	r.Println(styles.Header1.Render(fmt.Sprintf("Rules (%d)", len(ruleSet))))
	r.Println("")

	rows := make([][]string, len(ruleSet))
	for i, rule := range ruleSet {
		rows[i] = []string{
			rule.ID,
			string(rule.Kind),
			string(rule.Enforcement),
			formatScope(rule.Scope),
			strconv.FormatBool(rule.Active),
		}
	}
	r.Table([]string{"ID", "Kind", "Enforcement", "Scope", "Active"}, rows)
	return nil
}

func formatScope(s rules.Scope) string {
	var parts []string
	if len(s.Tasks) > 0 {
		parts = append(parts, "tasks: "+strings.Join(s.Tasks, ", "))
	}
	if len(s.Workers) > 0 {
		parts = append(parts, "workers: "+strings.Join(s.Workers, ", "))
	}
	if s.Selector != "" {
		parts = append(parts, "selector: "+s.Selector)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}
