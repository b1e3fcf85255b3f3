// Package commands_test exercises CLI command creation and execution
// against fixture snapshot directories.
package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooksheet/cooksheet/internal/cli/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// validSnapshotDir writes a snapshot that validates cleanly.
func validSnapshotDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "clients.yaml", `
- ClientID: C1
  Name: Acme
`)
	writeFile(t, dir, "workers.yaml", `
- WorkerID: W1
  Name: Dana
  Skills: Go, SQL
  MaxLoad: 3
  CurrentLoad: 1
`)
	writeFile(t, dir, "tasks.yaml", `
- TaskID: T1
  ClientID: C1
  Duration: 2
  Priority: Low
  RequiredSkills: Go
`)
	return dir
}

// brokenSnapshotDir writes a snapshot with a duplicate worker ID.
func brokenSnapshotDir(t *testing.T) string {
	t.Helper()
	dir := validSnapshotDir(t)
	writeFile(t, dir, "workers.yaml", `
- WorkerID: W1
  Name: Dana
  Skills: Go, SQL
  MaxLoad: 3
- WorkerID: W1
  Name: Remi
  Skills: Go
  MaxLoad: 2
`)
	return dir
}

// loadTestConfig resets config state and loads it from the given env
// overrides, so standalone command execution sees the fixture paths.
func loadTestConfig(t *testing.T, env map[string]string) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	for k, v := range env {
		t.Setenv(k, v)
	}
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate [snapshot-dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"watch", "format"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestValidateCommand_CleanSnapshot(t *testing.T) {
	dir := validSnapshotDir(t)
	loadTestConfig(t, map[string]string{
		"COOKSHEET_STATE_PATH": filepath.Join(t.TempDir(), "history.db"),
	})

	out, err := execute(t, NewValidateCommand(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidateCommand_BrokenSnapshotFails(t *testing.T) {
	dir := brokenSnapshotDir(t)
	loadTestConfig(t, map[string]string{
		"COOKSHEET_STATE_PATH": filepath.Join(t.TempDir(), "history.db"),
	})

	out, err := execute(t, NewValidateCommand(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
	assert.Contains(t, out, "duplicate_id")
}

func TestValidateCommand_JSONFormat(t *testing.T) {
	dir := validSnapshotDir(t)
	loadTestConfig(t, map[string]string{
		"COOKSHEET_STATE_PATH": filepath.Join(t.TempDir(), "history.db"),
	})

	out, err := execute(t, NewValidateCommand(), dir, "--format", "json")
	require.NoError(t, err)

	var report struct {
		IsValid bool `json:"is_valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.IsValid)
}

func TestValidateCommand_MissingDirFails(t *testing.T) {
	loadTestConfig(t, map[string]string{
		"COOKSHEET_STATE_PATH": filepath.Join(t.TempDir(), "history.db"),
	})

	_, err := execute(t, NewValidateCommand(), filepath.Join(t.TempDir(), "nope"))
	// Missing tables are tolerated; an empty snapshot validates.
	require.NoError(t, err)
}

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestRulesCommand_ListsRules(t *testing.T) {
	dir := validSnapshotDir(t)
	writeFile(t, dir, "rules.yaml", `
- id: pair
  kind: coRun
  scope:
    tasks: [T1, T2]
- id: cap
  kind: capacity
  enforcement: preferred
  scope:
    workers: [W1]
  parameters:
    max_concurrent: 2
`)
	loadTestConfig(t, map[string]string{"COOKSHEET_SNAPSHOT_DIR": dir})

	out, err := execute(t, NewRulesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "pair")
	assert.Contains(t, out, "coRun")
	assert.Contains(t, out, "cap")
	assert.Contains(t, out, "preferred")
}

func TestRulesCommand_NoRulesFile(t *testing.T) {
	loadTestConfig(t, map[string]string{"COOKSHEET_SNAPSHOT_DIR": validSnapshotDir(t)})

	out, err := execute(t, NewRulesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "No rules file")
}

func TestNewInsightsCommand(t *testing.T) {
	cmd := NewInsightsCommand()

	assert.Equal(t, "insights [snapshot-dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestInsightsCommand_CleanSnapshot(t *testing.T) {
	dir := validSnapshotDir(t)
	loadTestConfig(t, nil)

	out, err := execute(t, NewInsightsCommand(), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Quality score: 1.00")
	assert.Contains(t, out, "production_ready")
}

func TestInsightsCommand_JSONOutput(t *testing.T) {
	dir := brokenSnapshotDir(t)
	loadTestConfig(t, map[string]string{"COOKSHEET_OUTPUT": "json"})

	out, err := execute(t, NewInsightsCommand(), dir)
	require.NoError(t, err)

	var analysis struct {
		QualityScore float64 `json:"quality_score"`
		Readiness    string  `json:"readiness"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Less(t, analysis.QualityScore, 1.0)
	assert.Equal(t, "needs_fixes", analysis.Readiness)
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "flag limit should exist")
}

func TestRunsCommand_ListsRecordedPasses(t *testing.T) {
	dir := validSnapshotDir(t)
	statePath := filepath.Join(t.TempDir(), "history.db")
	loadTestConfig(t, map[string]string{"COOKSHEET_STATE_PATH": statePath})

	_, err := execute(t, NewValidateCommand(), dir)
	require.NoError(t, err)

	out, err := execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "cli")
}

func TestRunsCommand_HistoryDisabled(t *testing.T) {
	loadTestConfig(t, map[string]string{"COOKSHEET_STATE_PATH": ""})

	_, err := execute(t, NewRunsCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("listen"), "flag listen should exist")
}
