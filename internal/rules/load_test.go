package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
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
  active: false
`)

	rs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.Equal(t, "pair", rs[0].ID)
	assert.Equal(t, KindCoRun, rs[0].Kind)
	assert.Equal(t, []string{"T1", "T2"}, rs[0].Scope.Tasks)
	// Omitted enforcement and active take their defaults.
	assert.Equal(t, EnforcementStrict, rs[0].Enforcement)
	assert.True(t, rs[0].Active)

	assert.Equal(t, EnforcementPreferred, rs[1].Enforcement)
	assert.False(t, rs[1].Active)
	assert.Equal(t, map[string]any{"max_concurrent": 2}, rs[1].Parameters)
}

func TestLoad_JSON(t *testing.T) {
	path := writeRules(t, "rules.json", `[
  {"id": "excl", "kind": "exclusion", "scope": {"tasks": ["T1", "T3"]}}
]`)

	rs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, KindExclusion, rs[0].Kind)
}

func TestLoad_MissingKindFails(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
- id: mystery
  scope:
    tasks: [T1]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing its kind tag")
}

func TestLoad_UnknownKindFails(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
- id: r1
  kind: teleport
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "teleport"`)
}

func TestLoad_UnknownEnforcementFails(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
- id: r1
  kind: coRun
  enforcement: mandatory
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown enforcement "mandatory"`)
}

func TestLoad_NotASequence(t *testing.T) {
	path := writeRules(t, "rules.yaml", "rules:\n  - r1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a sequence of rules")
}

func TestFromRecords_GeneratesMissingIDs(t *testing.T) {
	rs, err := FromRecords([]map[string]any{
		{"kind": "coRun", "scope": map[string]any{"tasks": []any{"T1", "T2"}}},
		{"kind": "timing", "scope": map[string]any{"tasks": []any{"T1"}}},
	})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "rule_001", rs[0].ID)
	assert.Equal(t, "rule_002", rs[1].ID)
}
