package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooksheet/cooksheet/internal/schema"
	"github.com/cooksheet/cooksheet/internal/validate"
)

func reportWith(errs, warns int) *validate.Report {
	var issues []validate.Issue
	for i := 0; i < errs; i++ {
		issues = append(issues, validate.Issue{
			ErrorType: validate.ErrDuplicateID, Severity: validate.SeverityCritical,
			RowIndex: i, Message: "dup",
		})
	}
	for i := 0; i < warns; i++ {
		issues = append(issues, validate.Issue{
			ErrorType: validate.ErrPhaseSaturation, Severity: validate.SeverityWarning,
			RowIndex: validate.DatasetScope, Message: "sat",
		})
	}
	return validate.BuildReport(issues)
}

func TestQualityScore(t *testing.T) {
	assert.Equal(t, 1.0, QualityScore(reportWith(0, 0)))
	assert.InDelta(t, 0.7, QualityScore(reportWith(3, 0)), 1e-9)
	assert.Equal(t, 0.0, QualityScore(reportWith(20, 0)))
	assert.InDelta(t, 0.95, QualityScore(reportWith(0, 1)), 1e-9)
}

func TestQualityScore_WarningFloor(t *testing.T) {
	r := validate.BuildReport(nil)
	r.TotalWarnings = 40
	assert.Equal(t, 0.7, QualityScore(r))
}

func TestAssessReadiness(t *testing.T) {
	assert.Equal(t, ReadinessProductionReady, AssessReadiness(reportWith(0, 0)))
	assert.Equal(t, ReadinessReadyWithWarnings, AssessReadiness(reportWith(0, 2)))
	assert.Equal(t, ReadinessNeedsFixes, AssessReadiness(reportWith(2, 1)))
}

func TestAutoFixes(t *testing.T) {
	report := validate.BuildReport([]validate.Issue{
		{ErrorType: validate.ErrMissingRequiredField, Severity: validate.SeverityCritical, RowIndex: 0, Message: "missing Name"},
		{ErrorType: validate.ErrInvalidType, Severity: validate.SeverityCritical, RowIndex: 1, Message: "bad Duration"},
		{ErrorType: validate.ErrDuplicateID, Severity: validate.SeverityCritical, RowIndex: 2, Message: "dup"},
	})
	// Attach columns the builder preserved.
	require.Len(t, report.Errors, 3)

	fixes := AutoFixes(report)
	// Issues without a column are skipped, and only the two mechanical
	// classes produce fixes.
	assert.Empty(t, fixes)
}

func TestAutoFixes_WithColumns(t *testing.T) {
	name := "Name"
	duration := "Duration"
	report := validate.BuildReport([]validate.Issue{
		{ErrorType: validate.ErrMissingRequiredField, Severity: validate.SeverityCritical, RowIndex: 0, Column: &name, Message: "missing"},
		{ErrorType: validate.ErrInvalidType, Severity: validate.SeverityCritical, RowIndex: 1, Column: &duration, Message: "bad"},
	})

	fixes := AutoFixes(report)

	require.Len(t, fixes, 2)
	assert.Equal(t, "auto_fill", fixes[0].Type)
	assert.Contains(t, fixes[0].Description, "Name")
	assert.Equal(t, "type_conversion", fixes[1].Type)
	assert.Contains(t, fixes[1].Description, "Duration")
}

func TestSuggestions_LoadImbalance(t *testing.T) {
	snap := &validate.Snapshot{
		Workers: []schema.Record{
			{"WorkerID": "W1", "Name": "A", "Skills": "Go", "MaxLoad": 1},
			{"WorkerID": "W2", "Name": "B", "Skills": "Go", "MaxLoad": 10},
		},
	}

	suggestions := Suggestions(snap)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, "loadBalance", suggestions[0].Type)
	assert.Equal(t, "suggest_001", suggestions[0].ID)
}

func TestSuggestions_PriorityInflation(t *testing.T) {
	snap := &validate.Snapshot{
		Tasks: []schema.Record{
			{"TaskID": "T1", "ClientID": "C1", "Duration": 1, "Priority": "High", "RequiredSkills": "Go"},
			{"TaskID": "T2", "ClientID": "C1", "Duration": 1, "Priority": "Critical", "RequiredSkills": "Go"},
			{"TaskID": "T3", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go"},
		},
	}

	suggestions := Suggestions(snap)

	found := false
	for _, s := range suggestions {
		if s.Type == "priority" {
			found = true
			assert.Contains(t, s.Description, "67%")
		}
	}
	assert.True(t, found, "expected a priority inflation suggestion")
}

func TestSuggestions_DeepDependencyChain(t *testing.T) {
	snap := &validate.Snapshot{
		Tasks: []schema.Record{
			{"TaskID": "T1", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go"},
			{"TaskID": "T2", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T1"},
			{"TaskID": "T3", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T2"},
			{"TaskID": "T4", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T3"},
		},
	}

	suggestions := Suggestions(snap)

	found := false
	for _, s := range suggestions {
		if s.Type == "scheduling" {
			found = true
			assert.Contains(t, s.Description, "4 tasks")
		}
	}
	assert.True(t, found, "expected a dependency chain suggestion")
}

func TestSuggestions_ShortChainsNotFlagged(t *testing.T) {
	snap := &validate.Snapshot{
		Tasks: []schema.Record{
			{"TaskID": "T1", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go"},
			{"TaskID": "T2", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T1"},
			{"TaskID": "T3", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T2"},
		},
	}

	for _, s := range Suggestions(snap) {
		assert.NotEqual(t, "scheduling", s.Type)
	}
}

func TestSuggestions_CyclicDependenciesSkipChainAnalysis(t *testing.T) {
	snap := &validate.Snapshot{
		Tasks: []schema.Record{
			{"TaskID": "T1", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T2"},
			{"TaskID": "T2", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go", "Dependencies": "T1"},
		},
	}

	for _, s := range Suggestions(snap) {
		assert.NotEqual(t, "scheduling", s.Type)
	}
}

func TestSuggestions_IndustryConcentration(t *testing.T) {
	snap := &validate.Snapshot{
		Clients: []schema.Record{
			{"ClientID": "C1", "Name": "A", "Industry": "Fintech"},
			{"ClientID": "C2", "Name": "B", "Industry": "Fintech"},
			{"ClientID": "C3", "Name": "C", "Industry": "Retail"},
		},
	}

	suggestions := Suggestions(snap)

	found := false
	for _, s := range suggestions {
		if s.Type == "market_insight" {
			found = true
			assert.Contains(t, s.Description, "Fintech")
		}
	}
	assert.True(t, found, "expected an industry concentration suggestion")
}

func TestSuggestions_FallbackForHealthyData(t *testing.T) {
	snap := &validate.Snapshot{
		Clients: []schema.Record{
			{"ClientID": "C1", "Name": "Acme", "Industry": "Retail", "PriorityLevel": "Low", "Budget": 10.0, "Contact": "a@acme"},
		},
	}

	suggestions := Suggestions(snap)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "general", suggestions[0].Type)
}

func TestSuggestions_EmptySnapshot(t *testing.T) {
	assert.Empty(t, Suggestions(&validate.Snapshot{}))
	assert.Empty(t, Suggestions(nil))
}

func TestSuggestions_Deterministic(t *testing.T) {
	snap := &validate.Snapshot{
		Clients: []schema.Record{
			{"ClientID": "C1", "Name": "A", "Industry": "Fintech", "Budget": 100.0},
			{"ClientID": "C2", "Name": "B", "Industry": "Fintech", "Budget": 500.0},
		},
		Workers: []schema.Record{
			{"WorkerID": "W1", "Name": "A", "Skills": "Go", "MaxLoad": 1},
			{"WorkerID": "W2", "Name": "B", "Skills": "SQL", "MaxLoad": 9},
		},
		Tasks: []schema.Record{
			{"TaskID": "T1", "ClientID": "C1", "Duration": 10, "Priority": "High", "RequiredSkills": "Go"},
			{"TaskID": "T2", "ClientID": "C2", "Duration": 1, "Priority": "High", "RequiredSkills": "SQL"},
		},
	}

	first := Suggestions(snap)
	second := Suggestions(snap)
	assert.Equal(t, first, second)
}
