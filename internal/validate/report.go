package validate

import "fmt"

// SummaryExample is one representative occurrence of an error type.
type SummaryExample struct {
	Row     int     `json:"row"`
	Column  *string `json:"column"`
	Message string  `json:"message"`
}

// maxSummaryExamples caps how many occurrences a summary entry carries.
const maxSummaryExamples = 3

// TypeSummary aggregates all issues of one error type.
type TypeSummary struct {
	Count    int              `json:"count"`
	Severity Severity         `json:"severity"`
	Examples []SummaryExample `json:"examples"`
}

// Report is the complete outcome of one validation pass.
type Report struct {
	IsValid         bool                      `json:"is_valid"`
	TotalErrors     int                       `json:"total_errors"`
	TotalWarnings   int                       `json:"total_warnings"`
	Errors          []Issue                   `json:"errors"`
	Warnings        []Issue                   `json:"warnings"`
	Summary         map[ErrorType]TypeSummary `json:"summary"`
	Recommendations []string                  `json:"recommendations"`
}

// Issues returns errors and warnings as a single ordered stream, errors
// first.
func (r *Report) Issues() []Issue {
	out := make([]Issue, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}

// recommendationHints maps error types to the remediation advice the
// report surfaces when that type occurs. Types without a hint fall back
// to the generic critical/warning lines only.
var recommendationHints = map[ErrorType]string{
	ErrDuplicateID:         "Resolve duplicate identifiers so every row has a unique ID",
	ErrJSONParse:           "Repair malformed list cells; use JSON arrays or comma-separated values",
	ErrUnknownReference:    "Fix cross-table references so every referenced ID exists",
	ErrCircularDependency:  "Break circular task dependency chains",
	ErrUnstaffableSkill:    "Add workers covering the required skills no one currently has",
	ErrPhaseSaturation:     "Rebalance phases or add capacity for oversubscribed skills",
	ErrCapacityExceeded:    "Reduce worker load or raise the relevant capacity limits",
	ErrConflictingRules:    "Reconcile the conflicting rules before relying on the rule set",
	ErrMalformedRuleRef:    "Update rule scopes to reference existing tasks and workers",
	ErrPriorityOutOfDomain: "Use a defined priority level in priority rules",
}

// BuildReport assembles the final report from raw issue streams. It
// deduplicates exact repeats, orders issues by position, totals by
// severity, and synthesizes the per-type summary and recommendations.
// The result is fully determined by the input issues.
func BuildReport(issues []Issue) *Report {
	seen := make(map[string]bool, len(issues))
	deduped := make([]Issue, 0, len(issues))
	for _, is := range issues {
		key := is.dedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, is)
	}
	sortIssues(deduped)

	r := &Report{
		Errors:          []Issue{},
		Warnings:        []Issue{},
		Summary:         make(map[ErrorType]TypeSummary),
		Recommendations: []string{},
	}
	for _, is := range deduped {
		if is.Severity == SeverityCritical {
			r.Errors = append(r.Errors, is)
		} else {
			r.Warnings = append(r.Warnings, is)
		}

		s := r.Summary[is.ErrorType]
		s.Count++
		if s.Severity == "" || is.Severity == SeverityCritical {
			s.Severity = is.Severity
		}
		if len(s.Examples) < maxSummaryExamples {
			s.Examples = append(s.Examples, SummaryExample{
				Row:     is.RowIndex,
				Column:  is.Column,
				Message: is.Message,
			})
		}
		r.Summary[is.ErrorType] = s
	}

	r.TotalErrors = len(r.Errors)
	r.TotalWarnings = len(r.Warnings)
	r.IsValid = r.TotalErrors == 0

	if r.TotalErrors > 0 {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Fix %d critical error(s) before exporting this snapshot", r.TotalErrors))
	}
	if r.TotalWarnings > 0 {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Review %d warning(s) that may degrade allocation quality", r.TotalWarnings))
	}
	for _, et := range ErrorTypes {
		if _, ok := r.Summary[et]; !ok {
			continue
		}
		if hint, ok := recommendationHints[et]; ok {
			r.Recommendations = append(r.Recommendations, hint)
		}
	}
	return r
}
