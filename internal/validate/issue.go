// Package validate implements the validation and rule-consistency
// engine. It takes an immutable snapshot (entity tables plus rules) and
// produces a deterministic diagnostic report: row-level field checks,
// whole-column checks, cross-table referential integrity, aggregate
// capacity constraints, and mutual consistency of the rule set.
//
// The engine is a pure function of its inputs: it never mutates the
// snapshot, keeps no state between passes, and identical snapshots yield
// byte-identical reports.
package validate

import (
	"sort"
	"strconv"
)

// Severity grades an issue. Critical issues make the snapshot invalid;
// warnings never do.
type Severity string

// Severities.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ErrorType classifies an issue. The set is closed; every issue the
// engine emits carries one of these.
type ErrorType string

// Error types.
const (
	ErrMissingRequiredField ErrorType = "missing_required_field"
	ErrDuplicateID          ErrorType = "duplicate_id"
	ErrInvalidType          ErrorType = "invalid_type"
	ErrOutOfRange           ErrorType = "out_of_range"
	ErrJSONParse            ErrorType = "json_parse_error"
	ErrUnknownReference     ErrorType = "unknown_reference"
	ErrCircularDependency   ErrorType = "circular_dependency"
	ErrUnstaffableSkill     ErrorType = "unstaffable_skill"
	ErrPartialSkillCoverage ErrorType = "partial_skill_coverage"
	ErrPhaseSaturation      ErrorType = "phase_saturation"
	ErrCapacityExceeded     ErrorType = "capacity_exceeded"
	ErrConflictingRules     ErrorType = "conflicting_rules"
	ErrMalformedRuleRef     ErrorType = "malformed_rule_reference"
	ErrEmptyRuleScope       ErrorType = "empty_rule_scope"
	ErrPriorityOutOfDomain  ErrorType = "priority_out_of_domain"
)

// ErrorTypes lists the full taxonomy in canonical order. Recommendation
// synthesis iterates this order so output is stable.
var ErrorTypes = []ErrorType{
	ErrMissingRequiredField,
	ErrDuplicateID,
	ErrInvalidType,
	ErrOutOfRange,
	ErrJSONParse,
	ErrUnknownReference,
	ErrCircularDependency,
	ErrUnstaffableSkill,
	ErrPartialSkillCoverage,
	ErrPhaseSaturation,
	ErrCapacityExceeded,
	ErrConflictingRules,
	ErrMalformedRuleRef,
	ErrEmptyRuleScope,
	ErrPriorityOutOfDomain,
}

// DatasetScope is the row index for issues that span a whole table or
// the rule set rather than a single row.
const DatasetScope = -1

// Issue is one diagnostic finding.
type Issue struct {
	ErrorType    ErrorType `json:"error_type"`
	Severity     Severity  `json:"severity"`
	RowIndex     int       `json:"row_index"`
	Column       *string   `json:"column"`
	Message      string    `json:"message"`
	SuggestedFix *string   `json:"suggested_fix"`
	CellValue    any       `json:"cell_value"`
}

// column wraps a column name for the nullable Column field.
func column(name string) *string { return &name }

// fix wraps a suggested fix string.
func fix(s string) *string { return &s }

// dedupKey identifies exact duplicates across issue streams.
func (i Issue) dedupKey() string {
	col := ""
	if i.Column != nil {
		col = *i.Column
	}
	return string(i.ErrorType) + "\x00" + strconv.Itoa(i.RowIndex) + "\x00" + col + "\x00" + i.Message
}

// sortIssues orders issues for reporting: dataset/rule-level first
// (row_index = -1), then by row, column (nil first), and finally by
// type and message so equal positions tie-break deterministically.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		ia, ib := issues[a], issues[b]
		if ia.RowIndex != ib.RowIndex {
			return ia.RowIndex < ib.RowIndex
		}
		ca, cb := "", ""
		if ia.Column != nil {
			ca = *ia.Column
		}
		if ib.Column != nil {
			cb = *ib.Column
		}
		if ca != cb {
			if ca == "" {
				return true
			}
			if cb == "" {
				return false
			}
			return ca < cb
		}
		if ia.ErrorType != ib.ErrorType {
			return ia.ErrorType < ib.ErrorType
		}
		return ia.Message < ib.Message
	})
}
