package validate

import (
	"fmt"
	"strings"

	"github.com/cooksheet/cooksheet/internal/schema"
)

// ValidateRow checks a single record against its entity schema: required
// presence, numeric coercion and bounds, enum membership, and list cell
// parsing. Issues are emitted in schema column order.
func ValidateRow(sch *schema.EntitySchema, rowIndex int, rec schema.Record) []Issue {
	var issues []Issue

	for _, f := range sch.Fields {
		if rec.IsEmpty(f.Name) {
			if f.Required {
				issues = append(issues, Issue{
					ErrorType:    ErrMissingRequiredField,
					Severity:     SeverityCritical,
					RowIndex:     rowIndex,
					Column:       column(f.Name),
					Message:      fmt.Sprintf("%s is required but empty", f.Name),
					SuggestedFix: fix(fmt.Sprintf("Provide a value for %s", f.Name)),
					CellValue:    rec[f.Name],
				})
			}
			continue
		}

		switch f.Kind {
		case schema.FieldNumber:
			v, err := rec.Number(f.Name)
			if err != nil {
				issues = append(issues, invalidType(rowIndex, f.Name, "number", rec[f.Name]))
				continue
			}
			issues = append(issues, boundsIssues(rowIndex, f, v, rec[f.Name])...)

		case schema.FieldInteger:
			v, err := rec.Integer(f.Name)
			if err != nil {
				issues = append(issues, invalidType(rowIndex, f.Name, "integer", rec[f.Name]))
				continue
			}
			issues = append(issues, boundsIssues(rowIndex, f, float64(v), rec[f.Name])...)

		case schema.FieldEnum:
			val := strings.TrimSpace(rec.String(f.Name))
			if !contains(f.Enum, val) {
				issues = append(issues, Issue{
					ErrorType:    ErrOutOfRange,
					Severity:     SeverityCritical,
					RowIndex:     rowIndex,
					Column:       column(f.Name),
					Message:      fmt.Sprintf("%s must be one of %s, got %q", f.Name, strings.Join(f.Enum, ", "), val),
					SuggestedFix: fix(fmt.Sprintf("Use one of: %s", strings.Join(f.Enum, ", "))),
					CellValue:    rec[f.Name],
				})
			}

		case schema.FieldList:
			items, err := schema.ParseList(rec[f.Name])
			if err != nil {
				issues = append(issues, Issue{
					ErrorType:    ErrJSONParse,
					Severity:     SeverityCritical,
					RowIndex:     rowIndex,
					Column:       column(f.Name),
					Message:      fmt.Sprintf("%s could not be parsed as a list: %v", f.Name, err),
					SuggestedFix: fix("Use a JSON array or comma-separated values"),
					CellValue:    rec[f.Name],
				})
				continue
			}
			if f.NonEmpty && len(items) == 0 {
				issues = append(issues, Issue{
					ErrorType:    ErrMissingRequiredField,
					Severity:     SeverityCritical,
					RowIndex:     rowIndex,
					Column:       column(f.Name),
					Message:      fmt.Sprintf("%s must contain at least one entry", f.Name),
					SuggestedFix: fix(fmt.Sprintf("List at least one %s entry", f.Name)),
					CellValue:    rec[f.Name],
				})
			}
		}
	}

	if sch.Entity == schema.EntityWorkers {
		issues = append(issues, workerLoadIssues(rowIndex, rec)...)
	}
	return issues
}

// workerLoadIssues checks the CurrentLoad <= MaxLoad invariant, which
// spans two columns and so sits outside the per-field loop.
func workerLoadIssues(rowIndex int, rec schema.Record) []Issue {
	max, errMax := rec.Integer("MaxLoad")
	cur, errCur := rec.Integer("CurrentLoad")
	if errMax != nil || errCur != nil || cur <= max {
		return nil
	}
	return []Issue{{
		ErrorType:    ErrOutOfRange,
		Severity:     SeverityCritical,
		RowIndex:     rowIndex,
		Column:       column("CurrentLoad"),
		Message:      fmt.Sprintf("CurrentLoad (%d) exceeds MaxLoad (%d)", cur, max),
		SuggestedFix: fix(fmt.Sprintf("Reduce CurrentLoad to at most %d or raise MaxLoad", max)),
		CellValue:    rec["CurrentLoad"],
	}}
}

func invalidType(rowIndex int, col, want string, cell any) Issue {
	return Issue{
		ErrorType:    ErrInvalidType,
		Severity:     SeverityCritical,
		RowIndex:     rowIndex,
		Column:       column(col),
		Message:      fmt.Sprintf("%s must be a %s, got %v", col, want, cell),
		SuggestedFix: fix(fmt.Sprintf("Replace with a valid %s", want)),
		CellValue:    cell,
	}
}

func boundsIssues(rowIndex int, f schema.Field, v float64, cell any) []Issue {
	var issues []Issue
	if f.Min != nil {
		if f.MinExclusive && v <= *f.Min {
			issues = append(issues, outOfRange(rowIndex, f.Name,
				fmt.Sprintf("%s must be greater than %s, got %s", f.Name, formatNumber(*f.Min), formatNumber(v)), cell))
		} else if !f.MinExclusive && v < *f.Min {
			issues = append(issues, outOfRange(rowIndex, f.Name,
				fmt.Sprintf("%s must be at least %s, got %s", f.Name, formatNumber(*f.Min), formatNumber(v)), cell))
		}
	}
	if f.Max != nil && v > *f.Max {
		issues = append(issues, outOfRange(rowIndex, f.Name,
			fmt.Sprintf("%s must be at most %s, got %s", f.Name, formatNumber(*f.Max), formatNumber(v)), cell))
	}
	return issues
}

func outOfRange(rowIndex int, col, msg string, cell any) Issue {
	return Issue{
		ErrorType:    ErrOutOfRange,
		Severity:     SeverityCritical,
		RowIndex:     rowIndex,
		Column:       column(col),
		Message:      msg,
		SuggestedFix: fix(fmt.Sprintf("Adjust %s to a value inside its allowed range", col)),
		CellValue:    cell,
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
