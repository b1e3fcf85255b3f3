package validate

import (
	"fmt"

	"github.com/cooksheet/cooksheet/internal/schema"
)

// ValidateDataset checks whole-table invariants for one entity table:
// required columns that are missing from every row, and duplicate
// primary IDs. Row-level field checks live in ValidateRow.
func ValidateDataset(sch *schema.EntitySchema, records []schema.Record) []Issue {
	var issues []Issue
	issues = append(issues, missingColumnIssues(sch, records)...)
	issues = append(issues, duplicateIDIssues(sch, records)...)
	return issues
}

// missingColumnIssues flags required columns absent from every record.
// An empty table has no column evidence either way and is left alone.
func missingColumnIssues(sch *schema.EntitySchema, records []schema.Record) []Issue {
	if len(records) == 0 {
		return nil
	}
	var issues []Issue
	for _, name := range sch.RequiredFields() {
		present := false
		for _, rec := range records {
			if _, ok := rec[name]; ok {
				present = true
				break
			}
		}
		if present {
			continue
		}
		issues = append(issues, Issue{
			ErrorType:    ErrMissingRequiredField,
			Severity:     SeverityCritical,
			RowIndex:     DatasetScope,
			Column:       column(name),
			Message:      fmt.Sprintf("Required column %s is missing from the %s table", name, sch.Entity),
			SuggestedFix: fix(fmt.Sprintf("Add a %s column to your %s data", name, sch.Entity)),
		})
	}
	return issues
}

// duplicateIDIssues flags every occurrence of an ID after its first.
// The first row keeps the ID; later rows are the ones asked to rename.
func duplicateIDIssues(sch *schema.EntitySchema, records []schema.Record) []Issue {
	var issues []Issue
	occurrences := make(map[string]int, len(records))
	for i, rec := range records {
		id := rec.String(sch.IDField)
		if rec.IsEmpty(sch.IDField) {
			continue
		}
		occurrences[id]++
		if occurrences[id] == 1 {
			continue
		}
		issues = append(issues, Issue{
			ErrorType:    ErrDuplicateID,
			Severity:     SeverityCritical,
			RowIndex:     i,
			Column:       column(sch.IDField),
			Message:      fmt.Sprintf("Duplicate %s %q", sch.IDField, id),
			SuggestedFix: fix(fmt.Sprintf("Rename to %q or remove the duplicate row", fmt.Sprintf("%s_%d", id, occurrences[id]))),
			CellValue:    rec[sch.IDField],
		})
	}
	return issues
}
