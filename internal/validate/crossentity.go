package validate

import (
	"fmt"
	"strings"

	"github.com/cooksheet/cooksheet/internal/depgraph"
	"github.com/cooksheet/cooksheet/internal/schema"
)

// ValidateCrossEntity checks invariants spanning tables: client
// references from tasks, task dependency resolution and cycles, and
// skill coverage of the worker pool. Slice index is row index for every
// entity slice.
func ValidateCrossEntity(clients []schema.Client, workers []schema.Worker, tasks []schema.Task) []Issue {
	var issues []Issue

	clientIDs := make(map[string]bool, len(clients))
	for _, c := range clients {
		if c.ClientID != "" {
			clientIDs[c.ClientID] = true
		}
	}
	taskRow := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.TaskID != "" {
			if _, seen := taskRow[t.TaskID]; !seen {
				taskRow[t.TaskID] = i
			}
		}
	}

	g := depgraph.New()
	for i, t := range tasks {
		if t.TaskID != "" {
			g.AddTask(t.TaskID)
		}

		if t.ClientID != "" && !clientIDs[t.ClientID] {
			issues = append(issues, Issue{
				ErrorType:    ErrUnknownReference,
				Severity:     SeverityCritical,
				RowIndex:     i,
				Column:       column("ClientID"),
				Message:      fmt.Sprintf("Task %s references unknown client %q", t.TaskID, t.ClientID),
				SuggestedFix: fix("Reference an existing ClientID from the clients table"),
				CellValue:    t.ClientID,
			})
		}

		for _, dep := range t.Dependencies {
			if dep == "" {
				continue
			}
			if _, ok := taskRow[dep]; !ok {
				issues = append(issues, Issue{
					ErrorType:    ErrUnknownReference,
					Severity:     SeverityCritical,
					RowIndex:     i,
					Column:       column("Dependencies"),
					Message:      fmt.Sprintf("Task %s depends on unknown task %q", t.TaskID, dep),
					SuggestedFix: fix("Reference an existing TaskID or remove the dependency"),
					CellValue:    dep,
				})
				continue
			}
			// Resolvable edges only; unknown targets are already flagged
			// above and must not distort cycle detection.
			g.AddDependency(t.TaskID, dep)
		}
	}

	for _, cycle := range g.Cycles() {
		row := DatasetScope
		if r, ok := taskRow[cycle[0]]; ok {
			row = r
		}
		chain := strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
		issues = append(issues, Issue{
			ErrorType:    ErrCircularDependency,
			Severity:     SeverityCritical,
			RowIndex:     row,
			Column:       column("Dependencies"),
			Message:      fmt.Sprintf("Circular dependency: %s", chain),
			SuggestedFix: fix("Remove one dependency in the chain to break the cycle"),
		})
	}

	issues = append(issues, skillCoverageIssues(workers, tasks)...)
	return issues
}

// skillCoverageIssues checks that the worker pool can staff every task:
// a required skill held by no worker at all is unstaffable, and a skill
// set covered only across several workers is flagged as needing a split.
func skillCoverageIssues(workers []schema.Worker, tasks []schema.Task) []Issue {
	var issues []Issue

	pool := make(map[string]bool)
	for _, w := range workers {
		for _, s := range w.Skills {
			pool[s] = true
		}
	}

	for i, t := range tasks {
		covered := true
		for _, s := range t.RequiredSkills {
			if pool[s] {
				continue
			}
			covered = false
			issues = append(issues, Issue{
				ErrorType:    ErrUnstaffableSkill,
				Severity:     SeverityCritical,
				RowIndex:     i,
				Column:       column("RequiredSkills"),
				Message:      fmt.Sprintf("No worker has skill %q required by task %s", s, t.TaskID),
				SuggestedFix: fix(fmt.Sprintf("Add a worker with skill %q or drop the requirement", s)),
				CellValue:    s,
			})
		}
		if !covered || len(t.RequiredSkills) < 2 {
			continue
		}

		single := false
		for _, w := range workers {
			hasAll := true
			for _, s := range t.RequiredSkills {
				if !w.HasSkill(s) {
					hasAll = false
					break
				}
			}
			if hasAll {
				single = true
				break
			}
		}
		if !single {
			issues = append(issues, Issue{
				ErrorType:    ErrPartialSkillCoverage,
				Severity:     SeverityWarning,
				RowIndex:     i,
				Column:       column("RequiredSkills"),
				Message:      fmt.Sprintf("No single worker holds all skills for task %s; it would need to be split", t.TaskID),
				SuggestedFix: fix("Split the task or cross-train a worker in the full skill set"),
			})
		}
	}
	return issues
}
