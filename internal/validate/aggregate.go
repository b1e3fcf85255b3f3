package validate

import (
	"fmt"
	"sort"

	"github.com/cooksheet/cooksheet/internal/rules"
	"github.com/cooksheet/cooksheet/internal/schema"
)

// workerCap is the capacity limit a rule imposes on one worker.
type workerCap struct {
	ruleID string
	limit  int
	strict bool
}

// ValidateAggregate checks resource feasibility across the whole
// snapshot: worker load against declared and rule-imposed limits, and
// per-phase skill demand against the pool's effective free capacity.
// Capacity rules tighten supply only when strict or preferred; optional
// rules are advisory and change nothing here.
func ValidateAggregate(workers []schema.Worker, tasks []schema.Task, ruleSet []rules.Rule) []Issue {
	var issues []Issue

	caps := capacityLimits(ruleSet)
	free := make([]int, len(workers))

	for i, w := range workers {
		if w.CurrentLoad > w.MaxLoad {
			issues = append(issues, Issue{
				ErrorType:    ErrCapacityExceeded,
				Severity:     SeverityCritical,
				RowIndex:     i,
				Column:       column("CurrentLoad"),
				Message:      fmt.Sprintf("Worker %s carries %d tasks but MaxLoad is %d", w.WorkerID, w.CurrentLoad, w.MaxLoad),
				SuggestedFix: fix("Reassign tasks until CurrentLoad fits within MaxLoad"),
				CellValue:    w.CurrentLoad,
			})
		}

		effective := w.MaxLoad
		for _, c := range caps[w.WorkerID] {
			if c.limit < effective {
				effective = c.limit
			}
			if w.CurrentLoad > c.limit {
				sev := SeverityWarning
				if c.strict {
					sev = SeverityCritical
				}
				issues = append(issues, Issue{
					ErrorType:    ErrCapacityExceeded,
					Severity:     sev,
					RowIndex:     i,
					Column:       column("CurrentLoad"),
					Message:      fmt.Sprintf("Worker %s carries %d tasks but rule %s caps concurrency at %d", w.WorkerID, w.CurrentLoad, c.ruleID, c.limit),
					SuggestedFix: fix(fmt.Sprintf("Reduce %s's load to at most %d or relax rule %s", w.WorkerID, c.limit, c.ruleID)),
					CellValue:    w.CurrentLoad,
				})
			}
		}
		free[i] = effective - w.CurrentLoad
		if free[i] < 0 {
			free[i] = 0
		}
	}

	issues = append(issues, phaseSaturationIssues(workers, free, tasks)...)
	return issues
}

// capacityLimits folds the binding capacity rules into per-worker limits.
// Rules with unusable parameters are skipped here; the rule-set validator
// reports them.
func capacityLimits(ruleSet []rules.Rule) map[string][]workerCap {
	caps := make(map[string][]workerCap)
	for _, r := range ruleSet {
		if !r.Active || r.Kind != rules.KindCapacity || r.Enforcement == rules.EnforcementOptional {
			continue
		}
		var p rules.CapacityParams
		if err := rules.DecodeParams(r, &p); err != nil || p.MaxConcurrent <= 0 {
			continue
		}
		for _, id := range r.Scope.Workers {
			caps[id] = append(caps[id], workerCap{
				ruleID: r.ID,
				limit:  p.MaxConcurrent,
				strict: r.Enforcement == rules.EnforcementStrict,
			})
		}
	}
	return caps
}

// phaseSaturationIssues compares per-phase skill demand with the pool's
// effective free capacity. free is the rule-adjusted free slot count per
// worker, aligned with workers.
func phaseSaturationIssues(workers []schema.Worker, free []int, tasks []schema.Task) []Issue {
	demand := make(map[int]map[string]int)
	for _, t := range tasks {
		if t.Phase < 1 {
			continue
		}
		if demand[t.Phase] == nil {
			demand[t.Phase] = make(map[string]int)
		}
		for _, s := range t.RequiredSkills {
			demand[t.Phase][s]++
		}
	}

	supply := make(map[string]int)
	for i, w := range workers {
		for _, s := range w.Skills {
			supply[s] += free[i]
		}
	}

	phases := make([]int, 0, len(demand))
	for p := range demand {
		phases = append(phases, p)
	}
	sort.Ints(phases)

	var issues []Issue
	for _, p := range phases {
		skills := make([]string, 0, len(demand[p]))
		for s := range demand[p] {
			skills = append(skills, s)
		}
		sort.Strings(skills)

		for _, s := range skills {
			need := demand[p][s]
			have := supply[s]
			if need <= have {
				continue
			}
			issues = append(issues, Issue{
				ErrorType:    ErrPhaseSaturation,
				Severity:     SeverityWarning,
				RowIndex:     DatasetScope,
				Message:      fmt.Sprintf("Phase %d: demand for skill %q is %d but available capacity is %d", p, s, need, have),
				SuggestedFix: fix(fmt.Sprintf("Spread %q tasks across phases or free up capacity", s)),
			})
		}
	}
	return issues
}
