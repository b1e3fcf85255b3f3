package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cooksheet/cooksheet/internal/rules"
	"github.com/cooksheet/cooksheet/internal/schema"
)

// unionFind tracks connected components of the must-co-run graph.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	root, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if root == x {
		return x
	}
	r := u.find(root)
	u.parent[x] = r
	return r
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

func (u *unionFind) has(x string) bool {
	_, ok := u.parent[x]
	return ok
}

// ValidateRules checks the rule set's own consistency, independent of
// data correctness: scope references must resolve, scopes must meet
// their kind's minimum cardinality, co-run components must not be torn
// by exclusions, overlapping capacity limits must agree, and priority
// levels must come from the defined domain. Inactive rules are skipped
// entirely; they constrain nothing.
func ValidateRules(ruleSet []rules.Rule, workers []schema.Worker, tasks []schema.Task) []Issue {
	var issues []Issue

	taskIDs := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.TaskID != "" {
			taskIDs[t.TaskID] = true
		}
	}
	workerIDs := make(map[string]bool, len(workers))
	for _, w := range workers {
		if w.WorkerID != "" {
			workerIDs[w.WorkerID] = true
		}
	}

	uf := newUnionFind()
	coRunBy := make(map[string][]string) // task id -> co-run rule ids covering it
	resolved := make(map[string][]string)

	for _, r := range ruleSet {
		if !r.Active {
			continue
		}

		scopeTasks, err := r.Scope.ResolveTasks(r.ID, tasks)
		if err != nil {
			issues = append(issues, Issue{
				ErrorType:    ErrMalformedRuleRef,
				Severity:     SeverityCritical,
				RowIndex:     DatasetScope,
				Message:      fmt.Sprintf("Rule %s has an invalid selector: %v", r.ID, err),
				SuggestedFix: fix("Correct the selector expression"),
				CellValue:    r.Scope.Selector,
			})
			continue
		}
		resolved[r.ID] = scopeTasks

		validTargets := 0
		for _, id := range scopeTasks {
			if !taskIDs[id] {
				issues = append(issues, Issue{
					ErrorType:    ErrMalformedRuleRef,
					Severity:     SeverityCritical,
					RowIndex:     DatasetScope,
					Message:      fmt.Sprintf("Rule %s references unknown task %q", r.ID, id),
					SuggestedFix: fix("Update the rule scope to reference existing tasks"),
					CellValue:    id,
				})
				continue
			}
			validTargets++
		}
		for _, id := range r.Scope.Workers {
			if !workerIDs[id] {
				issues = append(issues, Issue{
					ErrorType:    ErrMalformedRuleRef,
					Severity:     SeverityCritical,
					RowIndex:     DatasetScope,
					Message:      fmt.Sprintf("Rule %s references unknown worker %q", r.ID, id),
					SuggestedFix: fix("Update the rule scope to reference existing workers"),
					CellValue:    id,
				})
				continue
			}
			validTargets++
		}

		if validTargets < rules.MinScopeSize(r.Kind) {
			issues = append(issues, Issue{
				ErrorType:    ErrEmptyRuleScope,
				Severity:     SeverityCritical,
				RowIndex:     DatasetScope,
				Message:      fmt.Sprintf("Rule %s (%s) needs at least %d scope target(s), has %d", r.ID, r.Kind, rules.MinScopeSize(r.Kind), validTargets),
				SuggestedFix: fix("Widen the rule scope or deactivate the rule"),
			})
		}

		switch r.Kind {
		case rules.KindCoRun:
			members := existingOnly(scopeTasks, taskIDs)
			for _, id := range members {
				coRunBy[id] = append(coRunBy[id], r.ID)
			}
			for i := 1; i < len(members); i++ {
				uf.union(members[0], members[i])
			}
		case rules.KindPriority:
			var p rules.PriorityParams
			if err := rules.DecodeParams(r, &p); err != nil || !schema.ValidPriority(p.Level) {
				issues = append(issues, Issue{
					ErrorType:    ErrPriorityOutOfDomain,
					Severity:     SeverityCritical,
					RowIndex:     DatasetScope,
					Message:      fmt.Sprintf("Rule %s sets priority level %q, which is not a defined level", r.ID, p.Level),
					SuggestedFix: fix(fmt.Sprintf("Use one of: %s", strings.Join(priorityLevelNames(), ", "))),
					CellValue:    p.Level,
				})
			}
		}
	}

	issues = append(issues, exclusionConflicts(ruleSet, resolved, taskIDs, uf, coRunBy)...)
	issues = append(issues, capacityConflicts(ruleSet)...)
	return issues
}

// exclusionConflicts flags exclusion rules whose members fall inside the
// same co-run component. Each conflicting pair yields exactly one issue
// naming the exclusion rule and the co-run rule(s) that connect the pair.
func exclusionConflicts(ruleSet []rules.Rule, resolved map[string][]string, taskIDs map[string]bool, uf *unionFind, coRunBy map[string][]string) []Issue {
	var issues []Issue
	for _, r := range ruleSet {
		if !r.Active || r.Kind != rules.KindExclusion {
			continue
		}
		members := existingOnly(resolved[r.ID], taskIDs)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if !uf.has(a) || !uf.has(b) || uf.find(a) != uf.find(b) {
					continue
				}
				linked := uniqueSorted(append(append([]string{}, coRunBy[a]...), coRunBy[b]...))
				issues = append(issues, Issue{
					ErrorType:    ErrConflictingRules,
					Severity:     SeverityCritical,
					RowIndex:     DatasetScope,
					Message:      fmt.Sprintf("Rule %s excludes %s and %s, but rule(s) %s require them to co-run", r.ID, a, b, strings.Join(linked, ", ")),
					SuggestedFix: fix(fmt.Sprintf("Remove rule %s or the conflicting co-run rule(s)", r.ID)),
				})
			}
		}
	}
	return issues
}

// capacityConflicts flags pairs of active capacity rules that share
// scoped workers but disagree on the limit. Two strict rules disagreeing
// is a hard conflict; otherwise the stricter rule prevails and the
// override is surfaced as a warning.
func capacityConflicts(ruleSet []rules.Rule) []Issue {
	type capRule struct {
		rule  rules.Rule
		limit int
	}
	var caps []capRule
	for _, r := range ruleSet {
		if !r.Active || r.Kind != rules.KindCapacity {
			continue
		}
		var p rules.CapacityParams
		if err := rules.DecodeParams(r, &p); err != nil || p.MaxConcurrent <= 0 {
			continue
		}
		caps = append(caps, capRule{rule: r, limit: p.MaxConcurrent})
	}

	var issues []Issue
	for i := 0; i < len(caps); i++ {
		for j := i + 1; j < len(caps); j++ {
			a, b := caps[i], caps[j]
			if a.limit == b.limit || !scopesOverlap(a.rule.Scope.Workers, b.rule.Scope.Workers) {
				continue
			}
			if a.rule.Enforcement == rules.EnforcementStrict && b.rule.Enforcement == rules.EnforcementStrict {
				issues = append(issues, Issue{
					ErrorType:    ErrConflictingRules,
					Severity:     SeverityCritical,
					RowIndex:     DatasetScope,
					Message:      fmt.Sprintf("Rules %s and %s both strictly cap the same workers at different limits (%d vs %d)", a.rule.ID, b.rule.ID, a.limit, b.limit),
					SuggestedFix: fix("Align the limits or narrow the overlapping scopes"),
				})
				continue
			}
			winner := a
			loser := b
			if b.rule.Enforcement.Stricter(a.rule.Enforcement) ||
				(b.rule.Enforcement == a.rule.Enforcement && b.limit < a.limit) {
				winner, loser = b, a
			}
			issues = append(issues, Issue{
				ErrorType:    ErrConflictingRules,
				Severity:     SeverityWarning,
				RowIndex:     DatasetScope,
				Message:      fmt.Sprintf("Rules %s and %s overlap with different limits; %s (limit %d) prevails", a.rule.ID, b.rule.ID, winner.rule.ID, winner.limit),
				SuggestedFix: fix(fmt.Sprintf("Deactivate rule %s or align its limit", loser.rule.ID)),
			})
		}
	}
	return issues
}

func existingOnly(ids []string, known map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			out = append(out, id)
		}
	}
	return out
}

func scopesOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			return true
		}
	}
	return false
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func priorityLevelNames() []string {
	out := make([]string, len(schema.PriorityLevels))
	for i, p := range schema.PriorityLevels {
		out[i] = string(p)
	}
	return out
}
