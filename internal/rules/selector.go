package rules

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/cooksheet/cooksheet/internal/schema"
)

// taskToStarlark exposes a task as the `task` global for selector
// evaluation. Only descriptive fields are exposed, never snapshot
// internals.
func taskToStarlark(t schema.Task) starlark.Value {
	skills := make([]starlark.Value, len(t.RequiredSkills))
	for i, s := range t.RequiredSkills {
		skills[i] = starlark.String(s)
	}
	deps := make([]starlark.Value, len(t.Dependencies))
	for i, d := range t.Dependencies {
		deps[i] = starlark.String(d)
	}
	return starlarkstruct.FromStringDict(starlark.String("task"), starlark.StringDict{
		"id":              starlark.String(t.TaskID),
		"name":            starlark.String(t.Name),
		"client_id":       starlark.String(t.ClientID),
		"duration":        starlark.MakeInt(t.Duration),
		"priority":        starlark.String(string(t.Priority)),
		"phase":           starlark.MakeInt(t.Phase),
		"required_skills": starlark.NewList(skills),
		"dependencies":    starlark.NewList(deps),
	})
}

// ResolveTasks returns the task IDs in the rule's scope. Explicit IDs
// come first in authored order; a selector predicate is then evaluated
// once per task in snapshot order, so resolution is deterministic for a
// given snapshot. A selector that fails to evaluate poisons the whole
// scope.
func (s Scope) ResolveTasks(ruleID string, tasks []schema.Task) ([]string, error) {
	ids := append([]string(nil), s.Tasks...)
	if s.Selector == "" {
		return ids, nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}

	thread := &starlark.Thread{
		Name: "selector:" + ruleID,
		Print: func(_ *starlark.Thread, _ string) {
			// Selectors are pure predicates; swallow print output.
		},
	}

	for _, t := range tasks {
		globals := starlark.StringDict{"task": taskToStarlark(t)}
		v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "selector", s.Selector, globals)
		if err != nil {
			return nil, fmt.Errorf("rule %s: selector failed: %w", ruleID, err)
		}
		if bool(v.Truth()) && !seen[t.TaskID] {
			seen[t.TaskID] = true
			ids = append(ids, t.TaskID)
		}
	}
	return ids, nil
}
