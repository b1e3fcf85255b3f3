// Package depgraph provides the directed dependency graph over task
// identifiers. It supports distinct-cycle detection and topological
// ordering; both are deterministic for a given set of edges.
package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is a directed graph where an edge task -> dep means the task
// depends on dep.
type Graph struct {
	nodes map[string]bool
	deps  map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		deps:  make(map[string][]string),
	}
}

// AddTask adds a node to the graph.
func (g *Graph) AddTask(id string) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.deps[id] = nil
	}
}

// AddDependency records that task depends on dep. Both endpoints are
// added if missing; duplicate edges are ignored. Self-edges are legal
// here and surface as one-node cycles.
func (g *Graph) AddDependency(task, dep string) {
	g.AddTask(task)
	g.AddTask(dep)
	for _, d := range g.deps[task] {
		if d == dep {
			return
		}
	}
	g.deps[task] = append(g.deps[task], dep)
}

// HasTask reports whether the node exists.
func (g *Graph) HasTask(id string) bool {
	return g.nodes[id]
}

// Dependencies returns the direct dependencies of a task.
func (g *Graph) Dependencies(id string) []string {
	return g.deps[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// DFS colors.
const (
	white = iota // unvisited
	gray         // in progress
	black        // done
)

// Cycles returns every distinct dependency cycle exactly once. Each
// cycle lists its members in traversal order starting from the
// lexicographically smallest member. The result is sorted for
// deterministic reporting.
func (g *Graph) Cycles() [][]string {
	color := make(map[string]int, len(g.nodes))
	var stack []string
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		for _, dep := range g.sortedDeps(id) {
			switch color[dep] {
			case gray:
				// Back edge: the cycle is the stack suffix from dep.
				start := len(stack) - 1
				for start >= 0 && stack[start] != dep {
					start--
				}
				cycle := normalizeCycle(stack[start:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case white:
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range g.sortedNodes() {
		if color[id] == white {
			visit(id)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	return cycles
}

// TopologicalOrder returns the tasks with every dependency ordered
// before its dependents. Returns an error naming the first cycle if the
// graph is not acyclic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if cycles := g.Cycles(); len(cycles) > 0 {
		return nil, fmt.Errorf("dependency cycle: %s", strings.Join(cycles[0], " -> "))
	}

	visited := make(map[string]bool, len(g.nodes))
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.sortedDeps(id) {
			visit(dep)
		}
		order = append(order, id)
	}

	for _, id := range g.sortedNodes() {
		visit(id)
	}
	return order, nil
}

func (g *Graph) sortedNodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Graph) sortedDeps(id string) []string {
	deps := append([]string(nil), g.deps[id]...)
	sort.Strings(deps)
	return deps
}

// normalizeCycle rotates the cycle so its smallest member comes first,
// giving a canonical form for deduplication.
func normalizeCycle(cycle []string) []string {
	if len(cycle) == 0 {
		return nil
	}
	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
