// Package schema defines the canonical entity model for a validation
// snapshot: clients, workers, and tasks, plus the per-entity schema
// descriptors that drive row-level validation.
//
// Records arrive from upstream collaborators (header mapping, CSV decode)
// as normalized maps keyed by canonical column names. This package turns
// them into typed entities and never lets unparsed list text escape past
// the decode boundary.
package schema

// PriorityLevel is the shared priority enum for clients and tasks.
type PriorityLevel string

// Priority levels, lowest to highest.
const (
	PriorityLow      PriorityLevel = "Low"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityHigh     PriorityLevel = "High"
	PriorityCritical PriorityLevel = "Critical"
)

// PriorityLevels lists all valid priority levels in ascending order.
var PriorityLevels = []PriorityLevel{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ValidPriority reports whether s is a defined priority level.
func ValidPriority(s string) bool {
	for _, p := range PriorityLevels {
		if string(p) == s {
			return true
		}
	}
	return false
}

// Client is one row of the clients table.
type Client struct {
	ClientID      string        `mapstructure:"ClientID"`
	Name          string        `mapstructure:"Name"`
	Industry      string        `mapstructure:"Industry"`
	PriorityLevel PriorityLevel `mapstructure:"PriorityLevel"`
	Budget        float64       `mapstructure:"Budget"`
	Contact       string        `mapstructure:"Contact"`
}

// Worker is one row of the workers table.
type Worker struct {
	WorkerID    string   `mapstructure:"WorkerID"`
	Name        string   `mapstructure:"Name"`
	Skills      []string `mapstructure:"Skills"`
	MaxLoad     int      `mapstructure:"MaxLoad"`
	CurrentLoad int      `mapstructure:"CurrentLoad"`
	Department  string   `mapstructure:"Department"`
}

// FreeCapacity returns the worker's remaining task capacity, never negative.
func (w *Worker) FreeCapacity() int {
	free := w.MaxLoad - w.CurrentLoad
	if free < 0 {
		return 0
	}
	return free
}

// HasSkill reports whether the worker holds the given skill.
func (w *Worker) HasSkill(skill string) bool {
	for _, s := range w.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Task is one row of the tasks table.
type Task struct {
	TaskID         string        `mapstructure:"TaskID"`
	ClientID       string        `mapstructure:"ClientID"`
	Name           string        `mapstructure:"Name"`
	Duration       int           `mapstructure:"Duration"`
	Priority       PriorityLevel `mapstructure:"Priority"`
	Phase          int           `mapstructure:"Phase"`
	Dependencies   []string      `mapstructure:"Dependencies"`
	RequiredSkills []string      `mapstructure:"RequiredSkills"`
}

// Entity identifies one of the three snapshot tables.
type Entity string

// Snapshot tables.
const (
	EntityClients Entity = "clients"
	EntityWorkers Entity = "workers"
	EntityTasks   Entity = "tasks"
)

// Entities lists the snapshot tables in canonical order.
var Entities = []Entity{EntityClients, EntityWorkers, EntityTasks}
