// Package rules models the declarative business rules supplied alongside
// a snapshot: six rule kinds with kind-specific parameter payloads, scope
// resolution (explicit IDs or selector predicates), and loading from
// YAML/JSON rule files.
//
// Rules are authored upstream (visual builder or NL translator). The
// upstream contract guarantees a well-formed kind and parameter shape;
// scope IDs may still be stale and are validated by the engine.
package rules

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Kind tags the rule variant.
type Kind string

// Rule kinds.
const (
	KindCoRun      Kind = "coRun"
	KindExclusion  Kind = "exclusion"
	KindPriority   Kind = "priority"
	KindCapacity   Kind = "capacity"
	KindSkillMatch Kind = "skillMatch"
	KindTiming     Kind = "timing"
)

// Kinds lists all rule kinds in canonical order.
var Kinds = []Kind{KindCoRun, KindExclusion, KindPriority, KindCapacity, KindSkillMatch, KindTiming}

// ValidKind reports whether k is a defined rule kind.
func ValidKind(k Kind) bool {
	for _, known := range Kinds {
		if known == k {
			return true
		}
	}
	return false
}

// Enforcement grades how binding a rule is.
type Enforcement string

// Enforcement levels.
const (
	EnforcementStrict    Enforcement = "strict"
	EnforcementPreferred Enforcement = "preferred"
	EnforcementOptional  Enforcement = "optional"
)

// Stricter reports whether a binds harder than b.
// strict > preferred > optional.
func (a Enforcement) Stricter(b Enforcement) bool {
	return enforcementRank(a) > enforcementRank(b)
}

func enforcementRank(e Enforcement) int {
	switch e {
	case EnforcementStrict:
		return 2
	case EnforcementPreferred:
		return 1
	default:
		return 0
	}
}

// Scope names the entities a rule constrains: explicit task or worker
// IDs, or a selector predicate evaluated against the snapshot's tasks.
type Scope struct {
	Tasks    []string `mapstructure:"tasks" yaml:"tasks,omitempty" json:"tasks,omitempty"`
	Workers  []string `mapstructure:"workers" yaml:"workers,omitempty" json:"workers,omitempty"`
	Selector string   `mapstructure:"selector" yaml:"selector,omitempty" json:"selector,omitempty"`
}

// Empty reports whether the scope names nothing at all.
func (s Scope) Empty() bool {
	return len(s.Tasks) == 0 && len(s.Workers) == 0 && s.Selector == ""
}

// Rule is one declarative constraint. Parameters hold the kind-specific
// payload; decode it with ParamsFor before interpreting.
type Rule struct {
	ID          string         `mapstructure:"id" yaml:"id" json:"id"`
	Kind        Kind           `mapstructure:"kind" yaml:"kind" json:"kind"`
	Scope       Scope          `mapstructure:"scope" yaml:"scope" json:"scope"`
	Enforcement Enforcement    `mapstructure:"enforcement" yaml:"enforcement" json:"enforcement"`
	Parameters  map[string]any `mapstructure:"parameters" yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Active      bool           `mapstructure:"active" yaml:"active" json:"active"`
}

// MinScopeSize returns the minimum scope cardinality the rule kind
// requires: co-run and exclusion constrain pairs, everything else needs
// at least one target.
func MinScopeSize(k Kind) int {
	switch k {
	case KindCoRun, KindExclusion:
		return 2
	default:
		return 1
	}
}

// PriorityParams is the payload of a priority rule.
type PriorityParams struct {
	Level string `mapstructure:"level"`
}

// CapacityParams is the payload of a capacity rule: the maximum number
// of concurrent tasks allowed per scoped worker.
type CapacityParams struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// SkillMatchParams is the payload of a skill-match rule.
type SkillMatchParams struct {
	Skill string `mapstructure:"skill"`
}

// TimingParams is the payload of a timing rule: the phases the scoped
// tasks are allowed to run in.
type TimingParams struct {
	Phases []int `mapstructure:"phases"`
}

// DecodeParams unmarshals the rule's raw parameter map into a typed
// payload struct.
func DecodeParams(r Rule, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(r.Parameters); err != nil {
		return fmt.Errorf("rule %s: invalid %s parameters: %w", r.ID, r.Kind, err)
	}
	return nil
}
