package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// wireRule is the on-disk shape of a rule. Active defaults to true when
// the file omits it.
type wireRule struct {
	ID          string         `mapstructure:"id"`
	Kind        string         `mapstructure:"kind"`
	Scope       Scope          `mapstructure:"scope"`
	Enforcement string         `mapstructure:"enforcement"`
	Parameters  map[string]any `mapstructure:"parameters"`
	Active      *bool          `mapstructure:"active"`
}

// Load reads an ordered rule sequence from a YAML or JSON file. A rule
// missing its kind tag, or carrying an unknown kind or enforcement, is a
// structural failure and aborts the load.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []map[string]any
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s is not a sequence of rules: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s is not a sequence of rules: %w", path, err)
		}
	}

	return FromRecords(raw)
}

// FromRecords builds the rule sequence from already-decoded rule maps,
// preserving order.
func FromRecords(raw []map[string]any) ([]Rule, error) {
	out := make([]Rule, 0, len(raw))
	for i, m := range raw {
		var w wireRule
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &w,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build decoder: %w", err)
		}
		if err := dec.Decode(m); err != nil {
			return nil, fmt.Errorf("rule %d is malformed: %w", i, err)
		}

		if w.Kind == "" {
			return nil, fmt.Errorf("rule %d (%s) is missing its kind tag", i, w.ID)
		}
		kind := Kind(w.Kind)
		if !ValidKind(kind) {
			return nil, fmt.Errorf("rule %d (%s) has unknown kind %q", i, w.ID, w.Kind)
		}

		enforcement := Enforcement(w.Enforcement)
		if w.Enforcement == "" {
			enforcement = EnforcementStrict
		}
		switch enforcement {
		case EnforcementStrict, EnforcementPreferred, EnforcementOptional:
		default:
			return nil, fmt.Errorf("rule %d (%s) has unknown enforcement %q", i, w.ID, w.Enforcement)
		}

		active := true
		if w.Active != nil {
			active = *w.Active
		}

		id := w.ID
		if id == "" {
			id = fmt.Sprintf("rule_%03d", i+1)
		}

		out = append(out, Rule{
			ID:          id,
			Kind:        kind,
			Scope:       w.Scope,
			Enforcement: enforcement,
			Parameters:  w.Parameters,
			Active:      active,
		})
	}
	return out, nil
}
