package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// snapshotExtensions are tried in order when locating a table file.
var snapshotExtensions = []string{".yaml", ".yml", ".json"}

// LoadRecords reads an ordered record array from a YAML or JSON file.
// A file that does not hold a sequence of records is a structural
// failure: no meaningful partial validation is possible.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []map[string]any
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s is not a sequence of records: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s is not a sequence of records: %w", path, err)
		}
	}

	records := make([]Record, len(raw))
	for i, m := range raw {
		records[i] = Record(m)
	}
	return records, nil
}

// FindTableFile locates the file for an entity table inside a snapshot
// directory, trying clients.yaml, clients.yml, clients.json and so on.
// Returns empty string if no file exists.
func FindTableFile(dir string, entity Entity) string {
	for _, ext := range snapshotExtensions {
		candidate := filepath.Join(dir, string(entity)+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadTable loads one entity table from a snapshot directory. A missing
// file yields an empty table, matching the upstream contract where any
// of the three tables may be absent.
func LoadTable(dir string, entity Entity) ([]Record, error) {
	path := FindTableFile(dir, entity)
	if path == "" {
		return nil, nil
	}
	return LoadRecords(path)
}
