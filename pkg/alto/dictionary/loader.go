package dictionary

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadJSON loads a table from a JSON file holding an array of entries:
//
//	[{"entry": "Berlin", "value": "DE", "type": "location",
//	  "variants": ["Berlin a.d. Spree"]}]
//
// The table is named after the file, without directory and extension.
func LoadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}

	t := NewTable(tableName(path))
	t.entries = entries
	return t, nil
}

// LoadYAML loads a table from a YAML file.
//
// Expected format:
//
//	entries:
//	  - entry: Berlin
//	    value: DE
//	    type: location
//	    variants: [Berlin a.d. Spree]
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}

	t := NewTable(tableName(path))
	t.entries = doc.Entries
	return t, nil
}

// FromCSV builds a table from a two-column CSV file (surface form, value).
// A header row whose first field is "entry" is skipped. Every entry gets the
// given category. This is the path for turning raw curated lists into
// dictionaries usable by the pipeline.
func FromCSV(path, category string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dictionary csv %s: %w", path, err)
	}

	t := NewTable(tableName(path))
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "entry") {
			continue
		}
		e := Entry{Key: strings.TrimSpace(row[0]), Category: category}
		if len(row) > 1 {
			e.Value = strings.TrimSpace(row[1])
		}
		t.Add(e)
	}
	return t, nil
}

// WriteJSON saves the table's entries as a JSON dictionary file.
func WriteJSON(t *Table, path string) error {
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
