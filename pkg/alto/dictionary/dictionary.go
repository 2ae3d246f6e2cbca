// Package dictionary implements the dictionary lookup provider: preloaded
// tables of surface forms with values and categories, matched strictly or by
// substring against element text. Tables load from JSON, YAML or CSV files,
// or from a SQLite store.
package dictionary

import (
	"strings"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/pipeline"
)

// Entry is one dictionary record: a canonical surface form, an optional set
// of variant forms, the value to record on a match (an identifier, a code),
// and the category the entry belongs to.
type Entry struct {
	Key      string   `json:"entry" yaml:"entry"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Category string   `json:"type,omitempty" yaml:"type,omitempty"`
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Options control how a table matches element text.
type Options struct {
	// Strict requires the whole text to equal a surface form (after
	// trimming); otherwise a surface form occurring anywhere matches.
	Strict bool
	// RestrictTo limits matching to entries of one category.
	RestrictTo string
	// CaseInsensitive folds case when comparing.
	CaseInsensitive bool
}

// Table is an in-memory dictionary. It implements pipeline.DictionaryProvider.
type Table struct {
	name    string
	entries []Entry
	opts    Options
}

// NewTable creates an empty table with the given name. The name appears in
// audit trails, so keep it short and stable.
func NewTable(name string) *Table {
	return &Table{name: name}
}

// Name returns the table's audit name.
func (t *Table) Name() string { return t.name }

// Add appends an entry to the table.
func (t *Table) Add(e Entry) {
	t.entries = append(t.entries, e)
}

// Entries returns the table's entries in insertion order.
func (t *Table) Entries() []Entry { return t.entries }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// With returns a view of the table using the given match options. The
// underlying entries are shared.
func (t *Table) With(opts Options) *Table {
	return &Table{name: t.name, entries: t.entries, opts: opts}
}

// Lookup returns every entry whose surface form (canonical or variant)
// matches the text, in entry order. An empty result means no match.
func (t *Table) Lookup(text string) ([]pipeline.DictMatch, error) {
	probe := strings.TrimSpace(text)
	if t.opts.CaseInsensitive {
		probe = strings.ToLower(probe)
	}

	var hits []pipeline.DictMatch
	for _, e := range t.entries {
		if t.opts.RestrictTo != "" && e.Category != t.opts.RestrictTo {
			continue
		}
		if surface, ok := t.matches(probe, e); ok {
			hits = append(hits, pipeline.DictMatch{
				Key:      surface,
				Value:    e.Value,
				Category: e.Category,
			})
		}
	}
	return hits, nil
}

// matches checks the entry's canonical form and variants against the probe,
// returning the surface form that matched.
func (t *Table) matches(probe string, e Entry) (string, bool) {
	for _, surface := range append([]string{e.Key}, e.Variants...) {
		cmp := surface
		if t.opts.CaseInsensitive {
			cmp = strings.ToLower(cmp)
		}
		if t.opts.Strict {
			if probe == cmp {
				return surface, true
			}
			continue
		}
		if strings.Contains(probe, cmp) {
			return surface, true
		}
	}
	return "", false
}
