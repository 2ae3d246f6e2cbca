// Package ner implements the named-entity provider consumed by the pipeline.
// The built-in implementation is a gazetteer: configured entity types with
// surface-form lists, scanned case-insensitively for spans. A real NLP
// engine can replace it by implementing pipeline.EntityTagger.
package ner

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/pipeline"
)

// Gazetteer tags text by scanning for known surface forms of named entities.
type Gazetteer struct {
	name    string
	types   []string            // entity types in registration order
	surface map[string][]string // type -> surface forms
}

// New creates an empty gazetteer with the given audit name.
func New(name string) *Gazetteer {
	return &Gazetteer{name: name, surface: make(map[string][]string)}
}

// Name returns the gazetteer's audit name.
func (g *Gazetteer) Name() string { return g.name }

// AddEntity registers surface forms for an entity type (e.g. "ORG", "LOC").
func (g *Gazetteer) AddEntity(entityType string, forms ...string) {
	if _, ok := g.surface[entityType]; !ok {
		g.types = append(g.types, entityType)
	}
	g.surface[entityType] = append(g.surface[entityType], forms...)
}

// Tag returns every entity span found in the text, ordered by start offset.
// An empty result means no entities were found.
func (g *Gazetteer) Tag(text string) ([]pipeline.EntityTag, error) {
	lower := strings.ToLower(text)

	var tags []pipeline.EntityTag
	for _, entityType := range g.types {
		for _, form := range g.surface[entityType] {
			needle := strings.ToLower(form)
			if needle == "" {
				continue
			}
			for from := 0; ; {
				idx := strings.Index(lower[from:], needle)
				if idx < 0 {
					break
				}
				start := from + idx
				end := start + len(needle)
				tags = append(tags, pipeline.EntityTag{
					Start: start,
					End:   end,
					Type:  entityType,
					Text:  text[start:end],
				})
				from = end
			}
		}
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Start < tags[j].Start })
	return tags, nil
}

// LoadYAML loads a gazetteer from a YAML file.
//
// Expected format:
//
//	name: companies
//	entities:
//	  ORG: ["Acme Corp", "Acme & Cie."]
//	  LOC: [Berlin, Basel]
func LoadYAML(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Name     string              `yaml:"name"`
		Entities map[string][]string `yaml:"entities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load gazetteer %s: %w", path, err)
	}

	if doc.Name == "" {
		doc.Name = "gazetteer"
	}
	g := New(doc.Name)

	// Deterministic type order regardless of map iteration.
	types := make([]string, 0, len(doc.Entities))
	for t := range doc.Entities {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		g.AddEntity(t, doc.Entities[t]...)
	}
	return g, nil
}
