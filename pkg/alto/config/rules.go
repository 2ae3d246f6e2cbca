package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/dictionary"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/pipeline"
)

// Rules is a declarative pipeline script: an ordered list of chains, each an
// ordered list of steps. Rules files make the usual explore-and-refine loop
// over a corpus repeatable without writing Go.
type Rules struct {
	Chains []RuleChain `yaml:"chains"`
}

// RuleChain is one pipeline chain, optionally scoped to a batch.
type RuleChain struct {
	Batch string `yaml:"batch"`
	Steps []Step `yaml:"steps"`
}

// Step is one pipeline operation. Which fields apply depends on the op:
//
//	find                pattern
//	lookup              dict, strict, restrict_to, case_insensitive
//	tag                 (uses the session's gazetteer)
//	categorize          label
//	categorize_matched
//	mark                name, value
//	remove
//	scrub
//	reset
//	log
type Step struct {
	Op      string `yaml:"op"`
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`

	Dict            string `yaml:"dict"`
	Strict          bool   `yaml:"strict"`
	RestrictTo      string `yaml:"restrict_to"`
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

// LoadRules reads a rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	return &rules, nil
}

// RunRules executes every chain of the rules file against the pipeline, in
// order. A malformed step fails immediately; a failed chain stops the run
// and mutations committed before the failure stand.
func RunRules(rules *Rules, pl *pipeline.Pipeline, dicts map[string]*dictionary.Table, tagger pipeline.EntityTagger) error {
	for i, rc := range rules.Chains {
		chain := pl.Chain()
		if rc.Batch != "" {
			chain = chain.Batch(rc.Batch)
		}
		for j, step := range rc.Steps {
			var err error
			chain, err = applyStep(chain, step, dicts, tagger)
			if err != nil {
				return fmt.Errorf("chain %d step %d: %w", i+1, j+1, err)
			}
		}
		if err := chain.Err(); err != nil {
			return fmt.Errorf("chain %d: %w", i+1, err)
		}
	}
	return nil
}

func applyStep(chain *pipeline.Chain, step Step, dicts map[string]*dictionary.Table, tagger pipeline.EntityTagger) (*pipeline.Chain, error) {
	switch step.Op {
	case "find":
		if step.Pattern == "" {
			return nil, fmt.Errorf("%w: find without pattern", internalerr.ErrInvalidConfig)
		}
		return chain.Find(step.Pattern), nil
	case "lookup":
		table, ok := dicts[step.Dict]
		if !ok {
			return nil, fmt.Errorf("%w: unknown dictionary %q", internalerr.ErrInvalidConfig, step.Dict)
		}
		table = table.With(dictionary.Options{
			Strict:          step.Strict,
			RestrictTo:      step.RestrictTo,
			CaseInsensitive: step.CaseInsensitive,
		})
		return chain.LookupDictionary(table), nil
	case "tag":
		if tagger == nil {
			return nil, fmt.Errorf("%w: tag step without gazetteer", internalerr.ErrInvalidConfig)
		}
		return chain.TagEntities(tagger), nil
	case "categorize":
		if step.Label == "" {
			return nil, fmt.Errorf("%w: categorize without label", internalerr.ErrInvalidConfig)
		}
		return chain.Categorize(step.Label), nil
	case "categorize_matched":
		return chain.CategorizeMatched(), nil
	case "mark":
		if step.Name == "" {
			return nil, fmt.Errorf("%w: mark without name", internalerr.ErrInvalidConfig)
		}
		return chain.Mark(step.Name, step.Value), nil
	case "remove":
		return chain.Remove(), nil
	case "scrub":
		return chain.Scrub(), nil
	case "reset":
		return chain.Reset(), nil
	case "log":
		return chain.LogMatches(), nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", internalerr.ErrInvalidConfig, step.Op)
	}
}
