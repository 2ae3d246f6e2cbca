package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/dictionary"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/ner"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/pipeline"
)

func rulesCorpus(t *testing.T, texts ...string) *model.Corpus {
	t.Helper()
	f := model.NewFile("test.xml")
	for i, txt := range texts {
		f.Elements = append(f.Elements, model.NewElement(fmt.Sprintf("e%d", i+1), txt, model.Position{}))
	}
	c := model.NewCorpus()
	if err := c.AddFile(f); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `chains:
  - batch: board
    steps:
      - op: find
        pattern: '^Acme'
      - op: categorize
        label: company
  - steps:
      - op: lookup
        dict: cities
        strict: true
      - op: categorize_matched
`)

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules.Chains) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(rules.Chains))
	}
	if rules.Chains[0].Batch != "board" {
		t.Errorf("unexpected batch %q", rules.Chains[0].Batch)
	}
	if step := rules.Chains[1].Steps[0]; step.Op != "lookup" || step.Dict != "cities" || !step.Strict {
		t.Errorf("unexpected step %+v", step)
	}
}

func TestRunRulesMatchesHandWrittenChain(t *testing.T) {
	texts := []string{"Acme & Cie.", "Berlin", "unrelated"}

	// Declarative run.
	declared := rulesCorpus(t, texts...)
	cities := dictionary.NewTable("cities")
	cities.Add(dictionary.Entry{Key: "Berlin", Value: "DE", Category: "location"})
	rules := &Rules{Chains: []RuleChain{
		{Steps: []Step{
			{Op: "find", Pattern: `& Cie\.`},
			{Op: "categorize", Label: "company"},
		}},
		{Steps: []Step{
			{Op: "lookup", Dict: "cities", Strict: true},
			{Op: "categorize_matched"},
		}},
	}}
	err := RunRules(rules, pipeline.New(declared), map[string]*dictionary.Table{"cities": cities}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Equivalent hand-written run.
	manual := rulesCorpus(t, texts...)
	pl := pipeline.New(manual)
	pl.Chain().Find(`& Cie\.`).Categorize("company")
	pl.Chain().LookupDictionary(cities.With(dictionary.Options{Strict: true})).CategorizeMatched()

	want := manual.AllElements()
	got := declared.AllElements()
	for i := range want {
		if got[i].Category() != want[i].Category() {
			t.Errorf("element %d: category %q, want %q", i, got[i].Category(), want[i].Category())
		}
		if got[i].CategoryValue() != want[i].CategoryValue() {
			t.Errorf("element %d: value %q, want %q", i, got[i].CategoryValue(), want[i].CategoryValue())
		}
	}
	if got[0].Category() != "company" || got[1].Category() != "location" {
		t.Errorf("unexpected categories %q, %q", got[0].Category(), got[1].Category())
	}
}

func TestRunRulesTagStep(t *testing.T) {
	c := rulesCorpus(t, "Sitz in Berlin")
	g := ner.New("gaz")
	g.AddEntity("LOC", "Berlin")

	rules := &Rules{Chains: []RuleChain{{Steps: []Step{
		{Op: "tag"},
		{Op: "categorize_matched"},
	}}}}
	if err := RunRules(rules, pipeline.New(c), nil, g); err != nil {
		t.Fatal(err)
	}
	if c.AllElements()[0].Category() != "LOC" {
		t.Errorf("unexpected category %q", c.AllElements()[0].Category())
	}
}

func TestRunRulesBatchScope(t *testing.T) {
	c := model.NewCorpus()
	board := model.NewFile("board.xml")
	board.Batch = "board"
	board.Elements = append(board.Elements, model.NewElement("b1", "Acme", model.Position{}))
	other := model.NewFile("other.xml")
	other.Elements = append(other.Elements, model.NewElement("o1", "Acme", model.Position{}))
	if err := c.AddFile(board); err != nil {
		t.Fatal(err)
	}
	if err := c.AddFile(other); err != nil {
		t.Fatal(err)
	}

	rules := &Rules{Chains: []RuleChain{{
		Batch: "board",
		Steps: []Step{{Op: "find", Pattern: "Acme"}, {Op: "categorize", Label: "hit"}},
	}}}
	if err := RunRules(rules, pipeline.New(c), nil, nil); err != nil {
		t.Fatal(err)
	}

	if board.Elements[0].Category() != "hit" {
		t.Error("batch file must be categorized")
	}
	if other.Elements[0].Category() != "" {
		t.Error("files outside the batch must be untouched")
	}
}

func TestRunRulesValidation(t *testing.T) {
	cases := []struct {
		name string
		step Step
	}{
		{"unknown op", Step{Op: "frobnicate"}},
		{"find without pattern", Step{Op: "find"}},
		{"categorize without label", Step{Op: "categorize"}},
		{"mark without name", Step{Op: "mark"}},
		{"unknown dictionary", Step{Op: "lookup", Dict: "nope"}},
		{"tag without gazetteer", Step{Op: "tag"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := rulesCorpus(t, "text")
			rules := &Rules{Chains: []RuleChain{{Steps: []Step{tc.step}}}}
			err := RunRules(rules, pipeline.New(c), nil, nil)
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRunRulesReportsChainErrors(t *testing.T) {
	c := rulesCorpus(t, "text")
	rules := &Rules{Chains: []RuleChain{{Steps: []Step{{Op: "find", Pattern: "(bad"}}}}}

	err := RunRules(rules, pipeline.New(c), nil, nil)
	var perr *internalerr.PatternError
	if !errors.As(err, &perr) {
		t.Errorf("expected the pattern error to surface, got %v", err)
	}
}
