// Package pipeline implements the pattern-matching pipeline over a parsed
// corpus: a fluent, chainable interface that narrows a rolling selection of
// text elements via regex, dictionary and entity-tagging steps, and commits
// categories, marks and removals onto the shared model.
package pipeline

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// Pipeline is the entry point for running chains against one corpus. The
// corpus is exclusively owned by the pipeline for the session: chains run
// one after another, and later chains observe all prior mutations.
type Pipeline struct {
	corpus  *model.Corpus
	log     *slog.Logger
	entropy *ulid.MonotonicEntropy
}

// New creates a pipeline over the given corpus.
func New(corpus *model.Corpus) *Pipeline {
	return &Pipeline{
		corpus:  corpus,
		log:     slog.Default(),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// SetLogger assigns the logger used by LogMatches and warnings.
func (p *Pipeline) SetLogger(l *slog.Logger) {
	if l != nil {
		p.log = l
	}
}

// Corpus returns the shared corpus the pipeline mutates.
func (p *Pipeline) Corpus() *model.Corpus { return p.corpus }

// Chain starts a fresh chain whose implicit candidate pool is the full
// non-removed corpus.
func (p *Pipeline) Chain() *Chain {
	return &Chain{
		pipeline: p,
		runID:    ulid.MustNew(ulid.Now(), p.entropy).String(),
	}
}

// Chain is one pass over the corpus: a transient selection produced by the
// last selecting step, consumed by the next step. Chains carry a sticky
// error: once a step fails, later steps do nothing and Err returns the
// failure, so no element is mutated by a failed call or anything after it.
type Chain struct {
	pipeline  *Pipeline
	runID     string
	batch     string
	seeded    bool
	selection []*model.Element
	matched   map[*model.Element]string
	lastFind  string
	err       error
}

// RunID returns the chain's unique run identifier.
func (c *Chain) RunID() string { return c.runID }

// Err returns the first error a step produced, or nil.
func (c *Chain) Err() error { return c.err }

// Selection returns a copy of the current selection.
func (c *Chain) Selection() []*model.Element {
	out := make([]*model.Element, len(c.selection))
	copy(out, c.selection)
	return out
}

// Size returns the number of elements in the current selection.
func (c *Chain) Size() int { return len(c.selection) }

// Batch restricts the chain's candidate pool to files assigned to the named
// batch. It only affects candidate enumeration, not an existing selection.
func (c *Chain) Batch(name string) *Chain {
	c.batch = name
	return c
}

// All lifts a batch restriction.
func (c *Chain) All() *Chain {
	c.batch = ""
	return c
}

// Reset discards the current selection so the next selecting step draws from
// the full non-removed corpus again. A sticky error is kept; start a new
// chain via Pipeline.Chain to clear it.
func (c *Chain) Reset() *Chain {
	c.seeded = false
	c.selection = nil
	c.matched = nil
	c.lastFind = ""
	return c
}

// candidates returns the pool the next selecting step evaluates: the current
// selection if one exists, otherwise every non-removed element (within the
// batch scope, if set). Removed elements are skipped here, at enumeration,
// and are never re-evaluated.
func (c *Chain) candidates() []*model.Element {
	var pool []*model.Element
	if c.seeded {
		pool = c.selection
	} else {
		pool = c.pipeline.corpus.Elements()
	}

	out := make([]*model.Element, 0, len(pool))
	for _, el := range pool {
		if el.Removed() {
			continue
		}
		if c.batch != "" && !c.inBatch(el) {
			continue
		}
		out = append(out, el)
	}
	return out
}

func (c *Chain) inBatch(el *model.Element) bool {
	f, ok := c.pipeline.corpus.File(el.SourceFile)
	return ok && f.Batch == c.batch
}

// apply runs a matcher over the candidate pool and installs the matches as
// the new selection. On a matcher error the chain aborts: the selection is
// left untouched and the error sticks.
func (c *Chain) apply(m Matcher) *Chain {
	if c.err != nil {
		return c
	}

	var next []*model.Element
	matched := make(map[*model.Element]string)
	for _, el := range c.candidates() {
		res, ok, err := m.Match(el)
		if err != nil {
			c.err = fmt.Errorf("%s: %w", m.ID(), err)
			return c
		}
		if !ok {
			continue
		}
		el.AppendMatchedBy(m.ID())
		el.SetMatchValue(res.Value)
		if res.Hint != "" {
			el.SetHint(res.Hint)
		}
		matched[el] = res.Matched
		next = append(next, el)
	}

	c.seeded = true
	c.selection = next
	c.matched = matched
	return c
}

// Find evaluates a regular expression against each candidate's working text.
// Matching elements form the new selection; the first capture group, when
// present, is recorded as the element's match value. A pattern that matches
// nothing yields an empty selection, not an error. A malformed pattern fails
// the call with a PatternError and mutates nothing.
func (c *Chain) Find(pattern string) *Chain {
	if c.err != nil {
		return c
	}
	m, err := newRegexMatcher(pattern)
	if err != nil {
		c.err = err
		return c
	}
	c.lastFind = pattern
	return c.apply(m)
}

// LookupDictionary queries the dictionary provider with each candidate's
// working text. Elements with at least one hit form the new selection; the
// first hit's value and category are recorded.
func (c *Chain) LookupDictionary(p DictionaryProvider) *Chain {
	if c.err != nil {
		return c
	}
	c.lastFind = ""
	return c.apply(&dictMatcher{provider: p})
}

// TagEntities queries the NER provider with each candidate's working text.
// Elements with at least one entity tag form the new selection; the first
// tag's entity type is recorded as a provisional category candidate.
func (c *Chain) TagEntities(t EntityTagger) *Chain {
	if c.err != nil {
		return c
	}
	c.lastFind = ""
	return c.apply(&entityMatcher{tagger: t})
}

// Categorize commits the label onto every element in the current selection,
// together with the element's recorded match value. The selection passes
// through unchanged. Categorizing an empty selection is a no-op.
func (c *Chain) Categorize(label string) *Chain {
	if c.err != nil {
		return c
	}
	op := fmt.Sprintf("categorize(%s)", label)
	for _, el := range c.selection {
		el.SetCategory(label, el.MatchValue())
		el.AppendMatchedBy(op)
	}
	return c
}

// CategorizeMatched commits each element's own provisional category candidate
// (a dictionary entry type or an entity type). Elements without a candidate
// are left unchanged.
func (c *Chain) CategorizeMatched() *Chain {
	if c.err != nil {
		return c
	}
	for _, el := range c.selection {
		hint := el.Hint()
		if hint == "" {
			continue
		}
		el.SetCategory(hint, el.MatchValue())
		el.AppendMatchedBy(fmt.Sprintf("categorize(%s)", hint))
	}
	return c
}

// Mark attaches a named parser datum to every element in the selection.
func (c *Chain) Mark(name, value string) *Chain {
	if c.err != nil {
		return c
	}
	op := fmt.Sprintf("mark(%s)", name)
	for _, el := range c.selection {
		el.Mark(name, value)
		el.AppendMatchedBy(op)
	}
	return c
}

// Remove soft-deletes every element in the current selection. Removed
// elements are permanently excluded from later candidate pools and from
// export, but stay in the model with their audit trail. Removing an empty
// selection is a no-op, and removing twice is the same as removing once.
func (c *Chain) Remove() *Chain {
	if c.err != nil {
		return c
	}
	for _, el := range c.selection {
		el.AppendMatchedBy("remove()")
		el.Remove()
	}
	return c
}

// Scrub deletes the matched substring from the working text of every element
// in the selection. After a find the full pattern is re-applied, so every
// occurrence is stripped; after a dictionary or entity step the recorded
// match is stripped once. The parsed Text is never touched.
func (c *Chain) Scrub() *Chain {
	if c.err != nil {
		return c
	}
	if c.lastFind != "" {
		m, err := newRegexMatcher(c.lastFind)
		if err != nil {
			c.err = err
			return c
		}
		for _, el := range c.selection {
			el.SetWorkingText(m.re.ReplaceAllString(el.WorkingText(), ""))
			el.AppendMatchedBy("scrub()")
		}
		return c
	}
	for _, el := range c.selection {
		if matched := c.matched[el]; matched != "" {
			el.SetWorkingText(strings.Replace(el.WorkingText(), matched, "", 1))
		}
		el.AppendMatchedBy("scrub()")
	}
	return c
}

// LogMatches logs every element in the current selection.
func (c *Chain) LogMatches() *Chain {
	if c.err != nil {
		return c
	}
	for _, el := range c.selection {
		c.pipeline.log.Info("match",
			"run", c.runID,
			"element", el.ID,
			"file", el.SourceFile,
			"text", el.WorkingText())
	}
	return c
}
