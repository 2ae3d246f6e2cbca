package pipeline

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// DictMatch is one dictionary hit: the surface form that matched, the value
// stored for it, and the entry's category (used as a provisional hint).
type DictMatch struct {
	Key      string
	Value    string
	Category string
}

// DictionaryProvider answers dictionary lookups for a text string.
// An empty result means no match; it is never an error.
type DictionaryProvider interface {
	Name() string
	Lookup(text string) ([]DictMatch, error)
}

// EntityTag is one recognized entity span within a text string.
type EntityTag struct {
	Start int
	End   int
	Type  string
	Text  string
}

// EntityTagger answers named-entity tagging for a text string.
// An empty result means no entities were found; it is never an error.
type EntityTagger interface {
	Name() string
	Tag(text string) ([]EntityTag, error)
}

// MatchResult is what a matcher records on a matched element.
type MatchResult struct {
	// Value is recorded as the element's match value: the first capture
	// group of a pattern, or the first dictionary value.
	Value string
	// Hint is the provisional category candidate, committed only by a
	// categorize step.
	Hint string
	// Matched is the exact substring that matched, used by scrub steps.
	Matched string
}

// Matcher is the capability interface behind every selecting step. The chain
// handles candidate enumeration, audit records and error policy; a matcher
// only decides whether a single element matches. New matching strategies plug
// in without touching the engine.
type Matcher interface {
	// ID returns the audit identifier recorded on matched elements.
	ID() string
	// Match evaluates one candidate element.
	Match(el *model.Element) (MatchResult, bool, error)
}

// regexMatcher matches an element's working text against a compiled pattern.
type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func newRegexMatcher(pattern string) (*regexMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &internalerr.PatternError{Pattern: pattern, Err: err}
	}
	return &regexMatcher{pattern: pattern, re: re}, nil
}

func (m *regexMatcher) ID() string { return fmt.Sprintf("find(%s)", m.pattern) }

func (m *regexMatcher) Match(el *model.Element) (MatchResult, bool, error) {
	groups := m.re.FindStringSubmatch(el.WorkingText())
	if groups == nil {
		return MatchResult{}, false, nil
	}
	res := MatchResult{Matched: groups[0]}
	if len(groups) > 1 {
		res.Value = groups[1]
	}
	return res, true, nil
}

// dictMatcher selects elements with at least one dictionary hit.
type dictMatcher struct {
	provider DictionaryProvider
}

func (m *dictMatcher) ID() string { return fmt.Sprintf("dict(%s)", m.provider.Name()) }

func (m *dictMatcher) Match(el *model.Element) (MatchResult, bool, error) {
	hits, err := m.provider.Lookup(el.WorkingText())
	if err != nil {
		if recoverable(err) {
			return MatchResult{}, false, nil
		}
		return MatchResult{}, false, err
	}
	if len(hits) == 0 {
		return MatchResult{}, false, nil
	}
	first := hits[0]
	return MatchResult{Value: first.Value, Hint: first.Category, Matched: first.Key}, true, nil
}

// entityMatcher selects elements with at least one recognized entity.
type entityMatcher struct {
	tagger EntityTagger
}

func (m *entityMatcher) ID() string { return fmt.Sprintf("ner(%s)", m.tagger.Name()) }

func (m *entityMatcher) Match(el *model.Element) (MatchResult, bool, error) {
	tags, err := m.tagger.Tag(el.WorkingText())
	if err != nil {
		if recoverable(err) {
			return MatchResult{}, false, nil
		}
		return MatchResult{}, false, err
	}
	if len(tags) == 0 {
		return MatchResult{}, false, nil
	}
	first := tags[0]
	return MatchResult{Value: first.Text, Hint: first.Type, Matched: first.Text}, true, nil
}

// recoverable reports whether a provider failure should degrade to
// "no match" for the element being evaluated.
func recoverable(err error) bool {
	var perr *internalerr.ProviderError
	return errors.As(err, &perr) && perr.Recoverable
}
