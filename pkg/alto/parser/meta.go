package parser

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// AddMeta attaches a static key/value pair to every file in the corpus.
func AddMeta(c *model.Corpus, key, value string) {
	for _, f := range c.Files() {
		f.AddMeta(key, value)
	}
}

// ExtractMetaFromFilenames searches every filename for the pattern and, on a
// match, stores the first capture group under the given parameter name.
func ExtractMetaFromFilenames(c *model.Corpus, name, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &internalerr.PatternError{Pattern: pattern, Err: err}
	}
	for _, f := range c.Files() {
		m := re.FindStringSubmatch(filepath.Base(f.Path))
		if len(m) > 1 {
			f.AddMeta(name, m[1])
		}
	}
	return nil
}

// ApplyFilenameStructure matches every filename against a pattern whose
// capture groups correspond one-to-one to valueNames, and stores each group
// under its name. Files that do not match are logged and skipped.
func ApplyFilenameStructure(c *model.Corpus, pattern string, valueNames []string, log *slog.Logger) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &internalerr.PatternError{Pattern: pattern, Err: err}
	}
	if log == nil {
		log = slog.Default()
	}
	for _, f := range c.Files() {
		m := re.FindStringSubmatch(filepath.Base(f.Path))
		if m == nil || len(m)-1 != len(valueNames) {
			log.Warn("file name structure does not match", "file", f.Path)
			continue
		}
		for i, name := range valueNames {
			f.AddMeta(name, m[i+1])
		}
	}
	return nil
}

// BatchCondition matches a file metadata value. Values is a comma-separated
// list of accepted values; a token of the form "a-b" with numeric bounds
// accepts the whole range.
type BatchCondition struct {
	Key    string
	Values string
}

// BatchRule assigns a batch name to every file whose metadata satisfies all
// conditions.
type BatchRule struct {
	Name       string
	Conditions []BatchCondition
}

// AssignBatches stamps each file with the first rule it satisfies. Files
// matching no rule keep an empty batch and are only reachable by unscoped
// chains.
func AssignBatches(c *model.Corpus, rules []BatchRule) error {
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("%w: batch rule without name", internalerr.ErrInvalidConfig)
		}
	}
	for _, f := range c.Files() {
		for _, r := range rules {
			if fileMatches(f, r.Conditions) {
				f.Batch = r.Name
				break
			}
		}
	}
	return nil
}

func fileMatches(f *model.File, conds []BatchCondition) bool {
	if len(conds) == 0 {
		return false
	}
	for _, cond := range conds {
		if !valueAccepted(f.Meta[cond.Key], cond.Values) {
			return false
		}
	}
	return true
}

// valueAccepted checks a metadata value against an accepted-values spec.
func valueAccepted(value, spec string) bool {
	if value == "" {
		return false
	}
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == value {
			return true
		}
		if lo, hi, ok := numericRange(token); ok {
			if v, err := strconv.Atoi(value); err == nil && v >= lo && v <= hi {
				return true
			}
		}
	}
	return false
}

func numericRange(token string) (lo, hi int, ok bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
