// Package parser builds the text-element model from OCR layout files.
// Three formats are supported: ALTO XML (namespace versions 1-4), PAGE XML
// as produced by Transkribus, and hOCR. Parsers only produce seed data; all
// later mutation happens through the pipeline.
package parser

import (
	"crypto/rand"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// Line types determine what constitutes one text element.
const (
	LineTypeLine   = "TextLine"
	LineTypeBlock  = "TextBlock"
	LineTypeRegion = "TextRegion"
)

// Options configure a file parser.
type Options struct {
	// LineType selects element granularity. ALTO and hOCR accept TextLine
	// and TextBlock; PAGE accepts TextLine and TextRegion.
	LineType string
	// Logger receives parse warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// FileParser parses one source file into a model file.
type FileParser interface {
	ParseFile(path string) (*model.File, error)
}

// Directory parses every file in dir with the given ending (e.g. ".xml")
// into a fresh corpus, in lexical filename order.
func Directory(p FileParser, dir, ending string) (*model.Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	corpus := model.NewCorpus()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ending) {
			continue
		}
		f, err := p.ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := corpus.AddFile(f); err != nil {
			return nil, err
		}
	}
	return corpus, nil
}

// SanitizeText removes line breaks, tabs, carriage returns and the BOM, and
// trims surrounding whitespace.
func SanitizeText(s string) string {
	r := strings.NewReplacer("\n", "", "\r", "", "\t", "", "\uFEFF", "")
	return strings.TrimSpace(r.Replace(s))
}

// ids hands out element ids, falling back to ULIDs when the source markup
// carries none.
type ids struct {
	entropy *ulid.MonotonicEntropy
}

func newIDs() *ids {
	return &ids{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ids) id(fromSource string) string {
	if fromSource != "" {
		return fromSource
	}
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
