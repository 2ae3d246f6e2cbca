// Package export serializes a processed corpus to tabular output: CSV with a
// configurable delimiter, or JSON. The JSON form can be re-imported, which
// keeps processed corpora inspectable across sessions.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// Options select the exported columns. The zero value exports id and text
// with a tab delimiter.
type Options struct {
	// Delimiter between CSV fields; defaults to '\t'.
	Delimiter rune
	// IncludeManipulated adds the working text next to the parsed text.
	IncludeManipulated bool
	// IncludeFilename adds the source file path.
	IncludeFilename bool
	// IncludeAttributes adds the positional metadata columns.
	IncludeAttributes bool
	// IncludeParserResults adds category, category value and marks.
	IncludeParserResults bool
	// IncludeFileMeta adds one column per file metadata key.
	IncludeFileMeta bool
	// IncludeRemoved also exports soft-deleted elements. This is for audit
	// output only; a normal export never contains removed elements.
	IncludeRemoved bool
}

// Exporter walks a corpus and writes its non-removed elements.
type Exporter struct {
	corpus *model.Corpus
	opts   Options
}

// NewExporter creates an exporter over the given corpus.
func NewExporter(corpus *model.Corpus, opts Options) *Exporter {
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	return &Exporter{corpus: corpus, opts: opts}
}

// SaveCSV writes the whole corpus to one CSV file.
func (e *Exporter) SaveCSV(path string) error {
	return e.saveTo(path, func(w io.Writer) error {
		return e.writeCSV(w, e.corpus.Files())
	})
}

// SaveCSVs writes one CSV file per source file into dir, named after the
// source file's base name.
func (e *Exporter) SaveCSVs(dir string) error {
	for _, f := range e.corpus.Files() {
		f := f
		path := filepath.Join(dir, baseName(f.Path)+".csv")
		err := e.saveTo(path, func(w io.Writer) error {
			return e.writeCSV(w, []*model.File{f})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the whole corpus as CSV to w.
func (e *Exporter) WriteCSV(w io.Writer) error {
	return e.writeCSV(w, e.corpus.Files())
}

func (e *Exporter) saveTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Exporter) writeCSV(w io.Writer, files []*model.File) error {
	cw := csv.NewWriter(w)
	cw.Comma = e.opts.Delimiter

	metaKeys := e.metaKeys(files)
	if err := cw.Write(e.header(metaKeys)); err != nil {
		return err
	}

	for _, f := range files {
		for _, el := range f.Elements {
			if el.Removed() && !e.opts.IncludeRemoved {
				continue
			}
			if err := cw.Write(e.row(f, el, metaKeys)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func (e *Exporter) header(metaKeys []string) []string {
	cols := []string{"id", "text"}
	if e.opts.IncludeManipulated {
		cols = append(cols, "manipulated")
	}
	if e.opts.IncludeParserResults {
		cols = append(cols, "category", "category_value", "marks")
	}
	if e.opts.IncludeAttributes {
		cols = append(cols, "hpos", "vpos", "width", "height", "baseline", "coords")
	}
	if e.opts.IncludeFilename {
		cols = append(cols, "file")
	}
	if e.opts.IncludeFileMeta {
		cols = append(cols, metaKeys...)
	}
	return cols
}

func (e *Exporter) row(f *model.File, el *model.Element, metaKeys []string) []string {
	cols := []string{el.ID, el.Text}
	if e.opts.IncludeManipulated {
		cols = append(cols, el.WorkingText())
	}
	if e.opts.IncludeParserResults {
		cols = append(cols, el.Category(), el.CategoryValue(), formatMarks(el.Marks()))
	}
	if e.opts.IncludeAttributes {
		pos := el.Position
		cols = append(cols, pos.HPos, pos.VPos, pos.Width, pos.Height, pos.Baseline, pos.Coords)
	}
	if e.opts.IncludeFilename {
		cols = append(cols, f.Path)
	}
	if e.opts.IncludeFileMeta {
		for _, key := range metaKeys {
			cols = append(cols, f.Meta[key])
		}
	}
	return cols
}

// metaKeys returns the sorted union of file metadata keys, so every row has
// the same columns even when files carry different metadata.
func (e *Exporter) metaKeys(files []*model.File) []string {
	if !e.opts.IncludeFileMeta {
		return nil
	}
	set := make(map[string]struct{})
	for _, f := range files {
		for k := range f.Meta {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatMarks(marks map[string]string) string {
	if len(marks) == 0 {
		return ""
	}
	keys := make([]string, 0, len(marks))
	for k := range marks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, marks[k])
	}
	return strings.Join(parts, ";")
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
