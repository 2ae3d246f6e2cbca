package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// elementRecord is the JSON form of one element.
type elementRecord struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Manipulated   string            `json:"manipulated,omitempty"`
	Category      string            `json:"category,omitempty"`
	CategoryValue string            `json:"category_value,omitempty"`
	Marks         map[string]string `json:"marks,omitempty"`
	Position      positionRecord    `json:"position"`
	File          string            `json:"file,omitempty"`
	FileMeta      map[string]string `json:"file_meta,omitempty"`
	MatchedBy     []string          `json:"matched_by,omitempty"`
	Removed       bool              `json:"removed,omitempty"`
}

type positionRecord struct {
	HPos     string `json:"hpos,omitempty"`
	VPos     string `json:"vpos,omitempty"`
	Width    string `json:"width,omitempty"`
	Height   string `json:"height,omitempty"`
	Baseline string `json:"baseline,omitempty"`
	Coords   string `json:"coords,omitempty"`
}

// SaveJSON writes the whole corpus to one JSON file.
func (e *Exporter) SaveJSON(path string) error {
	return e.saveTo(path, func(w io.Writer) error {
		return e.writeJSON(w, e.corpus.Files())
	})
}

// SaveJSONs writes one JSON file per source file into dir.
func (e *Exporter) SaveJSONs(dir string) error {
	for _, f := range e.corpus.Files() {
		f := f
		path := filepath.Join(dir, baseName(f.Path)+".json")
		err := e.saveTo(path, func(w io.Writer) error {
			return e.writeJSON(w, []*model.File{f})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the whole corpus as JSON to w.
func (e *Exporter) WriteJSON(w io.Writer) error {
	return e.writeJSON(w, e.corpus.Files())
}

func (e *Exporter) writeJSON(w io.Writer, files []*model.File) error {
	records := make([]elementRecord, 0)
	for _, f := range files {
		for _, el := range f.Elements {
			if el.Removed() && !e.opts.IncludeRemoved {
				continue
			}
			records = append(records, e.record(f, el))
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (e *Exporter) record(f *model.File, el *model.Element) elementRecord {
	rec := elementRecord{
		ID:   el.ID,
		Text: el.Text,
		Position: positionRecord{
			HPos:     el.Position.HPos,
			VPos:     el.Position.VPos,
			Width:    el.Position.Width,
			Height:   el.Position.Height,
			Baseline: el.Position.Baseline,
			Coords:   el.Position.Coords,
		},
		File:      f.Path,
		MatchedBy: el.MatchedBy(),
	}
	if e.opts.IncludeManipulated {
		rec.Manipulated = el.WorkingText()
	}
	if e.opts.IncludeParserResults {
		rec.Category = el.Category()
		rec.CategoryValue = el.CategoryValue()
		rec.Marks = el.Marks()
	}
	if e.opts.IncludeFileMeta {
		rec.FileMeta = f.Meta
	}
	if e.opts.IncludeRemoved {
		rec.Removed = el.Removed()
	}
	return rec
}

// ImportJSON rebuilds a corpus from a JSON export. Text, category, marks,
// position, audit trail and removal state survive the round trip; elements
// without a file fall under the pseudo-path "import".
func ImportJSON(r io.Reader) (*model.Corpus, error) {
	var records []elementRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("import json: %w", err)
	}

	corpus := model.NewCorpus()
	var order []string
	byPath := make(map[string]*model.File)

	for _, rec := range records {
		path := rec.File
		if path == "" {
			path = "import"
		}
		f, ok := byPath[path]
		if !ok {
			f = model.NewFile(path)
			for k, v := range rec.FileMeta {
				f.AddMeta(k, v)
			}
			byPath[path] = f
			order = append(order, path)
		}

		el := model.NewElement(rec.ID, rec.Text, model.Position{
			HPos:     rec.Position.HPos,
			VPos:     rec.Position.VPos,
			Width:    rec.Position.Width,
			Height:   rec.Position.Height,
			Baseline: rec.Position.Baseline,
			Coords:   rec.Position.Coords,
		})
		if rec.Manipulated != "" {
			el.SetWorkingText(rec.Manipulated)
		}
		if rec.Category != "" {
			el.SetCategory(rec.Category, rec.CategoryValue)
		}
		for k, v := range rec.Marks {
			el.Mark(k, v)
		}
		for _, op := range rec.MatchedBy {
			el.AppendMatchedBy(op)
		}
		if rec.Removed {
			el.Remove()
		}
		f.Elements = append(f.Elements, el)
	}

	for _, path := range order {
		if err := corpus.AddFile(byPath[path]); err != nil {
			return nil, err
		}
	}
	return corpus, nil
}
