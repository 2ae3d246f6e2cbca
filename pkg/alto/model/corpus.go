package model

import (
	"fmt"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
)

// File is the parse result of one source document: an ordered sequence of
// elements plus file-level metadata.
type File struct {
	Path     string
	Meta     map[string]string
	Batch    string
	Elements []*Element
}

// NewFile creates an empty file record for the given path.
func NewFile(path string) *File {
	return &File{Path: path, Meta: make(map[string]string)}
}

// AddMeta attaches a metadata key/value pair to the file.
func (f *File) AddMeta(key, value string) {
	if f.Meta == nil {
		f.Meta = make(map[string]string)
	}
	f.Meta[key] = value
}

// Corpus owns every parsed file for one processing session. Files and their
// elements keep insertion order; nothing is ever physically deleted or
// reordered. The corpus assumes single-threaded, sequential pipeline
// execution and is not safe for concurrent mutation.
type Corpus struct {
	files []*File
	index map[string]*File
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{index: make(map[string]*File)}
}

// AddFile appends a parsed file to the corpus after checking its integrity:
// every element needs an id, ids must be unique within the file, and each
// element is stamped with the owning file's path. A violation returns a
// ModelIntegrityError and the file is not added.
func (c *Corpus) AddFile(f *File) error {
	if f == nil || f.Path == "" {
		return integrityErr("", "", internalerr.ErrInvalidInput)
	}
	if _, ok := c.index[f.Path]; ok {
		return integrityErr(f.Path, "", internalerr.ErrDuplicateID)
	}

	seen := make(map[string]struct{}, len(f.Elements))
	for _, el := range f.Elements {
		if el.ID == "" {
			return integrityErr(f.Path, "", fmt.Errorf("%w: empty element id", internalerr.ErrInvalidInput))
		}
		if _, dup := seen[el.ID]; dup {
			return integrityErr(f.Path, el.ID, internalerr.ErrDuplicateID)
		}
		seen[el.ID] = struct{}{}
		el.SourceFile = f.Path
	}

	c.files = append(c.files, f)
	c.index[f.Path] = f
	return nil
}

// Files returns the parsed files in insertion order.
func (c *Corpus) Files() []*File { return c.files }

// File looks up a parsed file by path.
func (c *Corpus) File(path string) (*File, bool) {
	f, ok := c.index[path]
	return f, ok
}

// Elements returns every non-removed element across the corpus in stable
// insertion order: file order first, then element order within each file.
func (c *Corpus) Elements() []*Element {
	var out []*Element
	for _, f := range c.files {
		for _, el := range f.Elements {
			if !el.Removed() {
				out = append(out, el)
			}
		}
	}
	return out
}

// AllElements returns every element, removed ones included. It exists for
// diagnostics and audit export; candidate selection must use Elements.
func (c *Corpus) AllElements() []*Element {
	var out []*Element
	for _, f := range c.files {
		out = append(out, f.Elements...)
	}
	return out
}

// Len returns the number of non-removed elements in the corpus.
func (c *Corpus) Len() int { return len(c.Elements()) }

func integrityErr(file, id string, err error) *internalerr.ModelIntegrityError {
	return &internalerr.ModelIntegrityError{File: file, ID: id, Err: err}
}
