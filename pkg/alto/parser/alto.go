package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// Known ALTO namespaces; a file whose root lives elsewhere is rejected.
var altoNamespaces = map[string]struct{}{
	"http://schema.ccs-gmbh.com/ALTO":            {},
	"http://www.loc.gov/standards/alto/ns-v2#":   {},
	"http://www.loc.gov/standards/alto/ns-v3#":   {},
	"http://www.loc.gov/standards/alto/ns-v4#":   {},
}

// AltoParser parses ALTO XML files. One element is produced per TextLine or
// per TextBlock, depending on Options.LineType.
type AltoParser struct {
	opts Options
	ids  *ids
}

// NewAltoParser creates an ALTO parser. An empty LineType defaults to
// TextLine.
func NewAltoParser(opts Options) *AltoParser {
	if opts.LineType == "" {
		opts.LineType = LineTypeLine
	}
	return &AltoParser{opts: opts, ids: newIDs()}
}

// ParseFile parses one ALTO file into a model file.
func (p *AltoParser) ParseFile(path string) (*model.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := model.NewFile(path)
	if err := p.parse(f, file); err != nil {
		return nil, fmt.Errorf("parse alto %s: %w", path, err)
	}
	return file, nil
}

func (p *AltoParser) parse(r io.Reader, file *model.File) error {
	dec := xml.NewDecoder(r)

	var (
		rootSeen  bool
		blockPos  model.Position
		blockID   string
		blockText strings.Builder
		inBlock   bool
		linePos   model.Position
		lineID    string
		lineText  strings.Builder
		inLine    bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				if _, ok := altoNamespaces[t.Name.Space]; !ok {
					return fmt.Errorf("%w: unknown alto namespace %q",
						internalerr.ErrInvalidInput, t.Name.Space)
				}
			}
			switch t.Name.Local {
			case "TextBlock":
				inBlock = true
				blockText.Reset()
				blockID = attr(t, "ID")
				blockPos = positionFromAttrs(t)
			case "TextLine":
				inLine = true
				lineText.Reset()
				lineID = attr(t, "ID")
				linePos = positionFromAttrs(t)
			case "String":
				if inLine {
					lineText.WriteString(" ")
					lineText.WriteString(attr(t, "CONTENT"))
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "TextLine":
				if !inLine {
					continue
				}
				inLine = false
				if inBlock {
					blockText.WriteString(" ")
					blockText.WriteString(lineText.String())
				}
				if p.opts.LineType == LineTypeLine {
					el := model.NewElement(p.ids.id(lineID), SanitizeText(lineText.String()), linePos)
					file.Elements = append(file.Elements, el)
				}
			case "TextBlock":
				if !inBlock {
					continue
				}
				inBlock = false
				if p.opts.LineType == LineTypeBlock {
					el := model.NewElement(p.ids.id(blockID), SanitizeText(blockText.String()), blockPos)
					file.Elements = append(file.Elements, el)
				}
			}
		}
	}

	if !rootSeen {
		return fmt.Errorf("%w: no xml root element", internalerr.ErrInvalidInput)
	}
	return nil
}

// attr returns the value of the named attribute, matching on local name.
func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func positionFromAttrs(el xml.StartElement) model.Position {
	return model.Position{
		HPos:     attr(el, "HPOS"),
		VPos:     attr(el, "VPOS"),
		Width:    attr(el, "WIDTH"),
		Height:   attr(el, "HEIGHT"),
		Baseline: attr(el, "BASELINE"),
	}
}
