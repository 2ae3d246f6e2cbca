package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

const pageNamespace = "http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15"

// PageParser parses Transkribus PAGE XML files. One element is produced per
// TextLine or per TextRegion, depending on Options.LineType. Region elements
// carry the structured custom tags of their lines, with tags continued over
// several lines merged back together.
type PageParser struct {
	opts Options
	ids  *ids
}

// NewPageParser creates a PAGE parser. An empty LineType defaults to
// TextRegion.
func NewPageParser(opts Options) *PageParser {
	if opts.LineType == "" {
		opts.LineType = LineTypeRegion
	}
	return &PageParser{opts: opts, ids: newIDs()}
}

// pageLine is one TextLine as read from the markup.
type pageLine struct {
	id     string
	custom string
	coords string
	text   string
}

// pageRegion is one TextRegion as read from the markup.
type pageRegion struct {
	id     string
	custom string
	coords string
	lines  []pageLine
}

// ParseFile parses one PAGE file into a model file, including the document
// metadata block.
func (p *PageParser) ParseFile(path string) (*model.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file := model.NewFile(path)
	regions, err := p.parse(f, file)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", path, err)
	}

	for _, region := range regions {
		if p.opts.LineType == LineTypeLine {
			for _, line := range region.lines {
				el := model.NewElement(p.ids.id(line.id), SanitizeText(line.text), model.Position{Coords: coalesce(line.coords, region.coords)})
				el.Tags = regionTags([]pageLine{line})
				file.Elements = append(file.Elements, el)
			}
			continue
		}

		var b strings.Builder
		for _, line := range region.lines {
			b.WriteString(" ")
			b.WriteString(line.text)
		}
		el := model.NewElement(p.ids.id(region.id), SanitizeText(b.String()), model.Position{Coords: region.coords})
		el.Tags = regionTags(region.lines)
		file.Elements = append(file.Elements, el)
	}
	return file, nil
}

func (p *PageParser) parse(r io.Reader, file *model.File) ([]pageRegion, error) {
	dec := xml.NewDecoder(r)
	log := p.opts.logger()

	var (
		rootSeen   bool
		regions    []pageRegion
		region     *pageRegion
		line       *pageLine
		inMeta     bool
		inTkMeta   bool
		inEquiv    bool
		textTarget *strings.Builder
		metaField  string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				if t.Name.Space != pageNamespace {
					return nil, fmt.Errorf("%w: unknown page namespace %q",
						internalerr.ErrInvalidInput, t.Name.Space)
				}
			}
			switch t.Name.Local {
			case "Metadata":
				inMeta = true
			case "Creator", "Created", "LastChange":
				if inMeta {
					metaField = strings.ToLower(t.Name.Local)
					if metaField == "lastchange" {
						metaField = "last_change"
					}
					textTarget = &strings.Builder{}
				}
			case "TranskribusMetadata":
				if inMeta {
					inTkMeta = true
					for _, a := range t.Attr {
						file.AddMeta(a.Name.Local, a.Value)
					}
				}
			case "Property":
				if inTkMeta {
					file.AddMeta(attr(t, "key"), attr(t, "value"))
				}
			case "TextRegion":
				regions = append(regions, pageRegion{
					id:     attr(t, "id"),
					custom: attr(t, "custom"),
				})
				region = &regions[len(regions)-1]
			case "TextLine":
				if region != nil {
					region.lines = append(region.lines, pageLine{
						id:     attr(t, "id"),
						custom: attr(t, "custom"),
					})
					line = &region.lines[len(region.lines)-1]
				}
			case "Coords":
				points := attr(t, "points")
				if line != nil {
					line.coords = points
				} else if region != nil {
					region.coords = points
				}
			case "TextEquiv":
				inEquiv = true
			case "Unicode":
				if inEquiv && line != nil {
					textTarget = &strings.Builder{}
				}
			}

		case xml.CharData:
			if textTarget != nil {
				textTarget.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "Metadata":
				inMeta = false
			case "Creator", "Created", "LastChange":
				if textTarget != nil && metaField != "" {
					file.AddMeta(metaField, strings.TrimSpace(textTarget.String()))
					textTarget = nil
					metaField = ""
				}
			case "TranskribusMetadata":
				inTkMeta = false
			case "Unicode":
				if textTarget != nil && line != nil {
					content := textTarget.String()
					if strings.TrimSpace(content) == "" {
						log.Debug("empty line content", "file", file.Path)
					} else {
						line.text += content
					}
					textTarget = nil
				}
			case "TextEquiv":
				inEquiv = false
			case "TextLine":
				line = nil
			case "TextRegion":
				region = nil
			}
		}
	}

	if !rootSeen {
		return nil, fmt.Errorf("%w: no xml root element", internalerr.ErrInvalidInput)
	}
	return regions, nil
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// customTagRe finds key { k:v; k:v; } groups inside a custom attribute.
var customTagRe = regexp.MustCompile(`(\w+)\s*\{([^}]*)\}`)

// customSpan is one parsed group from a custom attribute.
type customSpan struct {
	key   string
	attrs map[string]string
}

// parseCustomAttr parses a Transkribus custom attribute into its ordered
// spans. readingOrder groups are dropped; they carry layout bookkeeping, not
// annotation.
func parseCustomAttr(custom string) []customSpan {
	var spans []customSpan
	for _, m := range customTagRe.FindAllStringSubmatch(custom, -1) {
		key, body := m[1], m[2]
		if key == "readingOrder" {
			continue
		}
		attrs := make(map[string]string)
		for _, pair := range strings.Split(body, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			attrs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
		spans = append(spans, customSpan{key: key, attrs: attrs})
	}
	return spans
}

// regionTags turns the custom attributes of a region's lines into structured
// tags. Spans carrying offset/length are resolved against the line text, and
// tags continued over several lines are merged: the opening span ends its
// line, whole-line spans continue, and a span opening its line closes the
// tag.
func regionTags(lines []pageLine) []model.Tag {
	var open *model.Tag
	var tags []model.Tag

	for _, line := range lines {
		for _, span := range parseCustomAttr(line.custom) {
			text, starter, ender, ok := spanText(span.attrs, line.text)
			if !ok {
				continue
			}

			attrs := make(map[string]string)
			for k, v := range span.attrs {
				switch k {
				case "offset", "length", "continued":
					continue
				}
				attrs[k] = v
			}
			tag := model.Tag{Type: strings.ToLower(span.key), Text: text, Attrs: attrs}

			if _, continued := span.attrs["continued"]; !continued {
				tags = append(tags, tag)
				continue
			}

			switch {
			case ender && !starter: // tag opens here, rest follows
				t := tag
				open = &t
			case starter && ender: // whole line continues the tag
				if open != nil {
					open.Text += " " + tag.Text
				}
			case starter: // tag closes here
				if open != nil {
					open.Text += " " + tag.Text
					tags = append(tags, *open)
					open = nil
				}
			default: // malformed continuation, keep the span as its own tag
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// spanText resolves a span's offset/length against the line text. Returns
// whether the span starts and/or ends its line, which drives continuation
// merging.
func spanText(attrs map[string]string, lineText string) (text string, starter, ender, ok bool) {
	offStr, hasOff := attrs["offset"]
	lenStr, hasLen := attrs["length"]
	if !hasOff || !hasLen {
		return "", false, false, false
	}
	off, err1 := strconv.Atoi(offStr)
	length, err2 := strconv.Atoi(lenStr)
	if err1 != nil || err2 != nil || off < 0 || length < 0 {
		return "", false, false, false
	}
	end := off + length
	if off > len(lineText) {
		off = len(lineText)
	}
	if end > len(lineText) {
		end = len(lineText)
	}
	return lineText[off:end], off == 0, off+length == len(lineText), true
}
