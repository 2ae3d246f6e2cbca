package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

// HOCRParser parses hOCR files, the HTML-based OCR layout format. One
// element is produced per ocr_line or per ocr_carea, depending on
// Options.LineType (TextLine and TextBlock respectively).
type HOCRParser struct {
	opts Options
	ids  *ids
}

// NewHOCRParser creates an hOCR parser. An empty LineType defaults to
// TextLine.
func NewHOCRParser(opts Options) *HOCRParser {
	if opts.LineType == "" {
		opts.LineType = LineTypeLine
	}
	return &HOCRParser{opts: opts, ids: newIDs()}
}

// ParseFile parses one hOCR file into a model file.
func (p *HOCRParser) ParseFile(path string) (*model.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse hocr %s: %w", path, err)
	}

	file := model.NewFile(path)
	p.walk(doc, file)
	return file, nil
}

func (p *HOCRParser) walk(n *html.Node, file *model.File) {
	if n.Type == html.ElementNode {
		switch htmlAttr(n, "class") {
		case "ocr_carea":
			if p.opts.LineType == LineTypeBlock {
				p.emit(n, file)
				return // lines inside are covered by the block
			}
		case "ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat":
			if p.opts.LineType == LineTypeLine {
				p.emit(n, file)
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, file)
	}
}

func (p *HOCRParser) emit(n *html.Node, file *model.File) {
	el := model.NewElement(p.ids.id(htmlAttr(n, "id")), SanitizeText(nodeText(n)), bboxPosition(htmlAttr(n, "title")))
	file.Elements = append(file.Elements, el)
}

// nodeText collects the text content below a node, with whitespace between
// word spans collapsed to single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			if s := strings.TrimSpace(node.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}

func htmlAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// bboxPosition extracts the bbox property from an hOCR title attribute
// ("bbox 36 92 618 116; x_wconf 95") into positional metadata.
func bboxPosition(title string) model.Position {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		coords := make([]int, 4)
		ok := true
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				ok = false
				break
			}
			coords[i] = v
		}
		if !ok {
			continue
		}
		return model.Position{
			HPos:   strconv.Itoa(coords[0]),
			VPos:   strconv.Itoa(coords[1]),
			Width:  strconv.Itoa(coords[2] - coords[0]),
			Height: strconv.Itoa(coords[3] - coords[1]),
		}
	}
	return model.Position{}
}
