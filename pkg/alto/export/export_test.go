package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
)

func exportCorpus(t *testing.T) *model.Corpus {
	t.Helper()
	f := model.NewFile("data/scan_1925.xml")
	f.AddMeta("year", "1925")

	e1 := model.NewElement("e1", "Acme & Cie.", model.Position{HPos: "10", VPos: "20", Width: "100", Height: "30"})
	e1.SetCategory("company", "Acme & Cie.")
	e1.Mark("member", "true")

	e2 := model.NewElement("e2", "Berlin", model.Position{})
	e3 := model.NewElement("e3", "dropped", model.Position{})
	e3.Remove()

	f.Elements = append(f.Elements, e1, e2, e3)
	c := model.NewCorpus()
	if err := c.AddFile(f); err != nil {
		t.Fatal(err)
	}
	return c
}

func readCSV(t *testing.T, buf *bytes.Buffer, comma rune) [][]string {
	t.Helper()
	r := csv.NewReader(buf)
	r.Comma = comma
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteCSVDefaultColumns(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(exportCorpus(t), Options{})

	if err := e.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, &buf, '\t')
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "text" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "e1" || rows[1][1] != "Acme & Cie." {
		t.Errorf("unexpected first row %v", rows[1])
	}
}

func TestWriteCSVExcludesRemoved(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(exportCorpus(t), Options{}).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	for _, row := range readCSV(t, &buf, '\t') {
		if row[0] == "e3" {
			t.Error("removed elements must not be exported")
		}
	}
}

func TestWriteCSVIncludeRemoved(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(exportCorpus(t), Options{IncludeRemoved: true}).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, &buf, '\t')
	if len(rows) != 4 {
		t.Errorf("audit export keeps removed elements, got %d rows", len(rows))
	}
}

func TestWriteCSVAllColumns(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(exportCorpus(t), Options{
		Delimiter:            ';',
		IncludeManipulated:   true,
		IncludeFilename:      true,
		IncludeAttributes:    true,
		IncludeParserResults: true,
		IncludeFileMeta:      true,
	})
	if err := e.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, &buf, ';')
	want := []string{
		"id", "text", "manipulated",
		"category", "category_value", "marks",
		"hpos", "vpos", "width", "height", "baseline", "coords",
		"file", "year",
	}
	if len(rows[0]) != len(want) {
		t.Fatalf("expected %d columns, got %d: %v", len(want), len(rows[0]), rows[0])
	}
	for i, col := range want {
		if rows[0][i] != col {
			t.Errorf("column %d: expected %q, got %q", i, col, rows[0][i])
		}
	}

	first := rows[1]
	if first[3] != "company" || first[4] != "Acme & Cie." {
		t.Errorf("unexpected parser results %v", first[3:6])
	}
	if first[5] != "member=true" {
		t.Errorf("unexpected marks column %q", first[5])
	}
	if first[12] != "data/scan_1925.xml" || first[13] != "1925" {
		t.Errorf("unexpected file columns %v", first[12:])
	}
}

func TestSaveCSVs(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(exportCorpus(t), Options{})

	if err := e.SaveCSVs(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "scan_1925.csv")); err != nil {
		t.Errorf("expected per-file csv named after the source: %v", err)
	}
}

func TestFormatMarks(t *testing.T) {
	got := formatMarks(map[string]string{"b": "2", "a": "1"})
	if got != "a=1;b=2" {
		t.Errorf("marks serialize sorted, got %q", got)
	}
	if formatMarks(nil) != "" {
		t.Error("no marks means an empty column")
	}
}
