package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func cityTable() *Table {
	t := NewTable("cities")
	t.Add(Entry{Key: "Berlin", Value: "DE", Category: "location", Variants: []string{"Berlin a.d. Spree"}})
	t.Add(Entry{Key: "Basel", Value: "CH", Category: "location"})
	t.Add(Entry{Key: "Acme & Cie.", Value: "A-1", Category: "company"})
	return t
}

func TestLookupSubstringDefault(t *testing.T) {
	table := cityTable()

	hits, err := table.Lookup("Sitz der Firma in Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Key != "Berlin" || hits[0].Value != "DE" || hits[0].Category != "location" {
		t.Errorf("unexpected hit %+v", hits[0])
	}
}

func TestLookupStrict(t *testing.T) {
	table := cityTable().With(Options{Strict: true})

	hits, _ := table.Lookup("Sitz der Firma in Berlin")
	if len(hits) != 0 {
		t.Errorf("strict matching must reject partial text, got %d hits", len(hits))
	}

	hits, _ = table.Lookup("  Berlin ")
	if len(hits) != 1 {
		t.Errorf("strict matching trims surrounding whitespace, got %d hits", len(hits))
	}
}

func TestLookupVariants(t *testing.T) {
	table := cityTable().With(Options{Strict: true})

	hits, _ := table.Lookup("Berlin a.d. Spree")
	if len(hits) != 1 {
		t.Fatalf("expected the variant to match, got %d hits", len(hits))
	}
	if hits[0].Key != "Berlin a.d. Spree" {
		t.Errorf("expected the matching surface form, got %q", hits[0].Key)
	}
	if hits[0].Value != "DE" {
		t.Errorf("variants inherit the entry value, got %q", hits[0].Value)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	table := cityTable().With(Options{Strict: true, CaseInsensitive: true})

	hits, _ := table.Lookup("BERLIN")
	if len(hits) != 1 {
		t.Errorf("expected case-folded match, got %d hits", len(hits))
	}
}

func TestLookupRestrictTo(t *testing.T) {
	table := cityTable().With(Options{RestrictTo: "company"})

	hits, _ := table.Lookup("Berlin")
	if len(hits) != 0 {
		t.Errorf("restricted table must skip other categories, got %d hits", len(hits))
	}

	hits, _ = table.Lookup("gegr. von Acme & Cie. 1885")
	if len(hits) != 1 {
		t.Errorf("expected the company entry, got %d hits", len(hits))
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.json")
	data := `[
  {"entry": "Berlin", "value": "DE", "type": "location", "variants": ["Berlin a.d. Spree"]},
  {"entry": "Basel", "value": "CH", "type": "location"}
]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Name() != "places" {
		t.Errorf("table named after the file, got %q", table.Name())
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}
	if got := table.Entries()[0].Variants; len(got) != 1 || got[0] != "Berlin a.d. Spree" {
		t.Errorf("unexpected variants %v", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "places.yaml")
	data := `entries:
  - entry: Berlin
    value: DE
    type: location
  - entry: Basel
    value: CH
    type: location
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadYAML(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", table.Len())
	}
	if e := table.Entries()[1]; e.Key != "Basel" || e.Value != "CH" {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companies.csv")
	data := "entry,value\nAcme & Cie.,A-1\nBeta Ltd.,B-2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := FromCSV(path, "company")
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected header skipped and 2 entries, got %d", table.Len())
	}
	if e := table.Entries()[0]; e.Key != "Acme & Cie." || e.Value != "A-1" || e.Category != "company" {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cities.json")

	if err := WriteJSON(cityTable(), path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != cityTable().Len() {
		t.Errorf("expected %d entries, got %d", cityTable().Len(), loaded.Len())
	}
}
