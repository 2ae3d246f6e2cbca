package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
)

const loaderAltoSample = `<?xml version="1.0" encoding="UTF-8"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
  <TextBlock ID="b1">
    <TextLine ID="l1"><String CONTENT="Acme"/><String CONTENT="Corp"/></TextLine>
  </TextBlock>
</alto>`

func TestLoaderBuildsComponents(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dictPath := filepath.Join(dir, "cities.json")
	gazPath := filepath.Join(dir, "gaz.yaml")
	rulesPath := filepath.Join(dir, "rules.yaml")

	files := map[string]string{
		cfgPath:   "format: alto\nline_type: TextLine\n",
		dictPath:  `[{"entry": "Berlin", "value": "DE", "type": "location"}]`,
		gazPath:   "name: gaz\nentities:\n  LOC: [Berlin]\n",
		rulesPath: "chains:\n  - steps:\n      - op: find\n        pattern: Acme\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l := &Loader{
		ConfigPath:    cfgPath,
		RulesPath:     rulesPath,
		DictPaths:     []string{dictPath},
		GazetteerPath: gazPath,
	}
	comp, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	if comp.Config.Format != "alto" {
		t.Errorf("unexpected format %q", comp.Config.Format)
	}
	if _, ok := comp.Dicts["cities"]; !ok {
		t.Errorf("dictionary named after its file, got %v", comp.Dicts)
	}
	if comp.Tagger == nil || comp.Tagger.Name() != "gaz" {
		t.Error("gazetteer not loaded")
	}
	if comp.Rules == nil || len(comp.Rules.Chains) != 1 {
		t.Error("rules not loaded")
	}
}

func TestLoaderDefaultsWithoutConfig(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.Config.Format != "alto" || comp.Parser == nil {
		t.Errorf("expected default components, got %+v", comp.Config)
	}
}

func TestLoaderRejectsUnknownDictFile(t *testing.T) {
	_, err := (&Loader{DictPaths: []string{"words.txt"}}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseDirAppliesMetadataAndBatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scan_1925.xml", "scan_1930.xml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(loaderAltoSample), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `format: alto
meta_data:
  source: registry
file_name_structure:
  pattern: 'scan_(\d{4})\.xml'
  value_names: [year]
batches:
  - name: early
    conditions:
      - key: year
        values: 1925-1926
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	comp, err := (&Loader{ConfigPath: cfgPath}).Load()
	if err != nil {
		t.Fatal(err)
	}
	corpus, err := comp.ParseDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(corpus.Files()) != 2 {
		t.Fatalf("expected 2 files, got %d", len(corpus.Files()))
	}
	first := corpus.Files()[0]
	if first.Meta["source"] != "registry" || first.Meta["year"] != "1925" {
		t.Errorf("unexpected metadata %v", first.Meta)
	}
	if first.Batch != "early" {
		t.Errorf("expected batch from year range, got %q", first.Batch)
	}
	if corpus.Files()[1].Batch != "" {
		t.Error("files outside every rule keep an empty batch")
	}
}
