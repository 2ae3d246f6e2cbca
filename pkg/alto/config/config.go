// Package config loads parser configuration and pipeline rule files, and
// constructs the components they describe.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
)

// Config is the parser configuration.
type Config struct {
	// Format selects the file parser: "alto" (default), "page" or "hocr".
	Format string `yaml:"format"`
	// LineType defines what constitutes one element: TextLine (default),
	// TextBlock (alto, hocr) or TextRegion (page).
	LineType string `yaml:"line_type"`
	// FileEnding of the files to be parsed, e.g. ".xml".
	FileEnding string `yaml:"file_ending"`
	// MetaData is static metadata attached to every file.
	MetaData map[string]string `yaml:"meta_data"`
	// FileNameStructure extracts per-file metadata from filenames.
	FileNameStructure *FileNameStructure `yaml:"file_name_structure"`
	// Batches assign batch names to files by metadata conditions.
	Batches []Batch `yaml:"batches"`
	// Export options for the tabular output.
	Export Export `yaml:"export"`
}

// FileNameStructure is a regex whose capture groups map one-to-one onto
// value names.
type FileNameStructure struct {
	Pattern    string   `yaml:"pattern"`
	ValueNames []string `yaml:"value_names"`
}

// Batch names a set of files selected by metadata conditions.
type Batch struct {
	Name       string      `yaml:"name"`
	Conditions []Condition `yaml:"conditions"`
}

// Condition matches a file metadata key against accepted values
// (comma-separated, numeric ranges as "a-b").
type Condition struct {
	Key    string `yaml:"key"`
	Values string `yaml:"values"`
}

// Export holds exporter options.
type Export struct {
	CSV CSVExport `yaml:"csv"`
}

// CSVExport mirrors the exporter's column switches.
type CSVExport struct {
	Delimiter          string `yaml:"delimiter"`
	PrintManipulated   bool   `yaml:"print_manipulated"`
	PrintFilename      bool   `yaml:"print_filename"`
	PrintAttributes    bool   `yaml:"print_attributes"`
	PrintParserResults bool   `yaml:"print_parser_results"`
	PrintFileMetaData  bool   `yaml:"print_file_meta_data"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:     "alto",
		LineType:   "TextLine",
		FileEnding: ".xml",
		Export: Export{
			CSV: CSVExport{
				Delimiter:          "\t",
				PrintAttributes:    true,
				PrintParserResults: true,
			},
		},
	}
}

// Load reads a configuration file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Format {
	case "alto", "page", "hocr":
	default:
		return fmt.Errorf("%w: unknown format %q", internalerr.ErrInvalidConfig, c.Format)
	}
	switch c.LineType {
	case "TextLine", "TextBlock", "TextRegion":
	default:
		return fmt.Errorf("%w: unknown line type %q", internalerr.ErrInvalidConfig, c.LineType)
	}
	return nil
}
