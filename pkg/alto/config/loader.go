package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/dictionary"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/internalerr"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/ner"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/parser"
)

// Loader reads all configuration files and constructs the wired components.
type Loader struct {
	ConfigPath    string
	RulesPath     string
	DictPaths     []string
	GazetteerPath string
	Logger        *slog.Logger
}

// Components holds everything a processing session needs.
type Components struct {
	Config *Config
	Parser parser.FileParser
	Dicts  map[string]*dictionary.Table
	Tagger *ner.Gazetteer
	Rules  *Rules
	Logger *slog.Logger
}

// Load reads every configured file and returns initialized components.
func (l *Loader) Load() (*Components, error) {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}
	comp := &Components{Dicts: make(map[string]*dictionary.Table), Logger: log}

	if l.ConfigPath != "" {
		cfg, err := Load(l.ConfigPath)
		if err != nil {
			return nil, err
		}
		comp.Config = cfg
	} else {
		comp.Config = Default()
	}

	opts := parser.Options{LineType: comp.Config.LineType, Logger: log}
	switch comp.Config.Format {
	case "page":
		comp.Parser = parser.NewPageParser(opts)
	case "hocr":
		comp.Parser = parser.NewHOCRParser(opts)
	default:
		comp.Parser = parser.NewAltoParser(opts)
	}

	for _, path := range l.DictPaths {
		table, err := loadDict(path)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Dicts[table.Name()] = table
	}

	if l.GazetteerPath != "" {
		tagger, err := ner.LoadYAML(l.GazetteerPath)
		if err != nil {
			return nil, fmt.Errorf("load gazetteer: %w", err)
		}
		comp.Tagger = tagger
	}

	if l.RulesPath != "" {
		rules, err := LoadRules(l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Rules = rules
	}

	return comp, nil
}

func loadDict(path string) (*dictionary.Table, error) {
	switch filepath.Ext(path) {
	case ".json":
		return dictionary.LoadJSON(path)
	case ".yaml", ".yml":
		return dictionary.LoadYAML(path)
	default:
		return nil, fmt.Errorf("%w: unsupported dictionary file %q", internalerr.ErrInvalidConfig, path)
	}
}

// ParseDir parses every matching file in dir into a corpus and applies the
// configured metadata: static pairs, filename structure values and batch
// assignments.
func (c *Components) ParseDir(dir string) (*model.Corpus, error) {
	corpus, err := parser.Directory(c.Parser, dir, c.Config.FileEnding)
	if err != nil {
		return nil, err
	}

	for key, value := range c.Config.MetaData {
		parser.AddMeta(corpus, key, value)
	}

	if fns := c.Config.FileNameStructure; fns != nil {
		if err := parser.ApplyFilenameStructure(corpus, fns.Pattern, fns.ValueNames, c.Logger); err != nil {
			return nil, err
		}
	}

	if len(c.Config.Batches) > 0 {
		rules := make([]parser.BatchRule, len(c.Config.Batches))
		for i, b := range c.Config.Batches {
			conds := make([]parser.BatchCondition, len(b.Conditions))
			for j, cond := range b.Conditions {
				conds[j] = parser.BatchCondition{Key: cond.Key, Values: cond.Values}
			}
			rules[i] = parser.BatchRule{Name: b.Name, Conditions: conds}
		}
		if err := parser.AssignBatches(corpus, rules); err != nil {
			return nil, err
		}
	}

	return corpus, nil
}
