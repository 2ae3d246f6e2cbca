package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/config"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/dictionary"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/export"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/model"
	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/pipeline"
)

var (
	runConfigPath    string
	runRulesPath     string
	runInputDir      string
	runDictPaths     []string
	runDictStore     string
	runGazetteerPath string
	runOutCSV        string
	runOutJSON       string
	runPerFileDir    string
	runVerbose       bool
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Parse an input directory, apply rules and export",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if runVerbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		loader := &config.Loader{
			ConfigPath:    runConfigPath,
			RulesPath:     runRulesPath,
			DictPaths:     runDictPaths,
			GazetteerPath: runGazetteerPath,
			Logger:        log,
		}
		comp, err := loader.Load()
		if err != nil {
			return err
		}

		if runDictStore != "" {
			if err := loadStoreDicts(cmd.Context(), runDictStore, comp); err != nil {
				return err
			}
		}

		corpus, err := comp.ParseDir(runInputDir)
		if err != nil {
			return err
		}

		pl := pipeline.New(corpus)
		pl.SetLogger(log)
		if comp.Rules != nil {
			if err := config.RunRules(comp.Rules, pl, comp.Dicts, tagger(comp)); err != nil {
				return err
			}
		}

		csvCfg := comp.Config.Export.CSV
		opts := export.Options{
			IncludeManipulated:   csvCfg.PrintManipulated,
			IncludeFilename:      csvCfg.PrintFilename,
			IncludeAttributes:    csvCfg.PrintAttributes,
			IncludeParserResults: csvCfg.PrintParserResults,
			IncludeFileMeta:      csvCfg.PrintFileMetaData,
		}
		if csvCfg.Delimiter != "" {
			opts.Delimiter = []rune(csvCfg.Delimiter)[0]
		}
		exp := export.NewExporter(corpus, opts)

		if runOutCSV != "" {
			if err := exp.SaveCSV(runOutCSV); err != nil {
				return err
			}
		}
		if runOutJSON != "" {
			if err := exp.SaveJSON(runOutJSON); err != nil {
				return err
			}
		}
		if runPerFileDir != "" {
			if err := os.MkdirAll(runPerFileDir, 0o755); err != nil {
				return err
			}
			if err := exp.SaveCSVs(runPerFileDir); err != nil {
				return err
			}
		}

		printSummary(cmd, corpus)
		return nil
	},
}

// loadStoreDicts materializes every dictionary of a SQLite store into the
// session. File dictionaries of the same name take precedence.
func loadStoreDicts(ctx context.Context, path string, comp *config.Components) error {
	store, err := dictionary.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Dicts(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := comp.Dicts[name]; ok {
			continue
		}
		table, err := dictionary.FromStore(ctx, store, name)
		if err != nil {
			return err
		}
		comp.Dicts[name] = table
	}
	return nil
}

func tagger(comp *config.Components) pipeline.EntityTagger {
	if comp.Tagger == nil {
		return nil
	}
	return comp.Tagger
}

func printSummary(cmd *cobra.Command, corpus *model.Corpus) {
	var total, removed, categorized int
	for _, el := range corpus.AllElements() {
		total++
		if el.Removed() {
			removed++
		}
		if el.Category() != "" {
			categorized++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render("alto-extract"))
	fmt.Fprintf(out, "%s %s\n", statStyle.Render(fmt.Sprintf("%d", len(corpus.Files()))), faintStyle.Render("files parsed"))
	fmt.Fprintf(out, "%s %s\n", statStyle.Render(fmt.Sprintf("%d", total)), faintStyle.Render("elements"))
	fmt.Fprintf(out, "%s %s\n", statStyle.Render(fmt.Sprintf("%d", categorized)), faintStyle.Render("categorized"))
	fmt.Fprintf(out, "%s %s\n", statStyle.Render(fmt.Sprintf("%d", removed)), faintStyle.Render("removed"))
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Parser configuration file (YAML)")
	runCmd.Flags().StringVarP(&runRulesPath, "rules", "r", "", "Pipeline rules file (YAML)")
	runCmd.Flags().StringVarP(&runInputDir, "input", "i", ".", "Directory of input files")
	runCmd.Flags().StringArrayVarP(&runDictPaths, "dict", "d", nil, "Dictionary file (JSON or YAML), repeatable")
	runCmd.Flags().StringVar(&runDictStore, "dict-store", "", "SQLite dictionary store to load dictionaries from")
	runCmd.Flags().StringVar(&runGazetteerPath, "gazetteer", "", "Gazetteer file for entity tagging (YAML)")
	runCmd.Flags().StringVar(&runOutCSV, "out-csv", "", "Write the corpus to one CSV file")
	runCmd.Flags().StringVar(&runOutJSON, "out-json", "", "Write the corpus to one JSON file")
	runCmd.Flags().StringVar(&runPerFileDir, "out-dir", "", "Write one CSV per input file into this directory")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log matches and parse warnings")

	rootCmd.AddCommand(runCmd)
}
