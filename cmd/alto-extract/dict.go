package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RISE-UNIBAS/simple-alto-parser/pkg/alto/dictionary"
)

var (
	dictFromCSV  string
	dictCategory string
	dictOutJSON  string
	dictSQLite   string
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Build a dictionary from a CSV list",
	Long: `Build a pipeline dictionary from a two-column CSV file (surface form,
value) and save it as a JSON dictionary file, a SQLite store, or both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dictFromCSV == "" {
			return fmt.Errorf("--from-csv is required")
		}
		if dictOutJSON == "" && dictSQLite == "" {
			return fmt.Errorf("at least one of --out-json or --sqlite is required")
		}

		table, err := dictionary.FromCSV(dictFromCSV, dictCategory)
		if err != nil {
			return err
		}

		if dictOutJSON != "" {
			if err := dictionary.WriteJSON(table, dictOutJSON); err != nil {
				return err
			}
		}

		if dictSQLite != "" {
			ctx := context.Background()
			store, err := dictionary.OpenSQLite(ctx, dictSQLite)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.PutAll(ctx, table); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d entries written from %s\n", table.Len(), dictFromCSV)
		return nil
	},
}

func init() {
	dictCmd.Flags().StringVar(&dictFromCSV, "from-csv", "", "Source CSV file (surface form, value)")
	dictCmd.Flags().StringVar(&dictCategory, "type", "", "Category assigned to every entry")
	dictCmd.Flags().StringVar(&dictOutJSON, "out-json", "", "Write a JSON dictionary file")
	dictCmd.Flags().StringVar(&dictSQLite, "sqlite", "", "Write entries into a SQLite dictionary store")

	rootCmd.AddCommand(dictCmd)
}
