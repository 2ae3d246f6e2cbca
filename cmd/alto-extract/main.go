// alto-extract runs a configured extraction session: parse a directory of
// OCR layout files, apply a pipeline rules file, and export the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "alto-extract",
	Short: "Extract and categorize text from ALTO, PAGE and hOCR files",
	Long: `alto-extract parses OCR layout files into an addressable text model,
applies a chainable pattern-matching pipeline (regex, dictionary lookup,
entity tagging) driven by a rules file, and exports the result as CSV or
JSON.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
