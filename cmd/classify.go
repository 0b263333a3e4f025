package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/publogs/internal/output"
	"github.com/bimmerbailey/publogs/internal/sanitize"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [--all] [name]...",
	Short: "Show how file names would be published",
	Long: `Look file names up in the publication table and show the public name
and sanitizer each would be served with. Names that are not publishable are
reported as such. With --all, every name in the table is listed first.

Examples:
  publogs classify game.log runtime.log sql.log
  publogs classify --all --format table
  publogs classify --format table round-214233/*`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("all", false, "list every publishable name")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	names := args
	if all, _ := cmd.Flags().GetBool("all"); all {
		names = append(sanitize.PublishableNames(), args...)
	}
	if len(names) == 0 {
		return errors.New("give at least one file name, or --all")
	}

	rows := make([]output.Classification, 0, len(names))
	for _, name := range names {
		rows = append(rows, output.Classify(filepath.Base(name)))
	}
	return newOutput(cmd).WriteClassifications(rows)
}
