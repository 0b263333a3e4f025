package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/publogs/internal/runtimelog"
)

var condenseCmd = &cobra.Command{
	Use:   "condense [flags] <runtime.log>",
	Short: "Group runtime errors by signature",
	Long: `Scrub a runtime log and group its faults by signature. Groups are
listed in the order they first occur, each with its repeat count.

Examples:
  publogs condense round-214233/runtime.log
  publogs condense --format json round-214233/runtime.log
  publogs condense --format table round-214233/runtime.log`,
	Args: cobra.ExactArgs(1),
	RunE: runCondense,
}

func init() {
	rootCmd.AddCommand(condenseCmd)
}

func runCondense(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	condensed, err := runtimelog.Condense(string(raw))
	if err != nil {
		return fmt.Errorf("condensing %s: %w", args[0], err)
	}

	return newOutput(cmd).WriteCondensed(condensed)
}
