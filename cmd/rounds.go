package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/publogs/internal/output"
	"github.com/bimmerbailey/publogs/internal/roundguard"
)

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "List rounds in the archive and whether they would be served",
	Long: `Find every round directory under the archive root and ask the
configured liveness source about each. Rounds that are ongoing or unknown are
withheld by the server.

Examples:
  publogs rounds
  publogs rounds --format table --logs /srv/ss13/logs`,
	Args: cobra.NoArgs,
	RunE: runRounds,
}

func init() {
	rootCmd.AddCommand(roundsCmd)
}

func runRounds(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	guard, err := newGuard(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	rounds, err := roundguard.Discover(guard.Root(), guard.Prefix())
	if err != nil {
		return fmt.Errorf("finding rounds: %w", err)
	}

	rows := make([]output.RoundStatus, 0, len(rounds))
	for _, round := range rounds {
		rows = append(rows, output.RoundStatus{
			ID:    round.ID,
			Dir:   round.Dir,
			State: guard.State(cmd.Context(), round).String(),
		})
	}
	return newOutput(cmd).WriteRounds(rows)
}
