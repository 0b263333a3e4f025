package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/publogs/internal/config"
	"github.com/bimmerbailey/publogs/internal/redact"
	"github.com/bimmerbailey/publogs/internal/sanitize"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [flags] <path>...",
	Short: "Sanitize log files the way the server would publish them",
	Long: `Run files through the same sanitizers the server uses and print the
result, or write every file under its public name into a directory.

Paths may be files, glob patterns or round directories. Files that are not
publishable are skipped.

Examples:
  publogs sanitize round-214233/game.log
  publogs sanitize --out public/round-214233 round-214233
  publogs sanitize --color always round-*/game.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSanitize,
}

func init() {
	sanitizeCmd.Flags().StringP("out", "o", "", "write sanitized files into this directory")
	sanitizeCmd.Flags().Bool("scrub-passthrough", false, "also scrub identifiers from files published as-is")

	_ = viper.BindPFlag("sanitize.scrub_passthrough", sanitizeCmd.Flags().Lookup("scrub-passthrough"))

	rootCmd.AddCommand(sanitizeCmd)
}

func newSanitizer() *sanitize.Sanitizer {
	patterns := viper.GetStringSlice("sanitize.patterns")
	if len(patterns) == 0 {
		patterns = redact.DefaultPatterns()
	}
	return sanitize.New(
		sanitize.WithScrubber(redact.NewScrubber(patterns...)),
		sanitize.WithScrubPassthrough(viper.GetBool("sanitize.scrub_passthrough")),
	)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")

	files, err := config.ExpandPaths(args)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	sanitizer := newSanitizer()
	w := newOutput(cmd)
	multiFile := len(files) > 1
	written := 0

	for _, path := range files {
		d, ok := sanitize.Classify(filepath.Base(path))
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: not publishable\n", path)
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		clean, err := sanitizer.Apply(d, raw)
		if err != nil {
			return fmt.Errorf("sanitizing %s: %w", path, err)
		}

		if outDir != "" {
			target := filepath.Join(outDir, d.PublicName)
			if err := os.WriteFile(target, clean, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", path, target)
			written++
			continue
		}

		if multiFile {
			if written > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", path)
		}
		if err := w.WriteCensored(string(clean)); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		return fmt.Errorf("none of the %d file(s) are publishable", len(files))
	}
	return nil
}
