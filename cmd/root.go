package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/publogs/internal/config"
	"github.com/bimmerbailey/publogs/internal/output"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "publogs",
	Short: "Publish game server logs without leaking private data",
	Long: `Publogs serves an archive of round logs over HTTP. Private chat and
player identifiers are censored, and rounds still being played are withheld.

The same sanitizers are available offline for checking files by hand.

Examples:
  publogs serve --address 0.0.0.0:3000 --logs /srv/logs
  publogs sanitize round-214233/game.log
  publogs condense --format table round-214233/runtime.log
  publogs classify game.log perf-12345.json sql.log
  publogs rounds --format table`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.publogs/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().String("color", "auto", "colour output (auto, always, never)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("logs", "", "raw log archive root (overrides raw_logs_path)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("raw_logs_path", rootCmd.PersistentFlags().Lookup("logs"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(home, ".publogs"))
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PUBLOGS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())
	viper.SetDefault("format", "text")
	viper.SetDefault("color", "auto")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}
}

// loadConfig reads the validated configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newOutput returns a Writer for cmd honouring --format and --color.
func newOutput(cmd *cobra.Command) *output.Writer {
	w := output.New(cmd.OutOrStdout(), output.ParseFormat(viper.GetString("format")))
	w.SetColor(output.ParseColorMode(viper.GetString("color")))
	return w
}
