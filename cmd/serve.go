package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/publogs/internal/config"
	"github.com/bimmerbailey/publogs/internal/liveness"
	"github.com/bimmerbailey/publogs/internal/metrics"
	"github.com/bimmerbailey/publogs/internal/redact"
	"github.com/bimmerbailey/publogs/internal/roundguard"
	"github.com/bimmerbailey/publogs/internal/sanitize"
	"github.com/bimmerbailey/publogs/internal/server"
)

const drainTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sanitized log archive over HTTP",
	Long: `Serve the raw log archive over HTTP. Files are sanitized on every
request; rounds still in progress are reported as missing until the guard's
liveness source says they have finished.

Examples:
  publogs serve
  publogs serve --address 127.0.0.1:8080 --logs /srv/ss13/logs
  PUBLOGS_GUARD_SOURCE=window publogs serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("address", "a", "", "listen address (overrides address)")
	serveCmd.Flags().String("metrics-address", "", "Prometheus listen address (overrides metrics.address)")

	_ = viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("metrics.address", serveCmd.Flags().Lookup("metrics-address"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	if err := server.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, version); err != nil {
		logger.Warn("error reporting disabled", "error", err)
	}
	defer server.FlushSentry()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, err := newGuard(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sanitizer := sanitize.New(
		sanitize.WithScrubber(redact.NewScrubber(cfg.Sanitize.Patterns...)),
		sanitize.WithScrubPassthrough(cfg.Sanitize.ScrubPassthrough),
		sanitize.WithLogger(logger),
	)

	srv := server.New(guard, sanitizer, logger, server.Options{
		CORS:              cfg.HTTP.CORS,
		Gzip:              cfg.HTTP.Gzip,
		RequestsPerSecond: cfg.HTTP.RateLimit.RequestsPerSecond,
		Burst:             cfg.HTTP.RateLimit.Burst,
	})
	defer srv.Close()

	if cfg.Metrics.Address != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.Serve(ctx, metricsSrv, drainTimeout, logger.With("listener", "metrics")); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("serving log archive",
		"root", guard.Root(),
		"guard_source", cfg.Guard.Source,
		"version", version)

	return server.Serve(ctx, &http.Server{
		Addr:              cfg.Address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, drainTimeout, logger)
}

// newGuard builds the configured liveness source and the guard over it. A
// status file source is watched until ctx ends, dropping cached states on
// every change.
func newGuard(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*roundguard.Guard, error) {
	root, err := filepath.Abs(cfg.RawLogsPath)
	if err != nil {
		return nil, fmt.Errorf("resolving raw_logs_path: %w", err)
	}

	source, err := liveness.New(liveness.Options{
		Source:            cfg.Guard.Source,
		SentinelFile:      cfg.Guard.Sentinel.File,
		SentinelMeans:     cfg.Guard.Sentinel.Means,
		Window:            cfg.Duration(cfg.Guard.Window.Duration),
		ServerInfoURL:     cfg.Guard.ServerInfo.URL,
		ServerInfoRefresh: cfg.Duration(cfg.Guard.ServerInfo.Refresh),
		StatusFilePath:    cfg.Guard.StatusFile.Path,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building liveness source: %w", err)
	}

	guard := roundguard.New(root, source,
		roundguard.WithPrefix(cfg.RoundDirPrefix),
		roundguard.WithTTL(cfg.Duration(cfg.Guard.TTL)),
		roundguard.WithTimeout(cfg.Duration(cfg.Guard.Timeout)),
		roundguard.WithLogger(logger),
	)

	if statusFile, ok := source.(*liveness.StatusFile); ok {
		go func() {
			if err := statusFile.Watch(ctx, guard.InvalidateAll); err != nil {
				logger.Error("status file watch stopped", "error", err)
			}
		}()
	}

	return guard, nil
}
