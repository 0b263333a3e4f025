// Package config provides configuration types and helpers for publogs.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bimmerbailey/publogs/internal/redact"
)

// ErrInvalid is wrapped by every validation failure from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application-wide configuration.
type Config struct {
	Address        string         `mapstructure:"address"`
	RawLogsPath    string         `mapstructure:"raw_logs_path"`
	RoundDirPrefix string         `mapstructure:"round_dir_prefix"`
	LogLevel       string         `mapstructure:"log_level"`
	LogFormat      string         `mapstructure:"log_format"` // text or json
	Verbose        bool           `mapstructure:"verbose"`
	Guard          GuardConfig    `mapstructure:"guard"`
	HTTP           HTTPConfig     `mapstructure:"http"`
	Metrics        MetricsConfig  `mapstructure:"metrics"`
	Sentry         SentryConfig   `mapstructure:"sentry"`
	Sanitize       SanitizeConfig `mapstructure:"sanitize"`
}

// GuardConfig holds the ongoing-round guard settings.
type GuardConfig struct {
	// Source selects the liveness source: "sentinel", "window", "serverinfo", "status_file"
	Source string `mapstructure:"source"`

	// Durations accept Go syntax plus days, e.g. "30s", "6h", "1d"
	TTL     string `mapstructure:"ttl"`
	Timeout string `mapstructure:"timeout"`

	Sentinel   SentinelConfig   `mapstructure:"sentinel"`
	Window     WindowConfig     `mapstructure:"window"`
	ServerInfo ServerInfoConfig `mapstructure:"serverinfo"`
	StatusFile StatusFileConfig `mapstructure:"status_file"`
}

// SentinelConfig configures the sentinel file source.
type SentinelConfig struct {
	File  string `mapstructure:"file"`  // File name inside the round directory
	Means string `mapstructure:"means"` // "finished" or "ongoing"
}

// WindowConfig configures the protection window source.
type WindowConfig struct {
	Duration string `mapstructure:"duration"`
}

// ServerInfoConfig configures the remote status source.
type ServerInfoConfig struct {
	URL     string `mapstructure:"url"`
	Refresh string `mapstructure:"refresh"`
}

// StatusFileConfig configures the local status file source.
type StatusFileConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig holds HTTP serving options.
type HTTPConfig struct {
	CORS      bool            `mapstructure:"cors"`
	Gzip      bool            `mapstructure:"gzip"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits requests per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// MetricsConfig holds the Prometheus listener. Empty Address disables it.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// SentryConfig holds error reporting settings. Empty DSN disables it.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// SanitizeConfig holds sanitization options.
type SanitizeConfig struct {
	// ScrubPassthrough also removes identifiers from files published as-is
	ScrubPassthrough bool `mapstructure:"scrub_passthrough"`

	// Patterns names the identifier patterns: ipv4, ipv6, cid
	Patterns []string `mapstructure:"patterns"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("address", "0.0.0.0:3000")
	v.SetDefault("raw_logs_path", "./logs")
	v.SetDefault("round_dir_prefix", "round-")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("verbose", false)

	v.SetDefault("guard.source", "sentinel")
	v.SetDefault("guard.ttl", "30s")
	v.SetDefault("guard.timeout", "5s")
	v.SetDefault("guard.sentinel.file", "round_end_data.json")
	v.SetDefault("guard.sentinel.means", "finished")
	v.SetDefault("guard.window.duration", "6h")
	v.SetDefault("guard.serverinfo.url", "")
	v.SetDefault("guard.serverinfo.refresh", "30s")
	v.SetDefault("guard.status_file.path", "")

	v.SetDefault("http.cors", true)
	v.SetDefault("http.gzip", true)
	v.SetDefault("http.rate_limit.requests_per_second", 0)
	v.SetDefault("http.rate_limit.burst", 20)

	v.SetDefault("metrics.address", "")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")

	v.SetDefault("sanitize.scrub_passthrough", false)
	v.SetDefault("sanitize.patterns", []string{"ipv6", "ipv4", "cid"})
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later, at request time.
func (c *Config) Validate() error {
	info, err := os.Stat(c.RawLogsPath)
	if err != nil {
		return fmt.Errorf("%w: raw_logs_path: %v", ErrInvalid, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: raw_logs_path %s is not a directory", ErrInvalid, c.RawLogsPath)
	}
	if c.RoundDirPrefix == "" {
		return fmt.Errorf("%w: round_dir_prefix is empty", ErrInvalid)
	}

	switch c.Guard.Source {
	case "sentinel", "window", "status_file":
	case "serverinfo":
		if c.Guard.ServerInfo.URL == "" {
			return fmt.Errorf("%w: guard.serverinfo.url is required for the serverinfo source", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown guard.source %q", ErrInvalid, c.Guard.Source)
	}
	if c.Guard.Source == "status_file" && c.Guard.StatusFile.Path == "" {
		return fmt.Errorf("%w: guard.status_file.path is required for the status_file source", ErrInvalid)
	}

	for key, value := range map[string]string{
		"guard.ttl":                c.Guard.TTL,
		"guard.timeout":            c.Guard.Timeout,
		"guard.window.duration":    c.Guard.Window.Duration,
		"guard.serverinfo.refresh": c.Guard.ServerInfo.Refresh,
	} {
		if _, err := ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q: want text or json", ErrInvalid, c.LogFormat)
	}

	for _, name := range c.Sanitize.Patterns {
		if _, ok := redact.BuiltInPatterns[name]; !ok {
			return fmt.Errorf("%w: sanitize.patterns: unknown pattern %q", ErrInvalid, name)
		}
	}

	if c.HTTP.RateLimit.RequestsPerSecond < 0 || c.HTTP.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: http.rate_limit values must not be negative", ErrInvalid)
	}
	return nil
}

// Duration parses a validated duration field.
func (c *Config) Duration(value string) time.Duration {
	d, _ := ParseDuration(value)
	return d
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return slog.LevelDebug, nil
	case "info", "inf", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger builds the process logger. verbose forces debug level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(c.LogLevel)
	if c.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
