package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(t *testing.T, root string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.Set("raw_logs_path", root)
	return v
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(newViper(t, root))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RawLogsPath != root {
		t.Errorf("RawLogsPath = %q", cfg.RawLogsPath)
	}
	if cfg.RoundDirPrefix != "round-" {
		t.Errorf("RoundDirPrefix = %q", cfg.RoundDirPrefix)
	}
	if cfg.Guard.Source != "sentinel" {
		t.Errorf("Guard.Source = %q", cfg.Guard.Source)
	}
	if got := cfg.Duration(cfg.Guard.TTL); got != 30*time.Second {
		t.Errorf("guard ttl = %v, want 30s", got)
	}
	if got := cfg.Duration(cfg.Guard.Window.Duration); got != 6*time.Hour {
		t.Errorf("window = %v, want 6h", got)
	}
	if !cfg.HTTP.Gzip || !cfg.HTTP.CORS {
		t.Errorf("HTTP = %+v, want gzip and cors on", cfg.HTTP)
	}
	if len(cfg.Sanitize.Patterns) != 3 {
		t.Errorf("Sanitize.Patterns = %v", cfg.Sanitize.Patterns)
	}
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
raw_logs_path: ` + root + `
guard:
  source: serverinfo
  ttl: 1m
  serverinfo:
    url: https://example.org/serverinfo.json
http:
  rate_limit:
    requests_per_second: 5
    burst: 10
sanitize:
  scrub_passthrough: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Guard.Source != "serverinfo" || cfg.Guard.ServerInfo.URL != "https://example.org/serverinfo.json" {
		t.Errorf("Guard = %+v", cfg.Guard)
	}
	if cfg.Duration(cfg.Guard.TTL) != time.Minute {
		t.Errorf("ttl = %q", cfg.Guard.TTL)
	}
	if cfg.HTTP.RateLimit.RequestsPerSecond != 5 || cfg.HTTP.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v", cfg.HTTP.RateLimit)
	}
	if !cfg.Sanitize.ScrubPassthrough {
		t.Error("ScrubPassthrough = false")
	}
	// Unset keys keep their defaults.
	if cfg.Guard.Timeout != "5s" {
		t.Errorf("Guard.Timeout = %q", cfg.Guard.Timeout)
	}
}

func TestLoadInvalid(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		set  map[string]any
	}{
		{name: "missing root", set: map[string]any{"raw_logs_path": filepath.Join(root, "nope")}},
		{name: "root is a file", set: map[string]any{"raw_logs_path": file}},
		{name: "unknown source", set: map[string]any{"guard.source": "tea-leaves"}},
		{name: "serverinfo without url", set: map[string]any{"guard.source": "serverinfo"}},
		{name: "status file without path", set: map[string]any{"guard.source": "status_file"}},
		{name: "bad ttl", set: map[string]any{"guard.ttl": "soon"}},
		{name: "bad level", set: map[string]any{"log_level": "loud"}},
		{name: "bad format", set: map[string]any{"log_format": "xml"}},
		{name: "empty prefix", set: map[string]any{"round_dir_prefix": ""}},
		{name: "negative rate", set: map[string]any{"http.rate_limit.requests_per_second": -1}},
		{name: "unknown pattern", set: map[string]any{"sanitize.patterns": []string{"ipv4", "email"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t, root)
			for key, value := range tt.set {
				v.Set(key, value)
			}

			_, err := Load(v)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "dbg", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "Warning", want: slog.LevelWarn},
		{input: "err", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "round", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"round":7`) {
		t.Errorf("unexpected JSON log output: %s", out)
	}

	buf.Reset()
	cfg = &Config{LogLevel: "error", LogFormat: "text", Verbose: true}
	cfg.NewLogger(&buf).Debug("verbose wins")
	if !strings.Contains(buf.String(), "verbose wins") {
		t.Errorf("verbose did not force debug: %q", buf.String())
	}
}
