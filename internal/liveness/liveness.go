// Package liveness provides the sources a roundguard.Guard can ask about
// whether a round is still being played.
//
// Every source errs on the side of "active": a missing answer is an error,
// and the guard treats errors as ongoing.
package liveness

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bimmerbailey/publogs/internal/roundguard"
)

// Source names accepted by New.
const (
	SourceSentinel   = "sentinel"
	SourceWindow     = "window"
	SourceServerInfo = "serverinfo"
	SourceStatusFile = "status_file"
)

// Options selects and configures a source.
type Options struct {
	Source string

	SentinelFile  string
	SentinelMeans string

	Window time.Duration

	ServerInfoURL     string
	ServerInfoRefresh time.Duration
	HTTPClient        *http.Client

	StatusFilePath string

	Logger *slog.Logger
}

// New builds the source named by opts.Source.
func New(opts Options) (roundguard.Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Source {
	case SourceSentinel, "":
		return NewSentinel(opts.SentinelFile, opts.SentinelMeans)
	case SourceWindow:
		return NewWindow(opts.Window), nil
	case SourceServerInfo:
		if opts.ServerInfoURL == "" {
			return nil, fmt.Errorf("serverinfo source needs a url")
		}
		return NewServerInfo(opts.ServerInfoURL, opts.ServerInfoRefresh, opts.HTTPClient, logger), nil
	case SourceStatusFile:
		if opts.StatusFilePath == "" {
			return nil, fmt.Errorf("status_file source needs a path")
		}
		return NewStatusFile(opts.StatusFilePath, logger), nil
	default:
		return nil, fmt.Errorf("unknown liveness source %q", opts.Source)
	}
}
