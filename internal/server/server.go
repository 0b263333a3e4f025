// Package server publishes the sanitized log archive over HTTP.
//
// Every request path maps onto the archive root. Publishable files go out
// through their sanitizer; anything inside a round still being played is
// reported as missing.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/bimmerbailey/publogs/internal/roundguard"
	"github.com/bimmerbailey/publogs/internal/sanitize"
)

// Options configures the HTTP surface.
type Options struct {
	CORS              bool
	Gzip              bool
	RequestsPerSecond float64 // per client; zero disables rate limiting
	Burst             int
}

// Server serves one archive root.
type Server struct {
	root      string
	guard     *roundguard.Guard
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
	opts      Options
	limiter   *RateLimiter
}

// New creates a Server for the archive the guard watches.
func New(guard *roundguard.Guard, sanitizer *sanitize.Sanitizer, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		root:      filepath.Clean(guard.Root()),
		guard:     guard,
		sanitizer: sanitizer,
		logger:    logger,
		opts:      opts,
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = NewRateLimiter(opts.RequestsPerSecond, opts.Burst, time.Minute)
	}
	return s
}

// Handler returns the routed handler with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	if s.opts.CORS {
		r.Use(cors)
	}
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/*", s.handleGet)

	if s.opts.Gzip {
		return gzhttp.GzipHandler(r)
	}
	return r
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// resolve maps a URL path onto the archive. ok is false when the result
// would escape the root.
func (s *Server) resolve(urlPath string) (string, bool) {
	requested := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
	if requested == s.root || strings.HasPrefix(requested, s.root+string(filepath.Separator)) {
		return requested, true
	}
	return "", false
}

// Serve runs srv until ctx is cancelled, then drains connections for up to
// drainTimeout.
func Serve(ctx context.Context, srv *http.Server, drainTimeout time.Duration, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("draining connections", "timeout", drainTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return err
	}

	logger.Info("server stopped cleanly", "addr", srv.Addr)
	return nil
}
