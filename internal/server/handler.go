package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bimmerbailey/publogs/internal/metrics"
	"github.com/bimmerbailey/publogs/internal/roundguard"
	"github.com/bimmerbailey/publogs/internal/sanitize"
)

// Cache-Control values. Finished rounds never change, so their content can
// be cached forever; listings above round level gain new rounds.
const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheShort     = "public, max-age=60"
	cacheNone      = "no-store"
)

const notFoundMessage = "couldn't find that path"

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	requested, ok := s.resolve(r.URL.Path)
	if !ok {
		s.logger.Warn("attempted path traversal", "path", r.URL.Path)
		http.Error(w, "attempted path traversal", http.StatusForbidden)
		return
	}

	if s.guard.IsOngoing(r.Context(), requested) {
		s.logger.Debug("blocking access to ongoing round", "path", requested)
		s.notFound(w)
		return
	}

	if d, ok := sanitize.CondensedSource(filepath.Base(requested)); ok {
		s.serveFile(w, r, filepath.Join(filepath.Dir(requested), d.SourceName), d)
		return
	}

	info, err := os.Stat(requested)
	if err != nil {
		if !isNotFound(err) {
			s.fail(w, r, http.StatusInternalServerError, "couldn't get metadata of path", err)
			return
		}
		s.serveAlias(w, r, requested)
		return
	}

	switch {
	case info.IsDir():
		s.serveListing(w, r, requested)
	case info.Mode().IsRegular():
		d, ok := sanitize.Classify(info.Name())
		if !ok {
			s.notFound(w)
			return
		}
		s.serveFile(w, r, requested, d)
	default:
		http.Error(w, "tried to access weird file", http.StatusBadRequest)
	}
}

// serveAlias answers a request for a missing file whose name is the public
// name of a renamed log, e.g. game.txt for game.log.
func (s *Server) serveAlias(w http.ResponseWriter, r *http.Request, requested string) {
	source, ok := sanitize.ResolvePublicName(filepath.Base(requested))
	if !ok {
		s.notFound(w)
		return
	}

	d, _ := sanitize.Classify(source)
	s.serveFile(w, r, filepath.Join(filepath.Dir(requested), source), d)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path string, d sanitize.Decision) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if isNotFound(err) {
			s.notFound(w)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, "couldn't read file", err)
		return
	}

	start := time.Now()
	body, err := s.sanitizer.Apply(d, raw)
	metrics.SanitizeDuration.WithLabelValues(d.Kind.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "couldn't sanitize file", err)
		return
	}

	w.Header().Set("Content-Type", d.ContentType())
	w.Header().Set("Cache-Control", s.cachePolicy(path))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// cachePolicy allows long-lived caching for anything inside a round. By the
// time a path in a round is served, the round has finished.
func (s *Server) cachePolicy(path string) string {
	if _, found, err := roundguard.RoundFromPath(s.root, s.guard.Prefix(), path); found && err == nil {
		return cacheImmutable
	}
	return cacheShort
}

func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheNone)
	http.Error(w, notFoundMessage, http.StatusNotFound)
}

func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// fail logs err and answers with message and a report id that ties the
// response to the log line and the error report.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	reportID := captureError(r, err, message)
	s.logger.Error(message,
		"error", err,
		"path", r.URL.Path,
		"report_id", reportID)

	w.Header().Set("Cache-Control", cacheNone)
	http.Error(w, fmt.Sprintf("%s\nplease report this error with the url you tried and report id %s", message, reportID), status)
}
