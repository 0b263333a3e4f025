package liveness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/valyala/fastjson"

	"github.com/bimmerbailey/publogs/internal/roundguard"
)

// StatusFile reads active rounds from a local JSON document in the
// serverinfo shape, kept current by the game server.
type StatusFile struct {
	path    string
	logger  *slog.Logger
	parsers fastjson.ParserPool

	mu     sync.RWMutex
	rounds ActiveRounds
	err    error
	loaded bool
}

// NewStatusFile creates a StatusFile for path. The file is read on first use.
func NewStatusFile(path string, logger *slog.Logger) *StatusFile {
	return &StatusFile{
		path:   filepath.Clean(path),
		logger: logger,
	}
}

// Load reads the file again. A failed load is remembered and answered as an
// error until a later load succeeds.
func (s *StatusFile) Load() error {
	rounds, err := s.read()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds, s.err, s.loaded = rounds, err, true
	return err
}

func (s *StatusFile) read() (ActiveRounds, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ActiveRounds{}, fmt.Errorf("reading status file: %w", err)
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)
	return ParseActiveRounds(p, data)
}

// RoundActive implements roundguard.Source.
func (s *StatusFile) RoundActive(ctx context.Context, round roundguard.Round) (bool, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		s.Load()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return false, s.err
	}
	return s.rounds.Contains(round.ID), nil
}

// Watch reloads the file whenever it changes and then calls onChange. It
// blocks until ctx is cancelled or the watcher fails.
//
// The parent directory is watched so that files replaced by rename are
// still seen.
func (s *StatusFile) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if filepath.Clean(event.Name) != s.path || event.Op == fsnotify.Chmod {
				continue
			}

			if err := s.Load(); err != nil {
				s.logger.Warn("status file reload failed", "path", s.path, "error", err)
			} else {
				s.logger.Debug("status file reloaded", "path", s.path)
			}
			if onChange != nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
