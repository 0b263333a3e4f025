package liveness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bimmerbailey/publogs/internal/roundguard"
)

// DefaultSentinelFile is written by the game server when a round ends.
const DefaultSentinelFile = "round_end_data.json"

// What the presence of a sentinel file means.
const (
	MeansFinished = "finished"
	MeansOngoing  = "ongoing"
)

// Sentinel decides liveness from a marker file in the round directory.
type Sentinel struct {
	file    string
	ongoing bool // the file marks a running round rather than a finished one
}

// NewSentinel creates a Sentinel. means is MeansFinished (the default) or
// MeansOngoing.
func NewSentinel(file, means string) (*Sentinel, error) {
	if file == "" {
		file = DefaultSentinelFile
	}
	if filepath.Base(file) != file {
		return nil, fmt.Errorf("sentinel file %q must be a plain file name", file)
	}

	switch means {
	case MeansFinished, "":
		return &Sentinel{file: file}, nil
	case MeansOngoing:
		return &Sentinel{file: file, ongoing: true}, nil
	default:
		return nil, fmt.Errorf("sentinel means %q: want %s or %s", means, MeansFinished, MeansOngoing)
	}
}

// RoundActive implements roundguard.Source.
func (s *Sentinel) RoundActive(ctx context.Context, round roundguard.Round) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(round.Dir, s.file))
	switch {
	case err == nil:
		return s.ongoing, nil
	case errors.Is(err, fs.ErrNotExist):
		return !s.ongoing, nil
	default:
		return false, fmt.Errorf("checking sentinel for round %d: %w", round.ID, err)
	}
}
