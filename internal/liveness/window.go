package liveness

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/bimmerbailey/publogs/internal/roundguard"
)

// DefaultWindow is how long after its last write a round stays protected.
const DefaultWindow = 6 * time.Hour

// Window treats a round as active until nothing in its directory has
// changed for the protection window.
type Window struct {
	window time.Duration
	now    func() time.Time
}

// NewWindow creates a Window; a non-positive window means DefaultWindow.
func NewWindow(window time.Duration) *Window {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Window{window: window, now: time.Now}
}

// RoundActive implements roundguard.Source.
func (w *Window) RoundActive(ctx context.Context, round roundguard.Round) (bool, error) {
	newest, err := newestModTime(ctx, round.Dir)
	if err != nil {
		return false, fmt.Errorf("scanning round %d: %w", round.ID, err)
	}
	return w.now().Sub(newest) < w.window, nil
}

func newestModTime(ctx context.Context, dir string) (time.Time, error) {
	var newest time.Time

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})

	return newest, err
}
