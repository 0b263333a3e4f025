// Package roundguard withholds logs of rounds that are still being played.
//
// A Guard answers "is this path inside an ongoing round?" from a per-round
// cache, asking a Source only when an entry is missing or stale. Any failure
// to get an answer counts as ongoing.
package roundguard

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bimmerbailey/publogs/internal/metrics"
)

// State is what the guard knows about a round.
type State int

const (
	Unknown State = iota
	Ongoing
	Finished
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Source reports whether a round is still active.
type Source interface {
	RoundActive(ctx context.Context, round Round) (bool, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, round Round) (bool, error)

// RoundActive calls f.
func (f SourceFunc) RoundActive(ctx context.Context, round Round) (bool, error) {
	return f(ctx, round)
}

// Record is the cached state of one round.
type Record struct {
	RoundID     int64
	Dir         string
	State       State
	RefreshedAt time.Time
}

// Defaults for Guard options.
const (
	DefaultTTL     = 30 * time.Second
	DefaultTimeout = 5 * time.Second
)

// Guard caches round liveness.
type Guard struct {
	root    string
	prefix  string
	source  Source
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	records map[int64]Record

	refreshes singleflight.Group
}

// Option configures a Guard.
type Option func(*Guard)

// WithPrefix sets the round directory prefix.
func WithPrefix(prefix string) Option {
	return func(g *Guard) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// WithTTL sets how long an Ongoing or Unknown answer is trusted.
func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithTimeout bounds each source lookup and each caller's wait for one.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Guard) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// New creates a Guard for the archive at root.
func New(root string, source Source, opts ...Option) *Guard {
	g := &Guard{
		root:    root,
		prefix:  DefaultPrefix,
		source:  source,
		ttl:     DefaultTTL,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		now:     time.Now,
		records: make(map[int64]Record),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root returns the archive root the guard resolves paths against.
func (g *Guard) Root() string {
	return g.root
}

// Prefix returns the round directory prefix.
func (g *Guard) Prefix() string {
	return g.prefix
}

// IsOngoing reports whether path lies inside a round that may still be
// running. Paths outside any round directory are never ongoing; paths in a
// round directory with a bad id always are.
func (g *Guard) IsOngoing(ctx context.Context, path string) bool {
	round, found, err := RoundFromPath(g.root, g.prefix, path)
	if err != nil {
		g.logger.Debug("withholding path with bad round id", "path", path, "error", err)
		metrics.GuardLookups.WithLabelValues("failed_closed").Inc()
		return true
	}
	if !found {
		metrics.GuardLookups.WithLabelValues("no_round").Inc()
		return false
	}
	return g.State(ctx, round) != Finished
}

// State returns the state of round, refreshing it from the source if the
// cached entry is missing or stale. Concurrent refreshes of one round share
// a single lookup. If ctx ends or the lookup outlasts the timeout, State
// returns Unknown; the lookup carries on and still updates the cache.
func (g *Guard) State(ctx context.Context, round Round) State {
	if record, ok := g.cached(round.ID); ok {
		metrics.GuardLookups.WithLabelValues("cached").Inc()
		return record.State
	}

	ch := g.refreshes.DoChan(strconv.FormatInt(round.ID, 10), func() (any, error) {
		return g.refresh(round), nil
	})

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		metrics.GuardLookups.WithLabelValues("refreshed").Inc()
		return result.Val.(State)
	case <-ctx.Done():
		metrics.GuardLookups.WithLabelValues("failed_closed").Inc()
		return Unknown
	case <-timer.C:
		g.logger.Warn("liveness lookup timed out", "round", round.ID, "timeout", g.timeout)
		metrics.GuardLookups.WithLabelValues("failed_closed").Inc()
		return Unknown
	}
}

func (g *Guard) cached(id int64) (Record, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	record, ok := g.records[id]
	if !ok {
		return Record{}, false
	}
	if record.State == Finished || g.now().Sub(record.RefreshedAt) < g.ttl {
		return record, true
	}
	return Record{}, false
}

// refresh runs detached from any caller so an abandoned lookup still lands
// in the cache.
func (g *Guard) refresh(round Round) State {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	start := time.Now()
	active, err := g.source.RoundActive(ctx, round)
	metrics.GuardRefreshDuration.Observe(time.Since(start).Seconds())
	if err == nil && ctx.Err() != nil {
		// An answer that arrives after the deadline is not trusted.
		err = ctx.Err()
	}

	state := Finished
	switch {
	case err != nil:
		g.logger.Warn("liveness lookup failed", "round", round.ID, "error", err)
		state = Unknown
	case active:
		state = Ongoing
	}

	return g.store(round, state)
}

// store records state for round and returns the state now cached. Finished
// is never replaced.
func (g *Guard) store(round Round, state State) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	previous, existed := g.records[round.ID]
	if existed && previous.State == Finished {
		return Finished
	}

	g.records[round.ID] = Record{
		RoundID:     round.ID,
		Dir:         round.Dir,
		State:       state,
		RefreshedAt: g.now(),
	}

	if existed {
		metrics.GuardRounds.WithLabelValues(previous.State.String()).Dec()
	}
	metrics.GuardRounds.WithLabelValues(state.String()).Inc()

	if state == Finished {
		g.logger.Info("round finished", "round", round.ID)
	}
	return state
}

// invalidate drops the cached state of round id unless it is Finished.
func (g *Guard) invalidate(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropLocked(id)
}

// InvalidateAll drops every cached state that is not Finished.
func (g *Guard) InvalidateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id := range g.records {
		g.dropLocked(id)
	}
}

func (g *Guard) dropLocked(id int64) {
	record, ok := g.records[id]
	if !ok || record.State == Finished {
		return
	}
	delete(g.records, id)
	metrics.GuardRounds.WithLabelValues(record.State.String()).Dec()
}

// Snapshot returns every cached record ordered by round id.
func (g *Guard) Snapshot() []Record {
	g.mu.RLock()
	records := make([]Record, 0, len(g.records))
	for _, record := range g.records {
		records = append(records, record)
	}
	g.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].RoundID < records[j].RoundID
	})
	return records
}
