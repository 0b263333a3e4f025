package liveness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/valyala/fastjson"

	"github.com/bimmerbailey/publogs/internal/roundguard"
)

// DefaultServerInfoRefresh is how long a fetched status document is reused.
const DefaultServerInfoRefresh = 30 * time.Second

// maxStatusSize caps the status document read from the network.
const maxStatusSize = 1 << 20

// ServerInfo asks the game servers' public status endpoint which rounds are
// running.
type ServerInfo struct {
	url     string
	refresh time.Duration
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
	parsers fastjson.ParserPool

	mu      sync.Mutex
	rounds  ActiveRounds
	fetched time.Time
}

// NewServerInfo creates a ServerInfo source for url.
func NewServerInfo(url string, refresh time.Duration, client *http.Client, logger *slog.Logger) *ServerInfo {
	if refresh <= 0 {
		refresh = DefaultServerInfoRefresh
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ServerInfo{
		url:     url,
		refresh: refresh,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// RoundActive implements roundguard.Source.
func (s *ServerInfo) RoundActive(ctx context.Context, round roundguard.Round) (bool, error) {
	rounds, err := s.activeRounds(ctx)
	if err != nil {
		return false, err
	}
	return rounds.Contains(round.ID), nil
}

func (s *ServerInfo) activeRounds(ctx context.Context) (ActiveRounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetched.IsZero() && s.now().Sub(s.fetched) < s.refresh {
		return s.rounds, nil
	}

	rounds, err := s.fetch(ctx)
	if err != nil {
		return ActiveRounds{}, err
	}

	s.rounds = rounds
	s.fetched = s.now()
	s.logger.Debug("fetched server info", "url", s.url, "rounds", rounds.Len())
	return rounds, nil
}

func (s *ServerInfo) fetch(ctx context.Context) (ActiveRounds, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return ActiveRounds{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ActiveRounds{}, fmt.Errorf("fetching server info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ActiveRounds{}, fmt.Errorf("fetching server info: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusSize))
	if err != nil {
		return ActiveRounds{}, fmt.Errorf("reading server info: %w", err)
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)
	return ParseActiveRounds(p, body)
}
