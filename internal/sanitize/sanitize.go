package sanitize

import (
	"fmt"
	"log/slog"

	"github.com/bimmerbailey/publogs/internal/gamelog"
	"github.com/bimmerbailey/publogs/internal/redact"
	"github.com/bimmerbailey/publogs/internal/runtimelog"
)

// Sanitizer runs the transform a Decision calls for.
type Sanitizer struct {
	scrubber         *redact.Scrubber
	scrubPassthrough bool
	logger           *slog.Logger
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithScrubber replaces the default identifier scrubber.
func WithScrubber(s *redact.Scrubber) Option {
	return func(san *Sanitizer) {
		san.scrubber = s
	}
}

// WithScrubPassthrough also scrubs identifiers from pass-through files.
func WithScrubPassthrough(enabled bool) Option {
	return func(san *Sanitizer) {
		san.scrubPassthrough = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(san *Sanitizer) {
		san.logger = logger
	}
}

// New creates a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		scrubber: redact.NewScrubber(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply transforms raw into the public content for d.
//
// Game and runtime logs have identifiers scrubbed before their own
// transform. Condensed views return the text or JSON rendering according to
// d.PublicName.
func (s *Sanitizer) Apply(d Decision, raw []byte) ([]byte, error) {
	text := string(raw)

	switch d.Kind {
	case GameLog:
		out, err := gamelog.Censor(s.scrub(d, text))
		if err != nil {
			return nil, fmt.Errorf("censoring %s: %w", d.SourceName, err)
		}
		return []byte(out), nil

	case RuntimeLog:
		if d.Virtual {
			return s.condense(d, s.scrub(d, text))
		}
		out, err := runtimelog.Scrub(s.scrub(d, text))
		if err != nil {
			return nil, fmt.Errorf("scrubbing %s: %w", d.SourceName, err)
		}
		return []byte(out), nil

	default:
		if !s.scrubPassthrough {
			return raw, nil
		}
		return []byte(s.scrub(d, text)), nil
	}
}

func (s *Sanitizer) scrub(d Decision, text string) string {
	out, n := s.scrubber.ScrubAndCount(text)
	if n > 0 {
		s.logger.Debug("scrubbed identifiers", "file", d.SourceName, "count", n)
	}
	return out
}

func (s *Sanitizer) condense(d Decision, text string) ([]byte, error) {
	condensed, err := runtimelog.Condense(text)
	if err != nil {
		return nil, fmt.Errorf("condensing %s: %w", d.SourceName, err)
	}

	s.logger.Debug("condensed runtime log",
		"total", condensed.Report.Total,
		"unique", condensed.Report.Unique)

	if d.PublicName == CondensedJSON {
		return condensed.Report.JSON()
	}
	return []byte(condensed.Text), nil
}
