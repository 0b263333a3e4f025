// Package gamelog censors game.log for public release.
//
// Every line is categorised by its leading tag and then either kept, reduced
// to its tag, or replaced entirely:
//
//	[2023-11-05 18:30:09.002] GAME-SAY: Urist "hello"     kept
//	[2023-11-05 18:30:13.001] ADMIN-HELP: help me         → [...] ADMIN-HELP: -censored(asay/apm/ahelp)-
//	Urist wrote something odd                              → -censored(no_category_colon)-
//
// Anything the censor does not recognise is replaced, so the output never
// carries unreviewed text.
package gamelog

import (
	"strings"

	"github.com/bimmerbailey/publogs/internal/redact"
)

// Category is the disclosure class of a game log line.
type Category int

const (
	Uncategorized Category = iota
	Public
	Private
)

// String returns the string representation of a Category.
func (c Category) String() string {
	switch c {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "uncategorized"
	}
}

// Redaction markers. PrivateMarker keeps its line's tag; the others replace
// the whole line.
const (
	PrivateMarker               = "-censored(asay/apm/ahelp)-"
	NoSeparatorMarker           = "-censored(no_category_colon)-"
	UnknownCategoryMarker       = "-censored(misc)-"
	UnterminatedTimestampMarker = "-censored(no_ts_start)-"
)

// roundBanner opens every game.log; it has no tag but is public.
const roundBanner = "Starting up round ID"

// Line is one parsed game log line.
type Line struct {
	Prefix    string // "[timestamp] " as written, or empty
	Tag       string
	Category  Category
	Remainder string // text after "TAG:"
	Marker    string // generic marker for Uncategorized lines
	raw       string
}

// ParseLine splits line into its timestamp prefix, tag and remainder and
// assigns a Category. It never fails: lines that cannot be understood are
// Uncategorized with the marker explaining why.
func ParseLine(line string) Line {
	parsed := Line{raw: line}

	body := line
	if strings.HasPrefix(line, "[") {
		end := strings.IndexByte(line, ']')
		if end < 0 {
			parsed.Marker = UnterminatedTimestampMarker
			return parsed
		}
		parsed.Prefix = line[:end+1]
		body = line[end+1:]
		if strings.HasPrefix(body, " ") {
			parsed.Prefix += " "
			body = body[1:]
		}
	}

	if strings.HasPrefix(body, roundBanner) {
		parsed.Category = Public
		parsed.Remainder = body
		return parsed
	}

	sep := strings.IndexByte(body, ':')
	if sep <= 0 {
		parsed.Marker = NoSeparatorMarker
		return parsed
	}

	parsed.Tag = body[:sep]
	parsed.Remainder = body[sep+1:]
	parsed.Category = CategoryOf(parsed.Tag)
	if parsed.Category == Uncategorized {
		parsed.Marker = UnknownCategoryMarker
	}

	return parsed
}

// Censored renders the public form of the line.
func (l Line) Censored() string {
	switch l.Category {
	case Public:
		return l.raw
	case Private:
		return l.Prefix + l.Tag + ": " + PrivateMarker
	default:
		return l.Marker
	}
}

// CensorLine returns the public form of a single line.
func CensorLine(line string) string {
	return ParseLine(line).Censored()
}

// Censor returns the public form of a whole game log. The output has exactly
// as many lines as raw, in the same order. The only error is
// redact.ErrNotText, for input that is not valid UTF-8.
func Censor(raw string) (string, error) {
	return redact.MapLines(raw, CensorLine)
}

// IsGenericMarker reports whether s is one of the whole-line markers used for
// uncategorized lines.
func IsGenericMarker(s string) bool {
	switch s {
	case NoSeparatorMarker, UnknownCategoryMarker, UnterminatedTimestampMarker:
		return true
	}
	return false
}
