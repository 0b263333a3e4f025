package redact

import "strings"

// Scrubber replaces player identifiers with fixed placeholders.
//
// Unlike a correlating redactor, a Scrubber keeps no memory of what it has
// replaced: the same input always yields the same output and concurrent
// callers share nothing but the compiled patterns.
type Scrubber struct {
	patterns []IdentifierPattern
}

// NewScrubber creates a Scrubber using the named patterns.
// If no known names are given, DefaultPatterns are used.
func NewScrubber(patternNames ...string) *Scrubber {
	patterns := GetPatterns(patternNames)
	if len(patterns) == 0 {
		patterns = GetPatterns(DefaultPatterns())
	}
	return &Scrubber{patterns: patterns}
}

// Scrub replaces every identifier in text with its placeholder.
//
// Example:
//
//	"Login from 192.168.1.1 (CID: 1234567890)" → "Login from -censored(ip)- (CID: -censored(cid)-)"
func (s *Scrubber) Scrub(text string) string {
	result, _ := s.ScrubAndCount(text)
	return result
}

// ScrubAndCount scrubs text and returns the number of replacements made.
func (s *Scrubber) ScrubAndCount(text string) (string, int) {
	count := 0
	result := text
	for _, pattern := range s.patterns {
		var n int
		result, n = pattern.replace(result)
		count += n
	}
	return result, count
}

func (p IdentifierPattern) replace(text string) (string, int) {
	matches := p.Regex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last, count := 0, 0
	for _, m := range matches {
		if p.Valid != nil && !p.Valid(text, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.Write(p.Regex.ExpandString(nil, p.Replacement, text, m))
		last = m[1]
		count++
	}
	if count == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), count
}

var defaultScrubber = NewScrubber()

// ScrubIdentifiers applies the default patterns to text.
func ScrubIdentifiers(text string) string {
	return defaultScrubber.Scrub(text)
}
