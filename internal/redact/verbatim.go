package redact

import (
	"regexp"
)

// StringOutputMarker replaces runtime lines that echo a quoted string.
const StringOutputMarker = "-censored (string output)"

// An introductory phrase from the interpreter followed by a quoted string
// running to the end of the line. The quoted text can be anything a player
// typed, so the whole line goes.
var verbatimStringRegex = regexp.MustCompile(`^.*(?:Cannot read|Cannot execute|Cannot modify) ".*$`)

// ScrubVerbatimLine returns StringOutputMarker if line echoes a quoted
// string, and line unchanged otherwise.
func ScrubVerbatimLine(line string) string {
	if verbatimStringRegex.MatchString(line) {
		return StringOutputMarker
	}
	return line
}

// IsVerbatimMarker reports whether line is the output of a verbatim scrub.
func IsVerbatimMarker(line string) bool {
	return line == StringOutputMarker
}
