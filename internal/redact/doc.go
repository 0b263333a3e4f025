// Package redact provides the stateless text transforms every public log
// passes through before it leaves the archive.
//
// Two primitives are exposed:
//
//  1. Identifier scrubbing - network addresses and player computer ids are
//     replaced with fixed placeholders (see BuiltInPatterns).
//  2. Verbatim string scrubbing - interpreter errors that echo a quoted,
//     player-influenced string are replaced wholesale with a marker.
//
// Basic usage:
//
//	clean := redact.ScrubIdentifiers(raw)
//	line = redact.ScrubVerbatimLine(line)
//
// Both primitives are idempotent and never change the number of lines in
// their input. The line helpers in lines.go (SplitText, MapLines, LineCount)
// are shared by the per-format strategies so that every transform agrees on
// what a line is.
package redact
