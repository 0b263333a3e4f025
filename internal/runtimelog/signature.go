package runtimelog

import (
	"regexp"
	"strings"
)

const wildcard = "<*>"

// Volatile parts of a runtime message, replaced in this order.
var (
	refRegex    = regexp.MustCompile(`\[0x[0-9a-fA-F]+\]`)
	hexRegex    = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	numberRegex = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// NormalizeMessage replaces object references, hex literals and decimal
// numbers in message with wildcards, leaving the rest untouched.
//
// Example:
//
//	"bad index 14 in list [0x2103a4c]" → "bad index <*> in list <*>"
func NormalizeMessage(message string) string {
	normalized := refRegex.ReplaceAllString(message, wildcard)
	normalized = hexRegex.ReplaceAllString(normalized, wildcard)
	return numberRegex.ReplaceAllString(normalized, wildcard)
}

// Signature identifies the logical fault f belongs to. Faults raised by the
// same proc at the same source line with messages that differ only in
// volatile detail share a signature.
func Signature(f Fault) string {
	return strings.Join([]string{NormalizeMessage(f.Message), f.ProcName, f.SourceFile}, " | ")
}
