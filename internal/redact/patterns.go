package redact

import (
	"net/netip"
	"regexp"
	"strings"
)

// Placeholders written in place of scrubbed identifiers.
const (
	IPPlaceholder  = "-censored(ip)-"
	CIDPlaceholder = "-censored(cid)-"
)

// IdentifierPattern defines a built-in pattern for identifier detection.
type IdentifierPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string // Expanded like Regexp.Expand, so ${n} groups work
	Description string

	// Valid, when set, vets each match; text[start:end] is left alone if it
	// returns false.
	Valid func(text string, start, end int) bool
}

// Built-in identifier patterns. Each replacement must not itself match any
// pattern, which is what keeps scrubbing idempotent.
var (
	// IPv4 addresses: 192.168.1.1
	ipv4Regex = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	// IPv6 addresses: 2001:db8::1, ::ffff:10.0.0.1
	// Leftmost-longest so a compressed address is never cut short at its "::".
	ipv6Regex = longest(regexp.MustCompile(`(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}|(?:[0-9a-fA-F]{1,4}:){1,7}:|(?:[0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|(?:[0-9a-fA-F]{1,4}:){1,5}(?::[0-9a-fA-F]{1,4}){1,2}|(?:[0-9a-fA-F]{1,4}:){1,4}(?::[0-9a-fA-F]{1,4}){1,3}|(?:[0-9a-fA-F]{1,4}:){1,3}(?::[0-9a-fA-F]{1,4}){1,4}|(?:[0-9a-fA-F]{1,4}:){1,2}(?::[0-9a-fA-F]{1,4}){1,5}|[0-9a-fA-F]{1,4}:(?::[0-9a-fA-F]{1,4}){1,6}|:(?::[0-9a-fA-F]{1,4}){1,7}|::(?:[fF]{4}(?::0{1,4}){0,1}:){0,1}(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)|(?:[0-9a-fA-F]{1,4}:){1,4}:(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`))

	// Computer ids as the game server prints them: "CID: 1234567890",
	// "computer_id=1234567890" and the access log's "10.0.0.1-1234567890",
	// whose address may already be scrubbed.
	cidRegex = regexp.MustCompile(`(?i)(\b(?:cid|computer[_ ]?id)\s*[:=]\s*|\b(?:\d{1,3}\.){3}\d{1,3}-|-censored\(ip\)--)\d{5,}`)
)

// validIPv6 rejects hex runs that only look like addresses, such as the
// "d::" in "std::string": the candidate must stand alone, hold at least two
// groups with a digit among them, and parse.
func validIPv6(text string, start, end int) bool {
	if start > 0 && isAddrByte(text[start-1]) {
		return false
	}
	if end < len(text) {
		next := text[end]
		if next != '.' && isAddrByte(next) {
			return false
		}
		if next == '.' && end+1 < len(text) && isDigit(text[end+1]) {
			return false
		}
	}

	candidate := text[start:end]
	groups := 0
	for _, group := range strings.Split(candidate, ":") {
		if group != "" {
			groups++
		}
	}
	if groups < 2 || !strings.ContainsAny(candidate, "0123456789") {
		return false
	}
	_, err := netip.ParseAddr(candidate)
	return err == nil
}

func isAddrByte(b byte) bool {
	return isDigit(b) || b == ':' || b == '.' || b == '_' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func longest(re *regexp.Regexp) *regexp.Regexp {
	re.Longest()
	return re
}

// BuiltInPatterns contains all available identifier patterns, keyed by name.
var BuiltInPatterns = map[string]IdentifierPattern{
	"ipv6": {
		Name:        "ipv6",
		Regex:       ipv6Regex,
		Replacement: IPPlaceholder,
		Description: "IPv6 addresses",
		Valid:       validIPv6,
	},
	"ipv4": {
		Name:        "ipv4",
		Regex:       ipv4Regex,
		Replacement: IPPlaceholder,
		Description: "IPv4 addresses",
	},
	"cid": {
		Name:        "cid",
		Regex:       cidRegex,
		Replacement: "${1}" + CIDPlaceholder,
		Description: "Player computer ids",
	},
}

// DefaultPatterns returns the pattern names applied to every public log.
// IPv6 runs before IPv4 so that IPv4-mapped addresses are consumed whole.
func DefaultPatterns() []string {
	return []string{
		"ipv6",
		"ipv4",
		"cid",
	}
}

// GetPatterns returns the patterns matching the given names, in order.
// Unknown pattern names are silently ignored.
func GetPatterns(names []string) []IdentifierPattern {
	patterns := make([]IdentifierPattern, 0, len(names))
	for _, name := range names {
		if pattern, ok := BuiltInPatterns[name]; ok {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}
