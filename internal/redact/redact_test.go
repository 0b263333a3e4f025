package redact

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltInPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    bool
	}{
		{
			name:    "IPv4 address",
			pattern: "ipv4",
			text:    "Connection from 192.168.1.1 to server",
			want:    true,
		},
		{
			name:    "IPv6 address",
			pattern: "ipv6",
			text:    "Connection from 2001:db8::1",
			want:    true,
		},
		{
			name:    "computer id",
			pattern: "cid",
			text:    "Urist (IP: x, CID: 1234567890)",
			want:    true,
		},
		{
			name:    "timestamp is not an IPv6 address",
			pattern: "ipv6",
			text:    "[2023-11-05 18:32:11.123] GAME-SAY: hello",
			want:    false,
		},
		{
			name:    "scope operator is not an IPv6 address",
			pattern: "ipv6",
			text:    "std::string is cool",
			want:    false,
		},
		{
			name:    "computer id after address",
			pattern: "cid",
			text:    "logged in from 10.0.0.1-3058294859",
			want:    true,
		},
		{
			name:    "short number is not a computer id",
			pattern: "cid",
			text:    "cid: 12",
			want:    false,
		},
		{
			name:    "No sensitive data",
			pattern: "ipv4",
			text:    "This is a normal log message",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, ok := BuiltInPatterns[tt.pattern]
			if !ok {
				t.Fatalf("Pattern %s not found", tt.pattern)
			}

			_, n := pattern.replace(tt.text)
			if got := n > 0; got != tt.want {
				t.Errorf("matched = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultPatterns(t *testing.T) {
	for _, name := range DefaultPatterns() {
		if _, ok := BuiltInPatterns[name]; !ok {
			t.Errorf("Default pattern %s not found in BuiltInPatterns", name)
		}
	}
}

func TestGetPatterns(t *testing.T) {
	patterns := GetPatterns([]string{"ipv4", "cid", "nonexistent"})
	if len(patterns) != 2 {
		t.Errorf("GetPatterns() returned %d patterns, want 2", len(patterns))
	}
}

func TestScrubIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ipv4",
			in:   "Login: Urist from 10.0.0.1",
			want: "Login: Urist from -censored(ip)-",
		},
		{
			name: "ipv4 and cid",
			in:   "Urist (IP: 192.168.1.1, CID: 1234567890) connected",
			want: "Urist (IP: -censored(ip)-, CID: -censored(cid)-) connected",
		},
		{
			name: "ipv4 mapped ipv6",
			in:   "from ::ffff:10.0.0.1 ok",
			want: "from -censored(ip)- ok",
		},
		{
			name: "computer_id assignment",
			in:   "computer_id=3344556677",
			want: "computer_id=-censored(cid)-",
		},
		{
			name: "access line address and cid",
			in:   "GAME-ACCESS: Urist logged in from 10.0.0.1-3058294859 || BYOND v515.1630",
			want: "GAME-ACCESS: Urist logged in from -censored(ip)--censored(cid)- || BYOND v515.1630",
		},
		{
			name: "ipv6 at end of sentence",
			in:   "Urist connected from 2001:db8::1.",
			want: "Urist connected from -censored(ip)-.",
		},
		{
			name: "scope operator",
			in:   "GAME-SAY: Urist/(Urist) \"std::string is cool\"",
			want: "GAME-SAY: Urist/(Urist) \"std::string is cool\"",
		},
		{
			name: "double colon inside a word",
			in:   "GAME-SAY: Urist/(Urist) \"set var face::beard\"",
			want: "GAME-SAY: Urist/(Urist) \"set var face::beard\"",
		},
		{
			name: "hex words",
			in:   "GAME-SAY: Urist/(Urist) \"bad::add and ab::\"",
			want: "GAME-SAY: Urist/(Urist) \"bad::add and ab::\"",
		},
		{
			name: "untouched",
			in:   "[2023-11-05 18:32:11.123] GAME-SAY: Urist/(Urist) \"hello\"",
			want: "[2023-11-05 18:32:11.123] GAME-SAY: Urist/(Urist) \"hello\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScrubIdentifiers(tt.in); got != tt.want {
				t.Errorf("ScrubIdentifiers() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrubIdentifiersIdempotent(t *testing.T) {
	inputs := []string{
		"1.2.3.4.5.6.7.8",
		"IP: 127.0.0.1 CID: 99999 cid=123456",
		"from 10.0.0.1-3058294859 || BYOND v515.1630",
		"std::string face::beard",
		"fe80::1 and 2001:0db8:0000:0000:0000:ff00:0042:8329",
		"nothing to see here",
		"",
		"a\nb\r\n10.0.0.1\n",
	}

	for _, in := range inputs {
		once := ScrubIdentifiers(in)
		twice := ScrubIdentifiers(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if LineCount(once) != LineCount(in) {
			t.Errorf("line count changed for %q", in)
		}
	}
}

func TestScrubAndCount(t *testing.T) {
	s := NewScrubber("ipv4", "cid")

	got, count := s.ScrubAndCount("from 10.0.0.1 and 10.0.0.2 (CID: 1234567)")
	if count != 3 {
		t.Errorf("ScrubAndCount() count = %d, want 3", count)
	}
	if strings.Contains(got, "10.0.0") {
		t.Errorf("ScrubAndCount() left an address in %q", got)
	}
	if _, again := s.ScrubAndCount(got); again != 0 {
		t.Errorf("ScrubAndCount() of scrubbed text count = %d, want 0", again)
	}
	if got, count := NewScrubber("ipv6").ScrubAndCount("std::string"); count != 0 || got != "std::string" {
		t.Errorf("ScrubAndCount() = %q, %d; want text unchanged", got, count)
	}
}

func TestScrubVerbatimLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "cannot read quoted string",
			in:   `[2023-11-05 18:32:11.123] runtime error: Cannot read "hello there".len`,
			want: StringOutputMarker,
		},
		{
			name: "cannot execute quoted string",
			in:   `runtime error: Cannot execute "whatever".Topic().`,
			want: StringOutputMarker,
		},
		{
			name: "cannot read null",
			in:   `runtime error: Cannot read null.loc`,
			want: `runtime error: Cannot read null.loc`,
		},
		{
			name: "marker is stable",
			in:   StringOutputMarker,
			want: StringOutputMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScrubVerbatimLine(tt.in); got != tt.want {
				t.Errorf("ScrubVerbatimLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		lines    []string
		trailing bool
	}{
		{"empty", "", nil, false},
		{"single", "a", []string{"a"}, false},
		{"trailing newline", "a\nb\n", []string{"a", "b"}, true},
		{"crlf", "a\r\nb", []string{"a", "b"}, false},
		{"blank line", "\n", []string{""}, true},
		{"inner blank", "a\n\nb", []string{"a", "", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := SplitText(tt.in)
			if err != nil {
				t.Fatalf("SplitText() error = %v", err)
			}
			if len(text.Lines) != len(tt.lines) {
				t.Fatalf("SplitText() = %q, want %q", text.Lines, tt.lines)
			}
			for i := range tt.lines {
				if text.Lines[i] != tt.lines[i] {
					t.Errorf("line %d = %q, want %q", i, text.Lines[i], tt.lines[i])
				}
			}
			if text.TrailingNewline != tt.trailing {
				t.Errorf("TrailingNewline = %v, want %v", text.TrailingNewline, tt.trailing)
			}
			if LineCount(tt.in) != len(tt.lines) {
				t.Errorf("LineCount() = %d, want %d", LineCount(tt.in), len(tt.lines))
			}
		})
	}
}

func TestSplitTextInvalidUTF8(t *testing.T) {
	_, err := SplitText("ok\n\xff\xfe")
	if !errors.Is(err, ErrNotText) {
		t.Fatalf("SplitText() error = %v, want ErrNotText", err)
	}

	if _, err := MapLines("\xff", strings.ToUpper); !errors.Is(err, ErrNotText) {
		t.Fatalf("MapLines() error = %v, want ErrNotText", err)
	}
}

func TestMapLinesPreservesShape(t *testing.T) {
	in := "one\ntwo\n\nthree\n"
	got, err := MapLines(in, strings.ToUpper)
	if err != nil {
		t.Fatalf("MapLines() error = %v", err)
	}
	if got != "ONE\nTWO\n\nTHREE\n" {
		t.Errorf("MapLines() = %q", got)
	}
}
