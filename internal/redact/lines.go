package redact

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrNotText is returned when input cannot be split into lines because it is
// not valid UTF-8. It applies to the whole input; no partial output is made.
var ErrNotText = errors.New("input is not valid UTF-8 text")

// Text is raw log content split into lines.
type Text struct {
	Lines           []string
	TrailingNewline bool
}

// SplitText splits raw into lines on "\n", dropping a trailing "\r" from each
// line. A final newline does not start an extra empty line; it is recorded in
// TrailingNewline so String can restore it.
func SplitText(raw string) (Text, error) {
	if !utf8.ValidString(raw) {
		return Text{}, ErrNotText
	}
	return Text{
		Lines:           splitLines(raw),
		TrailingNewline: strings.HasSuffix(raw, "\n"),
	}, nil
}

// String joins the lines back together.
func (t Text) String() string {
	var b strings.Builder
	for i, line := range t.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if t.TrailingNewline {
		b.WriteByte('\n')
	}
	return b.String()
}

// MapLines applies fn to every line of raw and joins the results.
// fn must return a single line.
func MapLines(raw string, fn func(string) string) (string, error) {
	text, err := SplitText(raw)
	if err != nil {
		return "", err
	}
	out := Text{
		Lines:           make([]string, len(text.Lines)),
		TrailingNewline: text.TrailingNewline,
	}
	for i, line := range text.Lines {
		out.Lines[i] = fn(line)
	}
	return out.String(), nil
}

// LineCount returns the number of lines SplitText would produce for s.
func LineCount(s string) int {
	return len(splitLines(s))
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(raw, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
