// Package runtimelog scrubs and condenses the interpreter's runtime error log.
//
// A runtime log is a sequence of faults, each a header line followed by
// indented detail lines:
//
//	[2023-11-05 18:31:00.123] runtime error: Cannot read null.name
//	 - proc name: examine (/mob/living/examine)
//	 -   source file: code/modules/mob/living/examine.dm,42
//	 -   usr: Urist (/mob/living/carbon/human)
//	 -   src: the mouse (/mob/living/basic/mouse)
//	 -   call stack:
//	 - the mouse (/mob/living/basic/mouse): examine(Urist (/mob/living/carbon/human))
//
// Scrub makes the log publishable line for line. Condense goes further and
// folds repeats of the same fault into one counted group.
package runtimelog

import (
	"strings"

	"github.com/bimmerbailey/publogs/internal/redact"
)

// Scrub replaces every line carrying a verbatim interpreter string with the
// string-output marker. Line count is preserved.
func Scrub(raw string) (string, error) {
	return redact.MapLines(raw, redact.ScrubVerbatimLine)
}

const headerPrefix = "runtime error:"

// Fault is one reported runtime error.
type Fault struct {
	Line       int    // 1-based line number of the header
	Timestamp  string // contents of the header's [timestamp], if any
	Message    string
	ProcName   string
	SourceFile string
	Context    []string // usr/src lines
	Trace      []string // call stack and any other detail
}

// Parse splits already scrubbed runtime log content into faults.
//
// Lines that are neither a header nor a continuation of one are skipped.
func Parse(raw string) ([]Fault, error) {
	text, err := redact.SplitText(raw)
	if err != nil {
		return nil, err
	}

	var faults []Fault
	var current *Fault

	for i, line := range text.Lines {
		if timestamp, message, ok := parseHeader(line); ok {
			faults = append(faults, Fault{
				Line:      i + 1,
				Timestamp: timestamp,
				Message:   message,
			})
			current = &faults[len(faults)-1]
			continue
		}

		if current == nil || !isContinuation(line) {
			current = nil
			continue
		}

		current.addDetail(line)
	}

	return faults, nil
}

func parseHeader(line string) (timestamp, message string, ok bool) {
	if redact.IsVerbatimMarker(line) {
		return "", redact.StringOutputMarker, true
	}

	body := line
	if strings.HasPrefix(line, "[") {
		end := strings.IndexByte(line, ']')
		if end < 0 {
			return "", "", false
		}
		timestamp = line[1:end]
		body = strings.TrimPrefix(line[end+1:], " ")
	}

	if !strings.HasPrefix(body, headerPrefix) {
		return "", "", false
	}
	return timestamp, strings.TrimSpace(body[len(headerPrefix):]), true
}

func isContinuation(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func (f *Fault) addDetail(line string) {
	detail := strings.TrimSpace(line)
	detail = strings.TrimSpace(strings.TrimPrefix(detail, "-"))
	if detail == "" {
		return
	}

	switch {
	case strings.HasPrefix(detail, "proc name:"):
		f.ProcName = strings.TrimSpace(strings.TrimPrefix(detail, "proc name:"))
	case strings.HasPrefix(detail, "source file:"):
		f.SourceFile = strings.TrimSpace(strings.TrimPrefix(detail, "source file:"))
	case detail == "call stack:":
	case isContextLine(detail):
		f.Context = append(f.Context, detail)
	default:
		f.Trace = append(f.Trace, detail)
	}
}

func isContextLine(detail string) bool {
	for _, prefix := range []string{"usr:", "src:", "usr.loc:", "src.loc:"} {
		if strings.HasPrefix(detail, prefix) {
			return true
		}
	}
	return false
}
