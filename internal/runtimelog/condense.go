package runtimelog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Group is every fault sharing one signature. Message, ProcName, SourceFile,
// Trace and Context are taken from the first fault seen.
type Group struct {
	Signature  string   `json:"signature"`
	Count      int      `json:"count"`
	Message    string   `json:"message"`
	ProcName   string   `json:"proc_name,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
	Trace      []string `json:"trace"`
	Context    []string `json:"context"`
	FirstLine  int      `json:"first_line"`
	FirstSeen  string   `json:"first_seen,omitempty"`
}

// Report is the structured form of a condensed runtime log.
type Report struct {
	Total  int     `json:"total"`
	Unique int     `json:"unique"`
	Groups []Group `json:"groups"`
}

// JSON renders the report. Identical reports always render identically.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling runtime report: %w", err)
	}
	return append(data, '\n'), nil
}

// Condensed is the result of Condense.
type Condensed struct {
	Text   string
	Report *Report
}

// Condense groups the faults of raw by signature after scrubbing it.
// Groups are ordered by first occurrence, never by frequency, so the same
// input always condenses to the same bytes.
func Condense(raw string) (*Condensed, error) {
	scrubbed, err := Scrub(raw)
	if err != nil {
		return nil, err
	}
	faults, err := Parse(scrubbed)
	if err != nil {
		return nil, err
	}

	report := group(faults)
	return &Condensed{
		Text:   render(report),
		Report: report,
	}, nil
}

func group(faults []Fault) *Report {
	report := &Report{
		Total:  len(faults),
		Groups: []Group{},
	}
	index := make(map[string]int)

	for _, f := range faults {
		sig := Signature(f)
		if i, ok := index[sig]; ok {
			report.Groups[i].Count++
			continue
		}

		index[sig] = len(report.Groups)
		report.Groups = append(report.Groups, Group{
			Signature:  sig,
			Count:      1,
			Message:    f.Message,
			ProcName:   f.ProcName,
			SourceFile: f.SourceFile,
			Trace:      nonNil(f.Trace),
			Context:    nonNil(f.Context),
			FirstLine:  f.Line,
			FirstSeen:  f.Timestamp,
		})
	}

	report.Unique = len(report.Groups)
	return report
}

// nonNil keeps empty slices rendering as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func render(report *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total runtimes: %d\n", report.Total))
	sb.WriteString(fmt.Sprintf("Unique runtimes: %d\n", report.Unique))

	for _, g := range report.Groups {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("x%d %s\n", g.Count, g.Message))
		if g.ProcName != "" {
			sb.WriteString(fmt.Sprintf("  proc name: %s\n", g.ProcName))
		}
		if g.SourceFile != "" {
			sb.WriteString(fmt.Sprintf("  source file: %s\n", g.SourceFile))
		}
		if g.FirstSeen != "" {
			sb.WriteString(fmt.Sprintf("  first seen: %s (line %d)\n", g.FirstSeen, g.FirstLine))
		} else {
			sb.WriteString(fmt.Sprintf("  first seen: line %d\n", g.FirstLine))
		}
		for _, c := range g.Context {
			sb.WriteString(fmt.Sprintf("  %s\n", c))
		}
		for _, t := range g.Trace {
			sb.WriteString(fmt.Sprintf("    %s\n", t))
		}
	}

	return sb.String()
}
