// Package output renders command results as text, JSON, or tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/bimmerbailey/publogs/internal/runtimelog"
	"github.com/bimmerbailey/publogs/internal/sanitize"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// SetColor enables colour according to mode and the underlying writer.
func (wr *Writer) SetColor(mode ColorMode) {
	wr.colorize = shouldColorize(mode, wr.w)
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Classification is the dispatcher's verdict on one file name.
type Classification struct {
	Name        string `json:"name"`
	Publishable bool   `json:"publishable"`
	PublicName  string `json:"public_name,omitempty"`
	Kind        string `json:"kind,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Classify builds a Classification for name.
func Classify(name string) Classification {
	d, ok := sanitize.Classify(name)
	if !ok {
		d, ok = sanitize.CondensedSource(name)
	}
	if !ok {
		return Classification{Name: name}
	}
	return Classification{
		Name:        name,
		Publishable: true,
		PublicName:  d.PublicName,
		Kind:        d.Kind.String(),
		ContentType: d.ContentType(),
	}
}

// WriteClassifications outputs dispatcher verdicts in the configured format.
func (wr *Writer) WriteClassifications(rows []Classification) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(rows)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPUBLIC NAME\tKIND\tCONTENT TYPE")
		fmt.Fprintln(tw, "----\t-----------\t----\t------------")
		for _, row := range rows {
			if !row.Publishable {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\n", row.Name, wr.paint(ToneMuted, "(not publishable)"))
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Name, row.PublicName, row.Kind, row.ContentType)
		}
		return tw.Flush()
	default:
		for _, row := range rows {
			if !row.Publishable {
				fmt.Fprintln(wr.w, wr.paint(ToneMuted, row.Name+": not publishable"))
				continue
			}
			fmt.Fprintf(wr.w, "%s -> %s (%s)\n", row.Name, row.PublicName, row.Kind)
		}
		return nil
	}
}

// WriteCondensed outputs a condensed runtime log.
func (wr *Writer) WriteCondensed(c *runtimelog.Condensed) error {
	switch wr.format {
	case FormatJSON:
		data, err := c.Report.JSON()
		if err != nil {
			return err
		}
		_, err = wr.w.Write(data)
		return err
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COUNT\tLINE\tSOURCE\tMESSAGE")
		fmt.Fprintln(tw, "-----\t----\t------\t-------")
		for _, g := range c.Report.Groups {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", g.Count, g.FirstLine, g.SourceFile, truncate(g.Message, 80))
		}
		return tw.Flush()
	default:
		_, err := io.WriteString(wr.w, c.Text)
		return err
	}
}

// RoundStatus is one round as the guard sees it.
type RoundStatus struct {
	ID    int64  `json:"id"`
	Dir   string `json:"dir"`
	State string `json:"state"`
}

// WriteRounds outputs round states in the configured format.
func (wr *Writer) WriteRounds(rows []RoundStatus) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(rows)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ROUND\tSTATE\tDIRECTORY")
		fmt.Fprintln(tw, "-----\t-----\t---------")
		for _, row := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", row.ID, wr.paint(stateTone(row.State), row.State), row.Dir)
		}
		return tw.Flush()
	default:
		for _, row := range rows {
			fmt.Fprintln(wr.w, wr.paint(stateTone(row.State), fmt.Sprintf("round %d: %s", row.ID, row.State)))
		}
		return nil
	}
}

// WriteCensored outputs sanitized text, colouring lines the censor changed.
func (wr *Writer) WriteCensored(text string) error {
	if !wr.colorize {
		_, err := io.WriteString(wr.w, text)
		return err
	}

	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		if _, err := io.WriteString(wr.w, ColorizeLine(CensoredTone(body), body)+line[len(body):]); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) paint(tone Tone, text string) string {
	if !wr.colorize {
		return text
	}
	return ColorizeLine(tone, text)
}

// truncate shortens s to at most limit runes, ending it with "..." when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
