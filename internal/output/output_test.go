package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bimmerbailey/publogs/internal/runtimelog"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"table", FormatTable},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	row := Classify("game.log")
	if !row.Publishable || row.PublicName != "game.txt" || row.Kind != "game" {
		t.Errorf("Classify(game.log) = %+v", row)
	}

	row = Classify("runtime.condensed.json")
	if !row.Publishable || row.ContentType != "application/json" {
		t.Errorf("Classify(runtime.condensed.json) = %+v", row)
	}

	if row := Classify("secrets.log"); row.Publishable {
		t.Errorf("Classify(secrets.log) = %+v, want not publishable", row)
	}
}

func TestWriteClassifications(t *testing.T) {
	rows := []Classification{Classify("game.log"), Classify("unknown.log")}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := New(&buf, FormatText).WriteClassifications(rows); err != nil {
			t.Fatalf("WriteClassifications() error = %v", err)
		}
		want := "game.log -> game.txt (game)\nunknown.log: not publishable\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := New(&buf, FormatJSON).WriteClassifications(rows); err != nil {
			t.Fatalf("WriteClassifications() error = %v", err)
		}
		var decoded []Classification
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if len(decoded) != 2 || decoded[1].Publishable {
			t.Errorf("decoded = %+v", decoded)
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := New(&buf, FormatTable).WriteClassifications(rows); err != nil {
			t.Fatalf("WriteClassifications() error = %v", err)
		}
		if !strings.Contains(buf.String(), "PUBLIC NAME") || !strings.Contains(buf.String(), "(not publishable)") {
			t.Errorf("unexpected table:\n%s", buf.String())
		}
	})
}

func TestWriteCondensed(t *testing.T) {
	condensed, err := runtimelog.Condense("runtime error: x 1\nruntime error: x 2\n")
	if err != nil {
		t.Fatal(err)
	}

	var text bytes.Buffer
	if err := New(&text, FormatText).WriteCondensed(condensed); err != nil {
		t.Fatalf("WriteCondensed() error = %v", err)
	}
	if text.String() != condensed.Text {
		t.Errorf("text output = %q, want the condensed text", text.String())
	}

	var js bytes.Buffer
	if err := New(&js, FormatJSON).WriteCondensed(condensed); err != nil {
		t.Fatalf("WriteCondensed() error = %v", err)
	}
	var report runtimelog.Report
	if err := json.Unmarshal(js.Bytes(), &report); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if report.Total != 2 || report.Unique != 1 {
		t.Errorf("report = %+v", report)
	}

	var table bytes.Buffer
	if err := New(&table, FormatTable).WriteCondensed(condensed); err != nil {
		t.Fatalf("WriteCondensed() error = %v", err)
	}
	if !strings.Contains(table.String(), "COUNT") {
		t.Errorf("table missing header:\n%s", table.String())
	}
}

func TestWriteCondensedTableTruncatesRunes(t *testing.T) {
	long := "Cannot read " + strings.Repeat("ö", 100)
	condensed := &runtimelog.Condensed{Report: &runtimelog.Report{
		Total:  1,
		Unique: 1,
		Groups: []runtimelog.Group{{Count: 1, Message: long, FirstLine: 3, SourceFile: "code/x.dm"}},
	}}

	var table bytes.Buffer
	if err := New(&table, FormatTable).WriteCondensed(condensed); err != nil {
		t.Fatalf("WriteCondensed() error = %v", err)
	}
	out := table.String()
	if !utf8.ValidString(out) {
		t.Fatalf("table is not valid UTF-8:\n%q", out)
	}
	want := string([]rune(long)[:77]) + "..."
	if !strings.Contains(out, want) {
		t.Errorf("table missing %q:\n%s", want, out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"abcdefghij", "abcdefghij"},
		{"abcdefghijk", "abcdefg..."},
		{"ääääääääääää", "äääääää..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, 10); got != tt.want {
			t.Errorf("truncate(%q, 10) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteRounds(t *testing.T) {
	rows := []RoundStatus{
		{ID: 1, Dir: "/logs/round-1", State: "finished"},
		{ID: 2, Dir: "/logs/round-2", State: "ongoing"},
	}

	var buf bytes.Buffer
	wr := New(&buf, FormatText)
	wr.SetColor(ColorAlways)
	if err := wr.WriteRounds(rows); err != nil {
		t.Fatalf("WriteRounds() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "round 1: finished" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.Contains(lines[1], colorYellow) {
		t.Errorf("ongoing round not highlighted: %q", lines[1])
	}
}

func TestWriteCensored(t *testing.T) {
	text := "GAME: hi\nADMIN-PM: -censored(asay/apm/ahelp)-\n-censored(misc)-\n"

	var plain bytes.Buffer
	if err := New(&plain, FormatText).WriteCensored(text); err != nil {
		t.Fatalf("WriteCensored() error = %v", err)
	}
	if plain.String() != text {
		t.Errorf("uncoloured output changed: %q", plain.String())
	}

	var colored bytes.Buffer
	wr := New(&colored, FormatText)
	wr.SetColor(ColorAlways)
	if err := wr.WriteCensored(text); err != nil {
		t.Fatalf("WriteCensored() error = %v", err)
	}

	cleaned := colored.String()
	for _, code := range []string{colorBold, colorRed, colorYellow, colorReset} {
		cleaned = strings.ReplaceAll(cleaned, code, "")
	}
	if cleaned != text {
		t.Errorf("colouring changed content: %q", cleaned)
	}
	if !strings.Contains(colored.String(), colorRed+"-censored(misc)-") {
		t.Errorf("generic marker not highlighted: %q", colored.String())
	}
}
