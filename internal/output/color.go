package output

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bimmerbailey/publogs/internal/gamelog"
	"github.com/bimmerbailey/publogs/internal/redact"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Tone is how prominently a line should be shown.
type Tone int

const (
	ToneNormal Tone = iota
	ToneMuted
	ToneWarn
	ToneAlert
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		// Check if writer is a file and if it's a terminal
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

// ColorizeLine applies the colour for tone to an entire line.
func ColorizeLine(tone Tone, line string) string {
	switch tone {
	case ToneMuted:
		return colorGray + line + colorReset
	case ToneWarn:
		return colorYellow + line + colorReset
	case ToneAlert:
		return colorBold + colorRed + line + colorReset
	default:
		return line
	}
}

// CensoredTone picks the tone for a line of sanitized output. Whole-line
// markers get the loudest tone.
func CensoredTone(line string) Tone {
	switch {
	case gamelog.IsGenericMarker(line), redact.IsVerbatimMarker(line):
		return ToneAlert
	case strings.HasSuffix(line, gamelog.PrivateMarker):
		return ToneWarn
	case strings.Contains(line, redact.IPPlaceholder), strings.Contains(line, redact.CIDPlaceholder):
		return ToneMuted
	default:
		return ToneNormal
	}
}

func stateTone(state string) Tone {
	switch state {
	case "ongoing":
		return ToneWarn
	case "unknown":
		return ToneAlert
	default:
		return ToneNormal
	}
}
