package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// String returns the configuration name of the mode.
func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode converts a configuration value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (must be auto, always, or never)", s)
	}
}

// IsTerminal checks if the given file is a terminal.
func IsTerminal(f *os.File) bool {
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
		if f, ok := w.(*os.File); ok {
			return IsTerminal(f)
		}
		return false
	}
	return false
}

var (
	markerColor    = forced(color.New(color.FgCyan, color.Bold))
	exceptionColor = forced(color.New(color.FgRed, color.Bold))
	frameColor     = forced(color.New(color.FgYellow))
)

// forced enables c regardless of fatih/color's own stdout detection; the
// caller has already decided.
func forced(c *color.Color) *color.Color {
	c.EnableColor()
	return c
}

// HighlightSummaries colors the markers, exception line, and frame lines of
// every compact summary in text. Other text is left as is.
func HighlightSummaries(text string) string {
	lines := strings.Split(text, "\n")
	inside := false
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "<COMPACT_PY_TRACEBACK fingerprint="):
			inside = true
			lines[i] = markerColor.Sprint(line)
		case line == traceback.CloseMarker:
			inside = false
			lines[i] = markerColor.Sprint(line)
		case inside && strings.HasPrefix(line, "Exception: "):
			lines[i] = exceptionColor.Sprint(line)
		case inside && strings.HasPrefix(line, "- "):
			lines[i] = frameColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
