package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

const summaryText = `before
<COMPACT_PY_TRACEBACK fingerprint=0123456789>
Exception: KeyError: 'id'

Relevant frames:
- handlers.py:50 in handle_request
</COMPACT_PY_TRACEBACK>
- after`

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"ALWAYS", ColorAlways, false},
		{" never ", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorModeString(t *testing.T) {
	for _, mode := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		got, err := ParseColorMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("round trip of %v failed: got %v, err %v", mode, got, err)
		}
	}
}

func TestShouldColorize(t *testing.T) {
	var buf bytes.Buffer

	if !shouldColorize(ColorAlways, &buf) {
		t.Error("ColorAlways should colorize")
	}
	if shouldColorize(ColorNever, os.Stdout) {
		t.Error("ColorNever should not colorize")
	}
	if shouldColorize(ColorAuto, &buf) {
		t.Error("ColorAuto should not colorize a non-file writer")
	}
}

func TestHighlightSummaries(t *testing.T) {
	got := HighlightSummaries(summaryText)

	lines := strings.Split(got, "\n")
	if len(lines) != strings.Count(summaryText, "\n")+1 {
		t.Fatalf("line count changed: got %d lines", len(lines))
	}

	colored := map[int]bool{1: true, 2: true, 5: true, 6: true}
	for i, line := range lines {
		hasEscape := strings.Contains(line, "\x1b[")
		if hasEscape != colored[i] {
			t.Errorf("line %d %q: colored = %v, want %v", i, line, hasEscape, colored[i])
		}
	}

	if lines[7] != "- after" {
		t.Errorf("text after the summary should be untouched, got %q", lines[7])
	}
}

func TestHighlightSummaries_NoSummary(t *testing.T) {
	text := "plain\n- not a frame"
	if got := HighlightSummaries(text); got != text {
		t.Errorf("HighlightSummaries changed plain text: %q", got)
	}
}
