package traceback

import (
	"strconv"
	"strings"
)

// Frame is one call-stack entry of a parsed traceback.
type Frame struct {
	Location string `json:"location" yaml:"location"`
	Line     int    `json:"line" yaml:"line"`
	Routine  string `json:"routine" yaml:"routine"`
	Snippet  string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Index is the frame's position in the block, 0 being the outermost
	// call. Larger values are closer to where the exception was raised.
	Index int `json:"index" yaml:"index"`
}

type frameKey struct {
	location string
	line     int
	routine  string
}

func (f Frame) key() frameKey {
	return frameKey{location: f.Location, line: f.Line, routine: f.Routine}
}

// Exception is the terminal error of a traceback.
type Exception struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	Lines   []string `json:"lines" yaml:"lines"`
}

// String renders the exception as "Kind: message", or just "Kind" when
// there is no message.
func (e Exception) String() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Message
}

// Traceback is the structured content of one matched block.
type Traceback struct {
	// Frames are ordered outermost first, error site last.
	Frames    []Frame
	Exception Exception

	// Dropped counts frame lines discarded because their line number was
	// not a positive base-10 integer.
	Dropped int
}

// Parse extracts frames and the terminal exception from a block. It reports
// false when the block does not end in a terminal exception line. A block
// without any valid frame is still a valid traceback.
func Parse(b Block) (Traceback, bool) {
	var tb Traceback
	if len(b.Lines) == 0 {
		return tb, false
	}

	last := len(b.Lines) - 1
	exc, ok := parseException(b.Lines[last])
	if !ok {
		return tb, false
	}
	tb.Exception = exc

	body := b.Lines[:last]
	for i := 0; i < len(body); i++ {
		match := framePattern.FindStringSubmatch(body[i])
		if match == nil {
			// Detail lines that did not follow a frame, e.g. the
			// "[Previous line repeated N more times]" marker.
			continue
		}

		snippet := ""
		if i+1 < len(body) && isSnippet(body[i+1]) {
			snippet = strings.TrimSpace(body[i+1])
			i++
		}

		line, err := strconv.Atoi(match[2])
		if err != nil || line <= 0 {
			tb.Dropped++
			continue
		}

		tb.Frames = append(tb.Frames, Frame{
			Location: match[1],
			Line:     line,
			Routine:  strings.TrimSpace(match[3]),
			Snippet:  snippet,
			Index:    len(tb.Frames),
		})
	}

	return tb, true
}

// ParseText parses the first traceback found in text.
func ParseText(text string) (Traceback, bool) {
	for b := range Blocks(text) {
		if tb, ok := Parse(b); ok {
			return tb, true
		}
	}
	return Traceback{}, false
}

func parseException(line string) (Exception, bool) {
	match := terminalPattern.FindStringSubmatch(line)
	if match == nil {
		return Exception{}, false
	}
	return Exception{
		Kind:    match[1],
		Message: strings.TrimSpace(match[2]),
		Lines:   []string{line},
	}, true
}

func isSnippet(line string) bool {
	return isIndented(line) &&
		strings.TrimSpace(line) != "" &&
		!framePattern.MatchString(line) &&
		!caretPattern.MatchString(line) &&
		!repeatPattern.MatchString(line)
}
