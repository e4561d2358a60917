package traceback

import (
	"iter"
	"strings"
)

// Block is one candidate traceback located in a larger text.
type Block struct {
	// Start and End are byte offsets into the scanned text. Start is the
	// beginning of the header line; End is the end of the terminal exception
	// line, excluding trailing whitespace and the line break.
	Start int
	End   int

	// Margin is the prefix shared by every line of the block, such as
	// indentation or pytest's "E   " marker.
	Margin string

	// Lines holds the block's lines after the header with the margin and
	// trailing whitespace removed. The last line is the terminal exception.
	Lines []string
}

type state int

const (
	seekingHeader state = iota
	seekingTerminal
	inFrame
)

func (s state) String() string {
	switch s {
	case seekingHeader:
		return "SEEKING_HEADER"
	case seekingTerminal:
		return "SEEKING_TERMINAL"
	case inFrame:
		return "IN_FRAME"
	default:
		return "UNKNOWN"
	}
}

// verdict is the machine's decision about one line.
type verdict int

const (
	outside  verdict = iota // not part of any block
	opened                  // header line, a candidate block starts
	extended                // frame, snippet or other indented frame detail
	closed                  // terminal exception line, the block is complete
	rejected                // candidate abandoned; the line must be fed again
)

// machine recognises traceback blocks one line at a time.
//
// From SEEKING_HEADER a header line moves to SEEKING_TERMINAL, where only a
// frame line (moving to IN_FRAME) or a terminal exception line is accepted.
// IN_FRAME additionally accepts indented detail lines such as source
// snippets and caret markers. Anything else rejects the candidate.
type machine struct {
	state  state
	margin string
}

func (m *machine) reset() {
	m.state = seekingHeader
	m.margin = ""
}

// feed advances the machine by one raw line and returns its verdict along
// with the margin-stripped body for lines that belong to the block.
func (m *machine) feed(raw string) (verdict, string) {
	line := strings.TrimRight(raw, " \t\r")

	if m.state == seekingHeader {
		match := headerPattern.FindStringSubmatch(line)
		if match == nil {
			return outside, ""
		}
		m.margin = match[1]
		m.state = seekingTerminal
		return opened, ""
	}

	body, ok := strings.CutPrefix(line, m.margin)
	if !ok {
		m.reset()
		return rejected, ""
	}

	switch {
	case framePattern.MatchString(body):
		m.state = inFrame
		return extended, body
	case m.state == inFrame && isIndented(body):
		return extended, body
	case terminalPattern.MatchString(body):
		m.reset()
		return closed, body
	}

	m.reset()
	return rejected, ""
}

// Blocks lazily yields every complete traceback block in text, in order of
// appearance. Blocks never overlap. A candidate that never reaches a
// terminal exception line is not yielded, and scanning resumes at the line
// that broke it.
func Blocks(text string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		var (
			m   machine
			cur Block
		)

		for start := 0; start < len(text); {
			end := len(text)
			if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
				end = start + i
			}
			line := text[start:end]

			v, body := m.feed(line)
			switch v {
			case opened:
				cur = Block{Start: start, Margin: m.margin}
			case extended:
				cur.Lines = append(cur.Lines, body)
			case closed:
				cur.Lines = append(cur.Lines, body)
				cur.End = start + len(strings.TrimRight(line, " \t\r"))
				if !yield(cur) {
					return
				}
				cur = Block{}
			case rejected:
				cur = Block{}
				// Re-examine the same line; it may open a new block.
				continue
			}

			start = end + 1
		}
	}
}
