package traceback

import (
	"go.uber.org/zap"
)

// Stream compacts tracebacks in text that arrives one line at a time, such
// as a log file being followed. Lines outside tracebacks are emitted as soon
// as they are written. Lines of a candidate block are held back until the
// block either completes, in which case its summary is emitted in their
// place, or is rejected, in which case they are emitted unchanged.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	c       *Compactor
	emit    func(chunk string) error
	m       machine
	pending []string
	block   Block
}

// NewStream returns a Stream that passes every output chunk to emit. A chunk
// is either one input line or one rendered summary, without a trailing line
// break.
func (c *Compactor) NewStream(emit func(chunk string) error) *Stream {
	return &Stream{c: c, emit: emit}
}

// WriteLine feeds one line, without its line break, to the stream.
func (s *Stream) WriteLine(line string) error {
	for {
		v, body := s.m.feed(line)
		switch v {
		case outside:
			return s.emit(line)

		case opened:
			s.pending = append(s.pending[:0], line)
			s.block = Block{Margin: s.m.margin}
			return nil

		case extended:
			s.pending = append(s.pending, line)
			s.block.Lines = append(s.block.Lines, body)
			return nil

		case closed:
			s.pending = append(s.pending, line)
			s.block.Lines = append(s.block.Lines, body)
			summary, ok := s.c.Compact(s.block)
			if !ok {
				return s.release()
			}
			s.pending = s.pending[:0]
			s.block = Block{}
			return s.emit(summary.Render())

		case rejected:
			s.c.logger.Debug("Releasing incomplete traceback",
				zap.Int("lines", len(s.pending)))
			if err := s.release(); err != nil {
				return err
			}
			// The line that broke the candidate may open a new one.
		}
	}
}

// Pending reports whether lines are being held back for a candidate block.
func (s *Stream) Pending() bool {
	return len(s.pending) > 0
}

// Flush abandons any candidate block and emits its held-back lines unchanged.
func (s *Stream) Flush() error {
	s.m.reset()
	return s.release()
}

func (s *Stream) release() error {
	lines := s.pending
	s.pending = nil
	s.block = Block{}
	for _, line := range lines {
		if err := s.emit(line); err != nil {
			return err
		}
	}
	return nil
}
