package traceback

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxFrames is the number of frames kept when no limit is configured.
const DefaultMaxFrames = 4

// ErrNegativeMaxFrames is returned when the frame limit is below zero.
var ErrNegativeMaxFrames = errors.New("max frames must not be negative")

// Redactor rewrites sensitive values in rendered text.
type Redactor interface {
	Redact(text string) string
}

// Config is the caller-supplied configuration of one transform.
type Config struct {
	// ProjectRoot biases selection toward frames under this path. Empty
	// disables the bias. The path does not need to exist.
	ProjectRoot string

	// MaxFrames bounds the number of frames in each summary. Zero keeps only
	// the exception.
	MaxFrames int
}

// Compactor replaces tracebacks in text with compact summaries.
//
// Usage:
//
//	compactor, err := traceback.New(
//	    traceback.WithProjectRoot("/home/me/project"),
//	    traceback.WithMaxFrames(3),
//	    traceback.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(compactor.Transform(text))
type Compactor struct {
	maxFrames int
	scorer    Scorer
	redactor  Redactor
	logger    *zap.Logger
}

// Option configures a Compactor.
type Option func(*Compactor)

// WithProjectRoot sets the path whose frames are preferred.
func WithProjectRoot(root string) Option {
	return func(c *Compactor) {
		c.scorer.ProjectRoot = root
	}
}

// WithMaxFrames sets the frame limit per summary.
// Default is 4.
func WithMaxFrames(n int) Option {
	return func(c *Compactor) {
		c.maxFrames = n
	}
}

// WithClassifier replaces the library path heuristic.
func WithClassifier(classifier PathClassifier) Option {
	return func(c *Compactor) {
		if classifier != nil {
			c.scorer.Classifier = classifier
		}
	}
}

// WithRedactor applies r to exception messages and source snippets before
// rendering. Fingerprints are computed from the original text.
func WithRedactor(r Redactor) Option {
	return func(c *Compactor) {
		c.redactor = r
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compactor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Compactor. It fails with ErrNegativeMaxFrames before doing
// anything else when the frame limit is negative.
func New(opts ...Option) (*Compactor, error) {
	c := &Compactor{
		maxFrames: DefaultMaxFrames,
		scorer:    Scorer{Classifier: NewSegmentClassifier(nil)},
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxFrames < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeMaxFrames, c.maxFrames)
	}

	return c, nil
}

// Transform is a convenience wrapper that builds a Compactor from cfg and
// transforms text with it.
//
// Example:
//
//	out, err := traceback.Transform(prompt, traceback.Config{MaxFrames: 4})
func Transform(text string, cfg Config) (string, error) {
	c, err := New(WithProjectRoot(cfg.ProjectRoot), WithMaxFrames(cfg.MaxFrames))
	if err != nil {
		return "", err
	}
	return c.Transform(text), nil
}

// Result is one compacted block together with its location in the input.
type Result struct {
	Start   int     `json:"start" yaml:"start"`
	End     int     `json:"end" yaml:"end"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// Summarize returns a Result for every traceback in text, in order of
// appearance. Blocks that fail to parse are skipped.
func (c *Compactor) Summarize(text string) []Result {
	var results []Result
	for b := range Blocks(text) {
		summary, ok := c.Compact(b)
		if !ok {
			c.logger.Debug("Skipping unparsable traceback block",
				zap.Int("start", b.Start),
				zap.Int("end", b.End))
			continue
		}
		results = append(results, Result{Start: b.Start, End: b.End, Summary: summary})
	}
	return results
}

// Transform replaces every traceback in text with its rendered summary.
// Text outside the tracebacks is preserved byte for byte; text without a
// traceback is returned unchanged.
func (c *Compactor) Transform(text string) string {
	return Apply(text, c.Summarize(text))
}

// Apply splices the rendered summaries of results into text. Results must be
// ordered and non-overlapping, as returned by Summarize.
func Apply(text string, results []Result) string {
	if len(results) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	last := 0
	for _, r := range results {
		sb.WriteString(text[last:r.Start])
		sb.WriteString(r.Summary.Render())
		last = r.End
	}
	sb.WriteString(text[last:])

	return sb.String()
}

// Compact parses, scores, selects and fingerprints one block.
func (c *Compactor) Compact(b Block) (Summary, bool) {
	tb, ok := Parse(b)
	if !ok {
		return Summary{}, false
	}
	if tb.Dropped > 0 {
		c.logger.Debug("Dropped frames with unparsable line numbers",
			zap.Int("dropped", tb.Dropped),
			zap.Int("start", b.Start))
	}
	return c.SummarizeTraceback(tb), true
}

// SummarizeTraceback builds the summary of an already parsed traceback.
func (c *Compactor) SummarizeTraceback(tb Traceback) Summary {
	selected := c.scorer.Select(tb.Frames, c.maxFrames)

	summary := Summary{
		Fingerprint: Fingerprint(selected, tb.Exception.Lines),
		Exception:   c.redactException(tb.Exception),
		Frames:      make([]SelectedFrame, 0, len(selected)),
	}
	for _, f := range selected {
		summary.Frames = append(summary.Frames, SelectedFrame{
			File:     basename(f.Location),
			Location: f.Location,
			Line:     f.Line,
			Routine:  f.Routine,
			Snippet:  c.redact(f.Snippet),
		})
	}

	c.logger.Debug("Compacted traceback",
		zap.String("fingerprint", summary.Fingerprint),
		zap.String("exception", tb.Exception.Kind),
		zap.Int("frames", len(tb.Frames)),
		zap.Int("selected", len(selected)))

	return summary
}

func (c *Compactor) redact(text string) string {
	if c.redactor == nil || text == "" {
		return text
	}
	return c.redactor.Redact(text)
}

func (c *Compactor) redactException(e Exception) Exception {
	if c.redactor == nil {
		return e
	}
	out := Exception{
		Kind:    e.Kind,
		Message: c.redact(e.Message),
		Lines:   make([]string, len(e.Lines)),
	}
	for i, line := range e.Lines {
		out.Lines[i] = c.redact(line)
	}
	return out
}
