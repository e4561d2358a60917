// Package output renders compaction results and reports. It supports text,
// JSON, and YAML formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/tracecompact/internal/analyzer"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// Format represents an output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat converts a string to a Format. An empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be one of %s)", s, strings.Join(Formats(), ", "))
	}
}

// Document is the structured form of one compaction.
type Document struct {
	Source     string  `json:"source,omitempty" yaml:"source,omitempty"`
	Text       string  `json:"text" yaml:"text"`
	Tracebacks []Entry `json:"tracebacks" yaml:"tracebacks"`
}

// Entry is one compacted traceback and its byte range in the input.
type Entry struct {
	Start       int                       `json:"start" yaml:"start"`
	End         int                       `json:"end" yaml:"end"`
	Fingerprint string                    `json:"fingerprint" yaml:"fingerprint"`
	Exception   traceback.Exception       `json:"exception" yaml:"exception"`
	Frames      []traceback.SelectedFrame `json:"frames" yaml:"frames"`
}

// NewDocument builds the document for input text and its results.
func NewDocument(text string, results []traceback.Result) Document {
	doc := Document{
		Text:       traceback.Apply(text, results),
		Tracebacks: make([]Entry, 0, len(results)),
	}
	for _, r := range results {
		doc.Tracebacks = append(doc.Tracebacks, Entry{
			Start:       r.Start,
			End:         r.End,
			Fingerprint: r.Summary.Fingerprint,
			Exception:   r.Summary.Exception,
			Frames:      r.Summary.Frames,
		})
	}
	return doc
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer. Color is off until WithColor is called.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// WithColor enables marker highlighting in text output according to mode.
func (wr *Writer) WithColor(mode ColorMode) *Writer {
	wr.colorize = shouldColorize(mode, wr.w)
	return wr
}

// WriteDocument outputs a compaction in the configured format. Text output
// is the transformed text, terminated by a newline if it is not already.
func (wr *Writer) WriteDocument(doc Document) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(doc)
	case FormatYAML:
		return wr.WriteYAML(doc)
	default:
		return wr.writeText(doc.Text)
	}
}

// WriteDocuments outputs several compactions. Structured formats write a
// single document as an object and several as a list.
func (wr *Writer) WriteDocuments(docs []Document) error {
	if len(docs) == 1 {
		return wr.WriteDocument(docs[0])
	}
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(docs)
	case FormatYAML:
		return wr.WriteYAML(docs)
	default:
		for _, doc := range docs {
			if err := wr.writeText(doc.Text); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteChunk writes one line or summary produced while following a file.
func (wr *Writer) WriteChunk(chunk string) error {
	if wr.colorize {
		chunk = HighlightSummaries(chunk)
	}
	_, err := fmt.Fprintln(wr.w, chunk)
	return err
}

func (wr *Writer) writeText(text string) error {
	if text == "" {
		return nil
	}
	if wr.colorize {
		text = HighlightSummaries(text)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(wr.w, text)
	return err
}

// WriteReport outputs a statistics report in the configured format.
func (wr *Writer) WriteReport(report analyzer.Report) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(report)
	case FormatYAML:
		return wr.WriteYAML(report)
	default:
		return wr.writeReportText(report)
	}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v interface{}) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (wr *Writer) writeReportText(r analyzer.Report) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Inputs:\t%d\n", r.Inputs)
	fmt.Fprintf(tw, "Tracebacks:\t%d\n", r.Blocks)
	fmt.Fprintf(tw, "Unique fingerprints:\t%d\n", r.UniqueFingerprints)
	fmt.Fprintf(tw, "Characters:\t%d -> %d (%.1f%% saved)\n", r.CharsBefore, r.CharsAfter, r.CharSavings)
	fmt.Fprintf(tw, "Tokens (%s):\t%d -> %d (%.1f%% saved)\n", r.TokenCounter, r.TokensBefore, r.TokensAfter, r.TokenSavings)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Repeated) > 0 {
		fmt.Fprintln(wr.w)
		fmt.Fprintln(wr.w, "Repeated tracebacks:")
		tw = tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		for _, fc := range r.Repeated {
			fmt.Fprintf(tw, "  %dx\t%s\t%s\n", fc.Count, fc.Fingerprint, truncate(fc.Exception, 80))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.TopExceptions) > 0 {
		fmt.Fprintln(wr.w)
		fmt.Fprintln(wr.w, "Top exceptions:")
		tw = tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		for _, kc := range r.TopExceptions {
			fmt.Fprintf(tw, "  %s\t%d\t(%.1f%%)\n", kc.Kind, kc.Count, kc.Percent)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// SavingsLine summarizes a report in one line, for stderr.
func SavingsLine(r analyzer.Report) string {
	return fmt.Sprintf("tracecompact: %d traceback(s), %d -> %d chars (%.1f%% saved), %d -> %d tokens (%.1f%% saved)",
		r.Blocks, r.CharsBefore, r.CharsAfter, r.CharSavings, r.TokensBefore, r.TokensAfter, r.TokenSavings)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
