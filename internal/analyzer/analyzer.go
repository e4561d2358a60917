// Package analyzer aggregates compaction results into a report: how many
// tracebacks were found, which ones repeat, what kinds of exceptions occur,
// and how much text and how many tokens compaction saved.
package analyzer

import (
	"sort"

	"github.com/bimmerbailey/tracecompact/internal/tokens"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// DefaultTopN is the number of entries kept in ranked report sections.
const DefaultTopN = 10

// Input is one analysed source together with its compaction results.
type Input struct {
	Name    string
	Text    string
	Results []traceback.Result
}

// FingerprintCount tracks a fingerprint and how often it appears.
type FingerprintCount struct {
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Exception   string `json:"exception" yaml:"exception"`
	Count       int    `json:"count" yaml:"count"`
}

// KindCount tracks an exception kind and how often it appears.
type KindCount struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Report holds aggregate statistics for a set of inputs.
type Report struct {
	Inputs             int                `json:"inputs" yaml:"inputs"`
	Blocks             int                `json:"blocks" yaml:"blocks"`
	UniqueFingerprints int                `json:"unique_fingerprints" yaml:"unique_fingerprints"`
	Repeated           []FingerprintCount `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	TopExceptions      []KindCount        `json:"top_exceptions,omitempty" yaml:"top_exceptions,omitempty"`
	CharsBefore        int                `json:"chars_before" yaml:"chars_before"`
	CharsAfter         int                `json:"chars_after" yaml:"chars_after"`
	TokensBefore       int                `json:"tokens_before" yaml:"tokens_before"`
	TokensAfter        int                `json:"tokens_after" yaml:"tokens_after"`
	TokenCounter       string             `json:"token_counter" yaml:"token_counter"`
	CharSavings        float64            `json:"char_savings_percent" yaml:"char_savings_percent"`
	TokenSavings       float64            `json:"token_savings_percent" yaml:"token_savings_percent"`
}

// Analyzer builds reports from compaction results.
type Analyzer struct {
	counter tokens.Counter
	topN    int
}

// New creates a new Analyzer. A nil counter falls back to the character
// estimate; topN <= 0 selects DefaultTopN.
func New(counter tokens.Counter, topN int) *Analyzer {
	if counter == nil {
		counter = tokens.EstimateCounter{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Analyzer{counter: counter, topN: topN}
}

// Analyze computes the report for the given inputs.
func (a *Analyzer) Analyze(inputs ...Input) Report {
	report := Report{
		Inputs:       len(inputs),
		TokenCounter: a.counter.Name(),
	}

	fingerprints := make(map[string]*FingerprintCount)
	var order []string
	kinds := make(map[string]int)

	for _, in := range inputs {
		after := traceback.Apply(in.Text, in.Results)

		report.CharsBefore += len(in.Text)
		report.CharsAfter += len(after)
		report.TokensBefore += a.counter.Count(in.Text)
		report.TokensAfter += a.counter.Count(after)

		for _, r := range in.Results {
			report.Blocks++
			kinds[r.Summary.Exception.Kind]++

			fp := r.Summary.Fingerprint
			if fc, ok := fingerprints[fp]; ok {
				fc.Count++
				continue
			}
			fingerprints[fp] = &FingerprintCount{
				Fingerprint: fp,
				Exception:   r.Summary.Exception.String(),
				Count:       1,
			}
			order = append(order, fp)
		}
	}

	report.UniqueFingerprints = len(fingerprints)
	report.Repeated = repeated(fingerprints, order, a.topN)
	report.TopExceptions = topKinds(kinds, report.Blocks, a.topN)
	report.CharSavings = Savings(report.CharsBefore, report.CharsAfter)
	report.TokenSavings = Savings(report.TokensBefore, report.TokensAfter)

	return report
}

// Savings returns the percentage by which after is smaller than before.
func Savings(before, after int) float64 {
	if before <= 0 {
		return 0
	}
	return float64(before-after) * 100 / float64(before)
}

// repeated returns fingerprints seen more than once, most frequent first.
// Ties keep the order of first appearance.
func repeated(counts map[string]*FingerprintCount, order []string, n int) []FingerprintCount {
	var out []FingerprintCount
	for _, fp := range order {
		if fc := counts[fp]; fc.Count > 1 {
			out = append(out, *fc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// topKinds extracts the N most frequent exception kinds.
func topKinds(counts map[string]int, total, n int) []KindCount {
	if total == 0 {
		return nil
	}

	result := make([]KindCount, 0, len(counts))
	for kind, count := range counts {
		result = append(result, KindCount{
			Kind:    kind,
			Count:   count,
			Percent: float64(count) * 100 / float64(total),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Kind < result[j].Kind
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}
