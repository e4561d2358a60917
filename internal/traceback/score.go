package traceback

import (
	"cmp"
	"slices"
)

// Score weights.
const (
	ProjectBonus  = 100
	UserCodeBonus = 10
)

// Scorer ranks frames by how likely they are to explain the error.
type Scorer struct {
	ProjectRoot string
	Classifier  PathClassifier
}

// Score returns the relevance of a frame. Every frame starts at its Index,
// so frames nearer the error site score higher. Frames under ProjectRoot gain
// ProjectBonus and frames outside library code gain UserCodeBonus.
func (s Scorer) Score(f Frame) int {
	score := f.Index
	if underRoot(f.Location, s.ProjectRoot) {
		score += ProjectBonus
	}
	if s.Classifier == nil || !s.Classifier.IsLibrary(f.Location) {
		score += UserCodeBonus
	}
	return score
}

// ScoredFrame is a frame with its relevance score.
type ScoredFrame struct {
	Frame
	Score int
}

// Rank scores frames and orders them by descending score, breaking ties by
// ascending Index.
func (s Scorer) Rank(frames []Frame) []ScoredFrame {
	ranked := make([]ScoredFrame, len(frames))
	for i, f := range frames {
		ranked[i] = ScoredFrame{Frame: f, Score: s.Score(f)}
	}
	slices.SortFunc(ranked, func(a, b ScoredFrame) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked
}

// Select collapses duplicate frames, keeps the maxFrames most relevant ones
// and returns them in chronological order. The result has
// min(maxFrames, distinct frames) entries.
func (s Scorer) Select(frames []Frame, maxFrames int) []Frame {
	if maxFrames <= 0 {
		return nil
	}

	ranked := s.Rank(Dedupe(frames))
	if len(ranked) > maxFrames {
		ranked = ranked[:maxFrames]
	}

	selected := make([]Frame, len(ranked))
	for i, sf := range ranked {
		selected[i] = sf.Frame
	}
	slices.SortFunc(selected, func(a, b Frame) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return selected
}

// Dedupe drops frames whose location, line and routine repeat an earlier
// frame, keeping the first occurrence.
func Dedupe(frames []Frame) []Frame {
	seen := make(map[frameKey]struct{}, len(frames))
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		k := f.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
