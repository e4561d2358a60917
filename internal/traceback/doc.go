// Package traceback detects Python tracebacks inside arbitrary text and
// replaces them with compact, deterministic summaries for LLM consumption.
//
// The pipeline runs in one pass over the input:
//
//  1. Matching - a line-oriented state machine finds candidate blocks that
//     start at "Traceback (most recent call last):" and end at the first
//     terminal exception line.
//  2. Parsing - each block becomes a list of frames plus the exception line.
//  3. Scoring and selection - frames are ranked by project membership,
//     library membership and recency, truncated to the frame limit and put
//     back in chronological order.
//  4. Fingerprinting - a short SHA-256 prefix over the selected frames and
//     the exception identifies the error for deduplication.
//  5. Rendering - the block is replaced with a <COMPACT_PY_TRACEBACK> summary.
//
// Basic usage:
//
//	compactor, err := traceback.New(
//	    traceback.WithProjectRoot("/home/me/project"),
//	    traceback.WithMaxFrames(4),
//	)
//	if err != nil {
//	    return err
//	}
//	compacted := compactor.Transform(prompt)
//
// Text that contains no traceback is returned unchanged, and a compacted
// summary never matches again, so Transform is idempotent. A Compactor holds
// no mutable state and is safe for concurrent use.
package traceback
