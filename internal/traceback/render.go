package traceback

import (
	"fmt"
	"strings"
)

// Markers delimiting a compact summary. Downstream consumers match on them,
// so they must not change.
const (
	OpenMarker  = "<COMPACT_PY_TRACEBACK fingerprint=%s>"
	CloseMarker = "</COMPACT_PY_TRACEBACK>"
)

// SelectedFrame is a frame as it appears in a summary.
type SelectedFrame struct {
	File     string `json:"file" yaml:"file"`
	Location string `json:"location" yaml:"location"`
	Line     int    `json:"line" yaml:"line"`
	Routine  string `json:"routine" yaml:"routine"`
	Snippet  string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// Summary is the compact form of one traceback.
type Summary struct {
	Fingerprint string          `json:"fingerprint" yaml:"fingerprint"`
	Exception   Exception       `json:"exception" yaml:"exception"`
	Frames      []SelectedFrame `json:"frames" yaml:"frames"`
}

// Render produces the textual summary:
//
//	<COMPACT_PY_TRACEBACK fingerprint=0123456789>
//	Exception: KeyError: 'id'
//
//	Relevant frames:
//	- handlers.py:50 in handle_request → result = await process_data(data)
//	</COMPACT_PY_TRACEBACK>
//
// The blank line and the frame section are left out when no frame was
// selected, and the arrow is left out for frames without a source snippet.
func (s Summary) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, OpenMarker+"\n", s.Fingerprint)
	fmt.Fprintf(&sb, "Exception: %s\n", s.Exception)

	if len(s.Frames) > 0 {
		sb.WriteString("\nRelevant frames:\n")
		for _, f := range s.Frames {
			fmt.Fprintf(&sb, "- %s:%d in %s", f.File, f.Line, f.Routine)
			if f.Snippet != "" {
				sb.WriteString(" → " + f.Snippet)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(CloseMarker)
	return sb.String()
}
