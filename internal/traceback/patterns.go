package traceback

import (
	"path"
	"regexp"
	"strings"
)

var (
	// headerPattern matches the line that opens a traceback. The captured
	// margin is any leading indentation, optionally behind a quote marker or
	// the "E" prefix pytest puts in front of failure output.
	headerPattern = regexp.MustCompile(`^([ \t]*(?:[>E][ \t]+)?)Traceback[ \t]*\(most[ \t]+recent[ \t]+call[ \t]+last\):$`)

	// framePattern matches `  File "app.py", line 10, in main`. The line
	// number is captured loosely so that a malformed frame still keeps the
	// block together; the parser drops it later.
	framePattern = regexp.MustCompile(`^[ \t]+File[ \t]+"(.+?)",[ \t]*line[ \t]+([^,\s]+),[ \t]*in[ \t]+(.+)$`)

	// terminalPattern matches `ValueError: message` or a bare `KeyboardInterrupt`.
	terminalPattern = regexp.MustCompile(`^([A-Za-z_][\w.]*)(?::[ \t]*(.*))?$`)

	// caretPattern matches the ^^^^ / ~~~~ markers newer interpreters print
	// under a source line.
	caretPattern = regexp.MustCompile(`^[ \t]*[~^]+[ \t~^]*$`)

	// repeatPattern matches the marker printed when recursion repeats a frame.
	repeatPattern = regexp.MustCompile(`^[ \t]*\[Previous line repeated \d+ more times?\]$`)
)

// DefaultLibrarySegments are the path fragments that mark a frame as living in
// the standard library or an installed third-party package.
func DefaultLibrarySegments() []string {
	return []string{
		"site-packages/",
		"dist-packages/",
		"/lib/python",
		"/lib64/python",
		"/lib/pypy",
		"/Lib/",
		"<frozen ",
		".egg/",
	}
}

// PathClassifier decides whether a frame location belongs to library code.
type PathClassifier interface {
	IsLibrary(location string) bool
}

// ClassifierFunc adapts a plain function to PathClassifier.
type ClassifierFunc func(location string) bool

// IsLibrary implements PathClassifier.
func (f ClassifierFunc) IsLibrary(location string) bool {
	return f(location)
}

// SegmentClassifier reports a location as library code when it contains any
// of its segments. Backslashes are treated as forward slashes so that Windows
// paths match the same segments.
type SegmentClassifier struct {
	Segments []string
}

// NewSegmentClassifier returns a classifier for the given segments, falling
// back to DefaultLibrarySegments when none are given.
func NewSegmentClassifier(segments []string) SegmentClassifier {
	if len(segments) == 0 {
		segments = DefaultLibrarySegments()
	}
	return SegmentClassifier{Segments: segments}
}

// IsLibrary implements PathClassifier.
func (c SegmentClassifier) IsLibrary(location string) bool {
	if location == "" {
		return false
	}
	loc := toSlash(location)
	for _, seg := range c.Segments {
		if seg != "" && strings.Contains(loc, toSlash(seg)) {
			return true
		}
	}
	return false
}

// underRoot reports whether location lies inside root. The comparison is
// purely textual and works on whole path elements, so "/srv/app" does not
// contain "/srv/application/x.py".
func underRoot(location, root string) bool {
	if root == "" || location == "" {
		return false
	}
	loc := path.Clean(toSlash(location))
	dir := path.Clean(toSlash(root))
	if dir == "/" {
		return strings.HasPrefix(loc, "/")
	}
	return loc == dir || strings.HasPrefix(loc, dir+"/")
}

// basename returns the last element of a slash or backslash separated path.
func basename(location string) string {
	if i := strings.LastIndexAny(location, `/\`); i >= 0 {
		return location[i+1:]
	}
	return location
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func isIndented(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}
