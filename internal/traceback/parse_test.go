package traceback

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantFrames  []Frame
		wantExc     Exception
		wantDropped int
	}{
		{
			name:  "frames with source lines",
			input: simpleTraceback,
			wantFrames: []Frame{
				{Location: "/home/user/test.py", Line: 10, Routine: "main", Snippet: "result = divide(5, 0)", Index: 0},
				{Location: "/home/user/test.py", Line: 5, Routine: "divide", Snippet: "return a / b", Index: 1},
			},
			wantExc: Exception{
				Kind:    "ZeroDivisionError",
				Message: "division by zero",
				Lines:   []string{"ZeroDivisionError: division by zero"},
			},
		},
		{
			name: "frame without source line",
			input: `Traceback (most recent call last):
  File "test.py", line 1, in <module>
ValueError: test`,
			wantFrames: []Frame{
				{Location: "test.py", Line: 1, Routine: "<module>", Index: 0},
			},
			wantExc: Exception{Kind: "ValueError", Message: "test", Lines: []string{"ValueError: test"}},
		},
		{
			name: "quoted message",
			input: `Traceback (most recent call last):
  File "test.py", line 1, in <module>
    data['key']
KeyError: 'key'`,
			wantFrames: []Frame{
				{Location: "test.py", Line: 1, Routine: "<module>", Snippet: "data['key']", Index: 0},
			},
			wantExc: Exception{Kind: "KeyError", Message: "'key'", Lines: []string{"KeyError: 'key'"}},
		},
		{
			name: "invalid line number is dropped",
			input: `Traceback (most recent call last):
  File "test.py", line INVALID, in func
    code here
SomeError`,
			wantFrames:  nil,
			wantExc:     Exception{Kind: "SomeError", Lines: []string{"SomeError"}},
			wantDropped: 1,
		},
		{
			name: "dropped frame does not shift the next snippet",
			input: `Traceback (most recent call last):
  File "a.py", line 0, in outer
    outer()
  File "b.py", line 7, in inner
    inner()
RuntimeError: nope`,
			wantFrames: []Frame{
				{Location: "b.py", Line: 7, Routine: "inner", Snippet: "inner()", Index: 0},
			},
			wantExc:     Exception{Kind: "RuntimeError", Message: "nope", Lines: []string{"RuntimeError: nope"}},
			wantDropped: 1,
		},
		{
			name: "caret markers are ignored",
			input: `Traceback (most recent call last):
  File "/srv/app/calc.py", line 3, in <module>
    print(1 / 0)
          ~~^~~
ZeroDivisionError: division by zero`,
			wantFrames: []Frame{
				{Location: "/srv/app/calc.py", Line: 3, Routine: "<module>", Snippet: "print(1 / 0)", Index: 0},
			},
			wantExc: Exception{Kind: "ZeroDivisionError", Message: "division by zero", Lines: []string{"ZeroDivisionError: division by zero"}},
		},
		{
			name: "recursion marker is not a snippet",
			input: `Traceback (most recent call last):
  File "r.py", line 2, in f
  [Previous line repeated 996 more times]
RecursionError: maximum recursion depth exceeded`,
			wantFrames: []Frame{
				{Location: "r.py", Line: 2, Routine: "f", Index: 0},
			},
			wantExc: Exception{Kind: "RecursionError", Message: "maximum recursion depth exceeded", Lines: []string{"RecursionError: maximum recursion depth exceeded"}},
		},
		{
			name: "dotted exception with empty message",
			input: `Traceback (most recent call last):
  File "t.py", line 4, in run
    raise errors.Boom()
errors.Boom:`,
			wantFrames: []Frame{
				{Location: "t.py", Line: 4, Routine: "run", Snippet: "raise errors.Boom()", Index: 0},
			},
			wantExc: Exception{Kind: "errors.Boom", Lines: []string{"errors.Boom:"}},
		},
		{
			name: "unicode",
			input: `Traceback (most recent call last):
  File "tëst.py", line 1, in función
    raise ValueError("Erreur: ñoño")
ValueError: Erreur: ñoño`,
			wantFrames: []Frame{
				{Location: "tëst.py", Line: 1, Routine: "función", Snippet: `raise ValueError("Erreur: ñoño")`, Index: 0},
			},
			wantExc: Exception{Kind: "ValueError", Message: "Erreur: ñoño", Lines: []string{"ValueError: Erreur: ñoño"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb, ok := ParseText(tt.input)
			if !ok {
				t.Fatal("ParseText() found no traceback")
			}
			if diff := cmp.Diff(tt.wantFrames, tb.Frames); diff != "" {
				t.Errorf("Frames mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantExc, tb.Exception); diff != "" {
				t.Errorf("Exception mismatch (-want +got):\n%s", diff)
			}
			if tb.Dropped != tt.wantDropped {
				t.Errorf("Dropped = %d, want %d", tb.Dropped, tt.wantDropped)
			}
		})
	}
}

func TestParseText_NoTraceback(t *testing.T) {
	for _, input := range []string{"", "just text", "Traceback (most recent call last):\n"} {
		if _, ok := ParseText(input); ok {
			t.Errorf("ParseText(%q) found a traceback", input)
		}
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	if _, ok := Parse(Block{}); ok {
		t.Error("Parse() accepted a block without lines")
	}
}

func TestException_String(t *testing.T) {
	if got := (Exception{Kind: "ValueError", Message: "bad"}).String(); got != "ValueError: bad" {
		t.Errorf("String() = %q", got)
	}
	if got := (Exception{Kind: "KeyboardInterrupt"}).String(); got != "KeyboardInterrupt" {
		t.Errorf("String() = %q", got)
	}
}
