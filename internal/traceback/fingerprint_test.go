package traceback

import (
	"regexp"
	"testing"
)

var hexFingerprint = regexp.MustCompile(`^[0-9a-f]{10}$`)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name   string
		frames []Frame
		lines  []string
		want   string
	}{
		{
			name:   "single frame",
			frames: []Frame{{Location: "test.py", Line: 1, Routine: "<module>"}},
			lines:  []string{"ValueError: test"},
			want:   "e6028e86d0",
		},
		{
			name:  "no frames",
			lines: []string{"SomeError"},
			want:  "3d4c367eae",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.frames, tt.lines)
			if got != tt.want {
				t.Errorf("Fingerprint() = %q, want %q", got, tt.want)
			}
			if !hexFingerprint.MatchString(got) {
				t.Errorf("Fingerprint() = %q is not 10 lowercase hex characters", got)
			}
		})
	}
}

func TestFingerprint_Sensitivity(t *testing.T) {
	base := []Frame{
		{Location: "/srv/app/a.py", Line: 10, Routine: "outer"},
		{Location: "/srv/app/b.py", Line: 20, Routine: "inner"},
	}
	lines := []string{"KeyError: 'id'"}
	want := Fingerprint(base, lines)

	if again := Fingerprint(base, lines); again != want {
		t.Fatalf("Fingerprint() is not deterministic: %q then %q", want, again)
	}

	mutations := map[string]func(f *Frame){
		"location": func(f *Frame) { f.Location = "/srv/app/c.py" },
		"line":     func(f *Frame) { f.Line = 21 },
		"routine":  func(f *Frame) { f.Routine = "other" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			changed := append([]Frame(nil), base...)
			mutate(&changed[1])
			if got := Fingerprint(changed, lines); got == want {
				t.Errorf("changing %s did not change the fingerprint", name)
			}
		})
	}

	t.Run("exception", func(t *testing.T) {
		if got := Fingerprint(base, []string{"KeyError: 'name'"}); got == want {
			t.Error("changing the exception did not change the fingerprint")
		}
	})

	t.Run("snippet is not part of the identity", func(t *testing.T) {
		withSnippet := append([]Frame(nil), base...)
		withSnippet[0].Snippet = "outer()"
		if got := Fingerprint(withSnippet, lines); got != want {
			t.Error("changing a snippet changed the fingerprint")
		}
	})
}
