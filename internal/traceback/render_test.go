package traceback

import "testing"

func TestSummary_Render(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{
			name: "frames with and without snippets",
			summary: Summary{
				Fingerprint: "0123456789",
				Exception:   Exception{Kind: "KeyError", Message: "'id'"},
				Frames: []SelectedFrame{
					{File: "handlers.py", Line: 50, Routine: "handle_request", Snippet: "result = await process_data(data)"},
					{File: "processor.py", Line: 30, Routine: "process_data"},
				},
			},
			want: "<COMPACT_PY_TRACEBACK fingerprint=0123456789>\n" +
				"Exception: KeyError: 'id'\n" +
				"\n" +
				"Relevant frames:\n" +
				"- handlers.py:50 in handle_request → result = await process_data(data)\n" +
				"- processor.py:30 in process_data\n" +
				"</COMPACT_PY_TRACEBACK>",
		},
		{
			name: "bare exception without frames",
			summary: Summary{
				Fingerprint: "abcdefabcd",
				Exception:   Exception{Kind: "SomeError"},
			},
			want: "<COMPACT_PY_TRACEBACK fingerprint=abcdefabcd>\n" +
				"Exception: SomeError\n" +
				"</COMPACT_PY_TRACEBACK>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.Render(); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestBasename(t *testing.T) {
	tests := map[string]string{
		"/home/user/app/views.py":  "views.py",
		`C:\proj\app\views.py`:     "views.py",
		"views.py":                 "views.py",
		"<frozen runpy>":           "<frozen runpy>",
		"/usr/lib/python3.11/x.py": "x.py",
	}
	for in, want := range tests {
		if got := basename(in); got != want {
			t.Errorf("basename(%q) = %q, want %q", in, got, want)
		}
	}
}
