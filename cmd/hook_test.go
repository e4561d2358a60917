package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/tracecompact/internal/hook"
)

func newHookTestCmd(in string, out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "hook"}
	cmd.SetIn(strings.NewReader(in))
	cmd.SetOut(out)
	return cmd
}

func hookInput(t *testing.T, fields map[string]any) string {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestHookUserPrompt(t *testing.T) {
	viper.Reset()

	var out bytes.Buffer
	cmd := newHookTestCmd(hookInput(t, map[string]any{
		"hook_event_name": "UserPromptSubmit",
		"prompt":          "fix this:\n" + zeroDivisionTrace,
	}), &out)

	if err := runHook(cmd, nil); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}

	var reply hook.PromptOutput
	if err := json.Unmarshal(out.Bytes(), &reply); err != nil {
		t.Fatalf("failed to unmarshal reply: %v\noutput: %s", err, out.String())
	}
	if !strings.HasPrefix(reply.UpdatedPrompt, "fix this:\n<COMPACT_PY_TRACEBACK") {
		t.Errorf("unexpected prompt %q", reply.UpdatedPrompt)
	}
}

func TestHookToolsFromConfig(t *testing.T) {
	viper.Reset()
	viper.Set("hook.tools", []string{"Shell"})

	input := hookInput(t, map[string]any{
		"hook_event_name": "PostToolUse",
		"tool_name":       "Bash",
		"tool_response":   map[string]any{"stdout": zeroDivisionTrace},
	})

	var out bytes.Buffer
	if err := runHook(newHookTestCmd(input, &out), nil); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected Bash output to pass through, got %q", out.String())
	}
}

func TestHookInvalidInput(t *testing.T) {
	viper.Reset()

	var out bytes.Buffer
	if err := runHook(newHookTestCmd("not json", &out), nil); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}
