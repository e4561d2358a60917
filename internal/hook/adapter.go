package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// Adapter compacts the text carried by hook events.
type Adapter struct {
	opts        []traceback.Option
	projectRoot string
	tools       []string
	logger      *zap.Logger
}

// NewAdapter creates an Adapter. opts configure the compactor for every
// event. When projectRoot is empty the event's working directory is used
// as the project root. tools lists the tool names whose PostToolUse output
// is compacted.
func NewAdapter(opts []traceback.Option, projectRoot string, tools []string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		opts:        opts,
		projectRoot: projectRoot,
		tools:       tools,
		logger:      logger,
	}
}

// Handle returns the reply for ev, or nil when the event passes through
// unchanged.
func (a *Adapter) Handle(ev Event) (any, error) {
	switch ev.EventName {
	case UserPromptSubmit:
		return a.handlePrompt(ev)
	case PostToolUse:
		return a.handleTool(ev)
	default:
		a.logger.Debug("Ignoring hook event", zap.String("event", string(ev.EventName)))
		return nil, nil
	}
}

// Run reads one event from r and writes the reply, if any, to w. Input that
// is not a hook event passes through silently.
func (a *Adapter) Run(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read hook event: %w", err)
	}

	ev, err := ParseEvent(data)
	if err != nil {
		a.logger.Debug("Passing through unparsable hook input", zap.Error(err))
		return nil
	}

	reply, err := a.Handle(ev)
	if err != nil || reply == nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(reply)
}

func (a *Adapter) handlePrompt(ev Event) (any, error) {
	if ev.Prompt == nil || strings.TrimSpace(*ev.Prompt) == "" {
		return nil, nil
	}

	c, err := a.compactor(ev)
	if err != nil {
		return nil, err
	}

	updated := c.Transform(*ev.Prompt)
	if updated == *ev.Prompt {
		return nil, nil
	}

	a.logger.Debug("Compacted prompt",
		zap.String("session", ev.SessionID),
		zap.Int("before", len(*ev.Prompt)),
		zap.Int("after", len(updated)))
	return PromptOutput{UpdatedPrompt: updated}, nil
}

func (a *Adapter) handleTool(ev Event) (any, error) {
	if ev.ToolName == nil || !a.tracks(*ev.ToolName) {
		return nil, nil
	}

	resp := ev.ParseToolResponse()
	if resp.Stdout == nil && resp.Stderr == nil {
		return nil, nil
	}

	c, err := a.compactor(ev)
	if err != nil {
		return nil, err
	}

	changed := false
	updated := ToolResponse{}
	if resp.Stdout != nil {
		out := c.Transform(*resp.Stdout)
		changed = changed || out != *resp.Stdout
		updated.Stdout = &out
	}
	if resp.Stderr != nil {
		out := c.Transform(*resp.Stderr)
		changed = changed || out != *resp.Stderr
		updated.Stderr = &out
	}
	if !changed {
		return nil, nil
	}

	a.logger.Debug("Compacted tool response",
		zap.String("session", ev.SessionID),
		zap.String("tool", *ev.ToolName))
	return ToolOutput{HookSpecificOutput: ToolSpecificOutput{
		HookEventName:   PostToolUse,
		UpdatedResponse: updated,
	}}, nil
}

func (a *Adapter) compactor(ev Event) (*traceback.Compactor, error) {
	root := a.projectRoot
	if root == "" {
		root = ev.Cwd
	}
	opts := append(slices.Clone(a.opts), traceback.WithProjectRoot(root), traceback.WithLogger(a.logger))
	return traceback.New(opts...)
}

func (a *Adapter) tracks(tool string) bool {
	return slices.ContainsFunc(a.tools, func(t string) bool {
		return strings.EqualFold(t, tool)
	})
}
