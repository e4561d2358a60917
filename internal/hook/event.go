// Package hook adapts agent hook events to traceback compaction. An event
// arrives as one JSON object on stdin; when compaction changes the text the
// event carries, the adapter answers with a JSON object that replaces it.
package hook

import (
	"encoding/json"
	"fmt"
)

// EventType names a hook event.
type EventType string

const (
	UserPromptSubmit EventType = "UserPromptSubmit"
	PostToolUse      EventType = "PostToolUse"
)

// Event is a hook event with the fields the adapter reads. Each event type
// populates only its relevant fields; the rest remain nil.
type Event struct {
	SessionID string    `json:"session_id,omitempty"`
	EventName EventType `json:"hook_event_name"`
	Cwd       string    `json:"cwd,omitempty"`

	// UserPromptSubmit
	Prompt *string `json:"prompt,omitempty"`

	// PostToolUse
	ToolName     *string         `json:"tool_name,omitempty"`
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`
}

// ToolResponse is the part of a tool response that can carry tracebacks.
type ToolResponse struct {
	Stdout *string `json:"stdout,omitempty"`
	Stderr *string `json:"stderr,omitempty"`
}

// PromptOutput replaces the submitted prompt.
type PromptOutput struct {
	UpdatedPrompt string `json:"updatedPrompt"`
}

// ToolOutput replaces a tool response.
type ToolOutput struct {
	HookSpecificOutput ToolSpecificOutput `json:"hookSpecificOutput"`
}

// ToolSpecificOutput is the event-specific part of ToolOutput.
type ToolSpecificOutput struct {
	HookEventName   EventType    `json:"hookEventName"`
	UpdatedResponse ToolResponse `json:"updatedResponse"`
}

// ParseEvent decodes one hook event.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode hook event: %w", err)
	}
	return ev, nil
}

// ParseToolResponse decodes the stdout and stderr of a tool response. A
// response that is not an object, such as a plain string, yields an empty
// ToolResponse.
func (ev Event) ParseToolResponse() ToolResponse {
	var resp ToolResponse
	if len(ev.ToolResponse) == 0 {
		return resp
	}
	if err := json.Unmarshal(ev.ToolResponse, &resp); err != nil {
		return ToolResponse{}
	}
	return resp
}
