// Package acpstream normalizes heterogeneous coding-agent transcript
// dialects (Claude-style, Codex-style, and a passthrough "native" dialect)
// into a single canonical event stream (§4.F), the way the teacher's
// runtime event model normalizes its own agent/tool/usage events into one
// tagged union before it reaches a UI.
package acpstream

import "encoding/json"

// Kind discriminates an ACP event.
type Kind string

const (
	KindSessionStart  Kind = "session_start"
	KindAgentMessage  Kind = "agent_message"
	KindReasoning     Kind = "reasoning"
	KindToolStart     Kind = "tool_start"
	KindToolComplete  Kind = "tool_complete"
	KindUsage         Kind = "usage"
	KindError         Kind = "error"
)

// ToolKind categorizes a tool_start/tool_complete event.
type ToolKind string

const (
	ToolExec   ToolKind = "exec"
	ToolRead   ToolKind = "read"
	ToolEdit   ToolKind = "edit"
	ToolSearch ToolKind = "search"
	ToolThink  ToolKind = "think"
	ToolOther  ToolKind = "other"
)

// Event is the canonical ACP event. Every dialect adapter emits these;
// fields not relevant to Event.Kind are left at their zero value.
type Event struct {
	Event Kind `json:"event"`

	// session_start
	ThreadID string `json:"threadId,omitempty"`

	// agent_message / reasoning
	Text string `json:"text,omitempty"`

	// tool_start / tool_complete
	ID    string   `json:"id,omitempty"`
	Kind  ToolKind `json:"kind,omitempty"`
	Title string   `json:"title,omitempty"`
	Input any      `json:"input,omitempty"`
	Path  string   `json:"path,omitempty"`

	// usage
	InputTokens  *int64   `json:"inputTokens,omitempty"`
	OutputTokens *int64   `json:"outputTokens,omitempty"`
	CachedTokens *int64   `json:"cachedTokens,omitempty"`
	CostUsd      *float64 `json:"costUsd,omitempty"`

	// error
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// SessionStart builds a session_start event.
func SessionStart(threadID string) Event {
	return Event{Event: KindSessionStart, ThreadID: threadID}
}

// AgentMessage builds an agent_message event.
func AgentMessage(text string) Event {
	return Event{Event: KindAgentMessage, Text: text}
}

// Reasoning builds a reasoning event.
func Reasoning(text string) Event {
	return Event{Event: KindReasoning, Text: text}
}

// ToolStart builds a tool_start event.
func ToolStart(id string, kind ToolKind, title string, input any) Event {
	return Event{Event: KindToolStart, ID: id, Kind: kind, Title: title, Input: input}
}

// ToolComplete builds a tool_complete event. kind is empty when the id was
// never seen in a tool_start.
func ToolComplete(id string, kind ToolKind, path string) Event {
	return Event{Event: KindToolComplete, ID: id, Kind: kind, Path: path}
}

// Usage builds a usage event.
func Usage(inputTokens, outputTokens, cachedTokens *int64, costUsd *float64) Event {
	return Event{
		Event:        KindUsage,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CachedTokens: cachedTokens,
		CostUsd:      costUsd,
	}
}

// ErrorEvent builds an error event. stack is included only if non-empty.
func ErrorEvent(message, stack string) Event {
	return Event{Event: KindError, Message: message, Stack: stack}
}

// truncate mirrors the 80-char title rule and the 200-char malformed-line
// rule (§4.F, §8 property 6) with one shared helper, parameterized by
// limit and ellipsis.
func truncate(s string, limit int, ellipsis string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	cut := limit - len([]rune(ellipsis))
	if cut < 0 {
		cut = 0
	}
	return string(r[:cut]) + ellipsis
}

// TruncateTitle truncates a tool title to 80 characters with an ellipsis
// suffix.
func TruncateTitle(s string) string {
	return truncate(s, 80, "...")
}

// TruncateSnippet truncates a malformed input line to 200 characters for
// inclusion in an error event's message.
func TruncateSnippet(s string) string {
	return truncate(s, 200, "...")
}

func marshalCompact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
