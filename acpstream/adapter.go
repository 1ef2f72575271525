package acpstream

import (
	"encoding/json"
	"strings"
)

// frameHandler processes one decoded JSON frame against the adapter's
// running state and returns zero or more ACP events.
type frameHandler func(st *state, frame map[string]any) []Event

// state is the per-call mutable state a dialect carries across frames:
// whether session_start has already been emitted, and the id->kind map
// used to propagate tool_start's kind onto the matching tool_complete
// (§4.F "tool kind tracking"). It is local to one adapter invocation; no
// state survives across calls (§9 "stream adapter as pipeline").
type state struct {
	sessionEmitted bool
	toolKinds      map[string]ToolKind
}

func newState() *state {
	return &state{toolKinds: make(map[string]ToolKind)}
}

// emitSessionStart returns the session_start event exactly once; subsequent
// calls are no-ops regardless of threadID.
func (st *state) emitSessionStart(threadID string) []Event {
	if st.sessionEmitted {
		return nil
	}
	st.sessionEmitted = true
	return []Event{SessionStart(threadID)}
}

func (st *state) recordToolKind(id string, kind ToolKind) {
	st.toolKinds[id] = kind
}

// resolveToolKind returns the kind recorded for id, or "" if the id was
// never seen in a tool_start (§4.F: "emit with kind: undefined").
func (st *state) resolveToolKind(id string) ToolKind {
	return st.toolKinds[id]
}

// run drives the shared line discipline (trim, skip empty, parse-or-error)
// over lines and dispatches each decoded frame to handle.
func run(lines []string, handle frameHandler) []Event {
	st := newState()
	events := make([]Event, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		var frame map[string]any
		if err := json.Unmarshal([]byte(trimmed), &frame); err != nil {
			events = append(events, ErrorEvent("failed to parse line: "+TruncateSnippet(trimmed), ""))
			continue
		}

		events = append(events, handle(st, frame)...)
	}

	return events
}

// stringField reads a string field from a decoded JSON object, returning
// "" if absent or of the wrong type.
func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func objectField(obj map[string]any, key string) map[string]any {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func arrayField(obj map[string]any, key string) []any {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	a, _ := v.([]any)
	return a
}

func numberField(obj map[string]any, key string) *int64 {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

func floatField(obj map[string]any, key string) *float64 {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

// deriveTitle extracts the most specific field available for a tool's
// title, falling back to the tool's name, then truncates at 80 characters
// (§4.F "title derivation").
func deriveTitle(input map[string]any, toolName string) string {
	for _, key := range []string{"command", "file_path", "notebook_path", "pattern", "description"} {
		if v := stringField(input, key); v != "" {
			return TruncateTitle(v)
		}
	}
	return TruncateTitle(toolName)
}

// classifyToolName maps a free-form tool name to a ToolKind, used when a
// dialect doesn't carry an explicit kind of its own (§4.F "unknown tool
// name => kind: other").
func classifyToolName(name string) ToolKind {
	switch strings.ToLower(name) {
	case "bash", "exec", "execute", "command_execution":
		return ToolExec
	case "read", "read_file":
		return ToolRead
	case "edit", "write", "file_edit", "notebook_edit":
		return ToolEdit
	case "grep", "glob", "search":
		return ToolSearch
	case "think", "thinking", "reasoning":
		return ToolThink
	default:
		return ToolOther
	}
}
