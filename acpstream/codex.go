package acpstream

import "github.com/google/uuid"

// AdaptCodex converts Codex-style transcript frames to ACP events (§4.F).
// Frames are {type, ...} with types thread.started, turn.started,
// turn.failed, turn.completed, item.started, item.completed. Items carry
// {id, type} with type in {command_execution, file_edit, thinking,
// mcp_tool_call, reasoning, agent_message}.
func AdaptCodex(lines []string) []Event {
	return run(lines, handleCodexFrame)
}

func handleCodexFrame(st *state, frame map[string]any) []Event {
	frameType := stringField(frame, "type")

	// session_start fires on the first frame of the sequence regardless of
	// its type: if it isn't thread.started, no thread id is known yet and
	// threadID stays "".
	var threadID string
	if frameType == "thread.started" {
		threadID = stringField(frame, "thread_id")
		if threadID == "" {
			// Codex threads aren't guaranteed to carry an id; synthesize one
			// so downstream consumers always have a stable correlation key.
			threadID = uuid.NewString()
		}
	}
	events := st.emitSessionStart(threadID)

	switch frameType {
	case "item.started":
		events = append(events, handleCodexItemStarted(st, objectField(frame, "item"))...)
	case "item.completed":
		events = append(events, handleCodexItemCompleted(st, objectField(frame, "item"))...)
	case "turn.completed", "turn.failed":
		events = append(events, handleCodexTurnEnded(frame)...)
	}
	return events
}

func codexItemKind(itemType string) ToolKind {
	switch itemType {
	case "command_execution":
		return ToolExec
	case "file_edit":
		return ToolEdit
	case "thinking", "reasoning":
		return ToolThink
	case "mcp_tool_call":
		return ToolOther
	default:
		return ToolOther
	}
}

func handleCodexItemStarted(st *state, item map[string]any) []Event {
	if item == nil {
		return nil
	}
	itemType := stringField(item, "type")
	if itemType == "agent_message" {
		return nil
	}

	id := stringField(item, "id")
	kind := codexItemKind(itemType)
	st.recordToolKind(id, kind)
	title := deriveTitle(item, itemType)
	return []Event{ToolStart(id, kind, title, item)}
}

func handleCodexItemCompleted(st *state, item map[string]any) []Event {
	if item == nil {
		return nil
	}

	id := stringField(item, "id")
	itemType := stringField(item, "type")

	switch itemType {
	case "agent_message":
		text := stringField(item, "text")
		if text == "" {
			return nil
		}
		return []Event{AgentMessage(text)}
	case "reasoning":
		text := firstNonEmpty(
			stringField(item, "text"),
			stringField(item, "content"),
			stringField(item, "summary"),
		)
		if text == "" {
			return nil
		}
		return []Event{Reasoning(text)}
	default:
		kind := st.resolveToolKind(id)
		path := summarizeToolResultContent(item["output"])
		return []Event{ToolComplete(id, kind, path)}
	}
}

func handleCodexTurnEnded(frame map[string]any) []Event {
	inputTokens := numberField(frame, "input_tokens")
	outputTokens := numberField(frame, "output_tokens")
	cachedTokens := numberField(frame, "cached_tokens")
	if inputTokens == nil && outputTokens == nil && cachedTokens == nil {
		if stringField(frame, "type") == "turn.failed" {
			return []Event{ErrorEvent(firstNonEmpty(stringField(frame, "message"), "turn failed"), "")}
		}
		return nil
	}
	return []Event{Usage(inputTokens, outputTokens, cachedTokens, nil)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
