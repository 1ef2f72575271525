package acpstream

// AdaptClaude converts Claude-style transcript frames to ACP events (§4.F).
// Frames are {type: "assistant", sessionId?, message: {content: [...]}}
// with inner blocks {type: "text"|"tool_use", ...}, {type: "user",
// message: {content: [{type: "tool_result", tool_use_id, content}]}}, and
// a terminal {type: "result", input_tokens, output_tokens, cost_usd}.
func AdaptClaude(lines []string) []Event {
	return run(lines, handleClaudeFrame)
}

func handleClaudeFrame(st *state, frame map[string]any) []Event {
	// session_start fires on the first frame of the sequence regardless of
	// whether it carries a sessionId: sessionId is optional per frame, so a
	// transcript that never sets it still gets the event, with an empty
	// threadId.
	events := st.emitSessionStart(stringField(frame, "sessionId"))

	switch stringField(frame, "type") {
	case "assistant":
		events = append(events, handleClaudeAssistant(st, frame)...)
	case "user":
		events = append(events, handleClaudeUser(st, frame)...)
	case "result":
		events = append(events, handleClaudeResult(frame)...)
	}

	return events
}

func handleClaudeAssistant(st *state, frame map[string]any) []Event {
	var events []Event
	message := objectField(frame, "message")
	for _, raw := range arrayField(message, "content") {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch stringField(block, "type") {
		case "text":
			if text := stringField(block, "text"); text != "" {
				events = append(events, AgentMessage(text))
			}
		case "tool_use":
			id := stringField(block, "id")
			name := stringField(block, "name")
			input := objectField(block, "input")
			kind := classifyToolName(name)
			st.recordToolKind(id, kind)
			events = append(events, ToolStart(id, kind, deriveTitle(input, name), input))
		}
	}
	return events
}

func handleClaudeUser(st *state, frame map[string]any) []Event {
	var events []Event
	message := objectField(frame, "message")
	for _, raw := range arrayField(message, "content") {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if stringField(block, "type") != "tool_result" {
			continue
		}
		id := stringField(block, "tool_use_id")
		kind := st.resolveToolKind(id)
		path := summarizeToolResultContent(block["content"])
		events = append(events, ToolComplete(id, kind, path))
	}
	return events
}

func summarizeToolResultContent(content any) string {
	switch v := content.(type) {
	case string:
		return TruncateSnippet(v)
	case nil:
		return ""
	default:
		return TruncateSnippet(marshalCompact(v))
	}
}

func handleClaudeResult(frame map[string]any) []Event {
	inputTokens := numberField(frame, "input_tokens")
	outputTokens := numberField(frame, "output_tokens")
	costUsd := floatField(frame, "cost_usd")
	if inputTokens == nil && outputTokens == nil && costUsd == nil {
		return nil
	}
	return []Event{Usage(inputTokens, outputTokens, nil, costUsd)}
}
