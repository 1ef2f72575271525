package acpstream

import "encoding/json"

// AdaptNative passes already-canonical ACP frames through unchanged. A
// line must parse to an object carrying a non-empty string "event" field;
// any deviation emits an error event and the line is otherwise ignored
// (§4.F "Native").
func AdaptNative(lines []string) []Event {
	return run(lines, handleNativeFrame)
}

func handleNativeFrame(_ *state, frame map[string]any) []Event {
	if stringField(frame, "event") == "" {
		return []Event{ErrorEvent("native frame missing non-empty \"event\" field: "+TruncateSnippet(marshalCompact(frame)), "")}
	}

	b, err := json.Marshal(frame)
	if err != nil {
		return []Event{ErrorEvent("failed to decode native frame: "+TruncateSnippet(marshalCompact(frame)), "")}
	}

	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return []Event{ErrorEvent("failed to decode native frame: "+TruncateSnippet(marshalCompact(frame)), "")}
	}

	return []Event{ev}
}
