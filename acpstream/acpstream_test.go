package acpstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeFullFixture(t *testing.T) {
	lines := []string{
		`{"type":"assistant","sessionId":"ses_abc","message":{"content":[{"type":"text","text":"hello"}]}}`,
	}
	events := AdaptClaude(lines)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Event: KindSessionStart, ThreadID: "ses_abc"}, events[0])
	assert.Equal(t, Event{Event: KindAgentMessage, Text: "hello"}, events[1])
}

func TestClaudeSessionStartEmittedOnce(t *testing.T) {
	lines := []string{
		`{"type":"assistant","sessionId":"ses_abc","message":{"content":[]}}`,
		`{"type":"assistant","sessionId":"ses_abc","message":{"content":[{"type":"text","text":"again"}]}}`,
	}
	events := AdaptClaude(lines)
	sessionStarts := 0
	for _, e := range events {
		if e.Event == KindSessionStart {
			sessionStarts++
		}
	}
	assert.Equal(t, 1, sessionStarts)
}

func TestClaudeToolStartThenCompletePropagatesKind(t *testing.T) {
	lines := []string{
		`{"type":"assistant","message":{"content":[{"type":"tool_use","id":"t1","name":"bash","input":{"command":"ls"}}]}}`,
		`{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}}`,
	}
	events := AdaptClaude(lines)

	var start, complete *Event
	sessionStarts := 0
	for i := range events {
		switch events[i].Event {
		case KindSessionStart:
			sessionStarts++
		case KindToolStart:
			start = &events[i]
		case KindToolComplete:
			complete = &events[i]
		}
	}
	assert.Equal(t, 1, sessionStarts)
	require.NotNil(t, start)
	require.NotNil(t, complete)
	assert.Equal(t, ToolExec, start.Kind)
	assert.Equal(t, ToolExec, complete.Kind)
	assert.Equal(t, "ls", start.Title)
}

func TestClaudeToolCompleteForUnknownIDHasEmptyKind(t *testing.T) {
	lines := []string{
		`{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"unknown","content":"x"}]}}`,
	}
	events := AdaptClaude(lines)
	require.Len(t, events, 2)
	assert.Equal(t, KindSessionStart, events[0].Event)
	assert.Equal(t, ToolKind(""), events[1].Kind)
}

func TestClaudeSessionStartEmittedWithEmptyThreadIDWhenNeverSeen(t *testing.T) {
	lines := []string{
		`{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"again"}]}}`,
	}
	events := AdaptClaude(lines)
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Event: KindSessionStart, ThreadID: ""}, events[0])

	sessionStarts := 0
	for _, e := range events {
		if e.Event == KindSessionStart {
			sessionStarts++
		}
	}
	assert.Equal(t, 1, sessionStarts)
}

func TestMalformedLineEmitsErrorAndContinues(t *testing.T) {
	lines := []string{
		`not json at all`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"after"}]}}`,
	}
	events := AdaptClaude(lines)
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, KindError, events[0].Event)
	assert.Contains(t, events[0].Message, "not json at all")
	assert.LessOrEqual(t, len(events[0].Message), 220)

	found := false
	for _, e := range events {
		if e.Event == KindAgentMessage && e.Text == "after" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBlankLinesSkipped(t *testing.T) {
	lines := []string{"", "   ", `{"type":"assistant","message":{"content":[{"type":"text","text":"hi"}]}}`}
	events := AdaptClaude(lines)
	require.Len(t, events, 2)
	assert.Equal(t, KindSessionStart, events[0].Event)
	assert.Equal(t, KindAgentMessage, events[1].Event)
}

func TestCodexTruncatesCommandTitleAt80Chars(t *testing.T) {
	longCommand := strings.Repeat("a", 100)
	lines := []string{
		`{"type":"item.started","item":{"id":"c1","type":"command_execution","command":"` + longCommand + `"}}`,
	}
	events := AdaptCodex(lines)
	require.Len(t, events, 2)
	assert.Equal(t, KindSessionStart, events[0].Event)
	assert.Equal(t, KindToolStart, events[1].Event)
	assert.Len(t, events[1].Title, 80)
	assert.True(t, strings.HasSuffix(events[1].Title, "..."))
}

func TestCodexReasoningUsesFirstAvailableField(t *testing.T) {
	lines := []string{
		`{"type":"item.completed","item":{"id":"r1","type":"reasoning","summary":"thinking it through"}}`,
	}
	events := AdaptCodex(lines)
	require.Len(t, events, 2)
	assert.Equal(t, KindSessionStart, events[0].Event)
	assert.Equal(t, KindReasoning, events[1].Event)
	assert.Equal(t, "thinking it through", events[1].Text)
}

func TestCodexSessionStartEmittedWithEmptyThreadIDWhenThreadStartedNeverSeen(t *testing.T) {
	lines := []string{
		`{"type":"item.started","item":{"id":"c1","type":"command_execution","command":"ls"}}`,
	}
	events := AdaptCodex(lines)
	require.NotEmpty(t, events)
	assert.Equal(t, Event{Event: KindSessionStart, ThreadID: ""}, events[0])
}

func TestCodexSynthesizesThreadIDWhenMissing(t *testing.T) {
	lines := []string{`{"type":"thread.started"}`}
	events := AdaptCodex(lines)
	require.Len(t, events, 1)
	assert.Equal(t, KindSessionStart, events[0].Event)
	assert.NotEmpty(t, events[0].ThreadID)
}

func TestCodexUnknownToolNameIsOther(t *testing.T) {
	lines := []string{
		`{"type":"item.started","item":{"id":"m1","type":"mcp_tool_call","description":"call a tool"}}`,
	}
	events := AdaptCodex(lines)
	require.Len(t, events, 2)
	assert.Equal(t, ToolOther, events[1].Kind)
}

func TestNativePassesValidEventsThrough(t *testing.T) {
	lines := []string{`{"event":"agent_message","text":"hi"}`}
	events := AdaptNative(lines)
	require.Len(t, events, 1)
	assert.Equal(t, KindAgentMessage, events[0].Event)
	assert.Equal(t, "hi", events[0].Text)
}

func TestNativeRejectsMissingEventField(t *testing.T) {
	lines := []string{`{"text":"hi"}`}
	events := AdaptNative(lines)
	require.Len(t, events, 1)
	assert.Equal(t, KindError, events[0].Event)
}

func TestTruncateTitleExactly80WithEllipsis(t *testing.T) {
	title := TruncateTitle(strings.Repeat("x", 200))
	assert.Len(t, title, 80)
	assert.True(t, strings.HasSuffix(title, "..."))
}

func TestTruncateTitleShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "short", TruncateTitle("short"))
}
