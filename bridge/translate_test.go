package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiwat-s/relayd/core"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/tools"
)

func TestFlattenMessages_Blocks(t *testing.T) {
	msgs := FlattenMessages([]InboundMessage{
		{Role: "user", Content: json.RawMessage(`[{"type":"text","text":"first"},{"type":"image","source":"ignored"},{"type":"text","text":"second"}]`)},
		{Role: "assistant", Content: json.RawMessage(`[{"type":"text","text":"reply"}]`)},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "first\nsecond", msgs[0].Content)
	assert.Equal(t, "reply", msgs[1].Content)
}

func TestFlattenMessages_StringContent(t *testing.T) {
	msgs := FlattenMessages([]InboundMessage{
		{Role: "user", Content: json.RawMessage(`"plain string"`)},
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "plain string", msgs[0].Content)
}

func TestFlattenMessages_EmptyAndMalformedContent(t *testing.T) {
	msgs := FlattenMessages([]InboundMessage{
		{Role: "user"},
		{Role: "user", Content: json.RawMessage(`{"not":"blocks"}`)},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[0].Content)
	assert.Equal(t, "", msgs[1].Content)
}

func TestTranslateTools_DefaultsToDispatcher(t *testing.T) {
	tr := NewTranslator(tools.NewDefaultDispatcher(nil, nil))

	schemas := tr.TranslateTools(nil)
	require.Len(t, schemas, 2)
	assert.Equal(t, "web_fetch", schemas[0].Name)

	inbound := []InboundTool{{Name: "custom", Description: "d", InputSchema: json.RawMessage(`{"type":"object"}`)}}
	schemas = tr.TranslateTools(inbound)
	require.Len(t, schemas, 1)
	assert.Equal(t, "custom", schemas[0].Name)
	assert.Equal(t, json.RawMessage(`{"type":"object"}`), schemas[0].Parameters)
}

func TestBuildResponse_PlainText(t *testing.T) {
	tr := NewTranslator(tools.NewDefaultDispatcher(nil, nil))

	out := tr.BuildResponse(context.Background(), "gpt-4o-mini", &llm.ChatResponse{
		Content: "the answer",
		Usage:   llm.Usage{PromptTokens: 12, CompletionTokens: 7},
	})

	assert.True(t, strings.HasPrefix(out.ID, "msg_"))
	assert.Equal(t, "message", out.Type)
	assert.Equal(t, "assistant", out.Role)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.Equal(t, StopReasonEndTurn, out.StopReason)
	require.Len(t, out.Content, 1)
	assert.Equal(t, "text", out.Content[0].Type)
	assert.Equal(t, "the answer", out.Content[0].Text)
	assert.Equal(t, 12, out.Usage.InputTokens)
	assert.Equal(t, 7, out.Usage.OutputTokens)
}

func TestBuildResponse_BlockedToolCall(t *testing.T) {
	// web_fetch with an empty allowlist: the violation must come back as
	// in-band text, with stop_reason tool_use.
	tr := NewTranslator(tools.NewDefaultDispatcher(nil, nil))

	out := tr.BuildResponse(context.Background(), "gpt-4o-mini", &llm.ChatResponse{
		Content: "let me fetch that",
		ToolCalls: []core.ToolCall{
			{ID: "call_1", Name: "web_fetch", Arguments: json.RawMessage(`{"url":"https://evil.example.com"}`)},
		},
	})

	assert.Equal(t, StopReasonToolUse, out.StopReason)
	require.Len(t, out.Content, 1)
	text := out.Content[0].Text
	assert.Contains(t, text, "let me fetch that")
	assert.Contains(t, text, "[Tool Results]")
	assert.Contains(t, text, "Error:")
}

func TestBuildResponse_SequentialToolOrder(t *testing.T) {
	tr := NewTranslator(tools.NewDefaultDispatcher(nil, nil))

	out := tr.BuildResponse(context.Background(), "m", &llm.ChatResponse{
		ToolCalls: []core.ToolCall{
			{Name: "first_missing", Arguments: json.RawMessage(`{}`)},
			{Name: "second_missing", Arguments: json.RawMessage(`{}`)},
		},
	})

	text := out.Content[0].Text
	assert.Less(t, strings.Index(text, "first_missing"), strings.Index(text, "second_missing"))
}
