package bridge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chaiwat-s/relayd/core"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/tools"
)

// Translator converts messages-protocol requests into the completion
// client's shapes and completion results back into messages-protocol
// response objects, dispatching any requested tool calls on the way out.
type Translator struct {
	dispatcher *tools.Dispatcher
}

func NewTranslator(dispatcher *tools.Dispatcher) *Translator {
	return &Translator{dispatcher: dispatcher}
}

// FlattenMessages converts inbound messages to the provider shape. String
// content passes through; block arrays are reduced to their text blocks
// joined with newlines, non-text blocks ignored.
func FlattenMessages(msgs []InboundMessage) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.Message{
			Role:    core.MessageRole(m.Role),
			Content: flattenContent(m.Content),
		})
	}
	return out
}

func flattenContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// TranslateTools maps inbound tool declarations onto the provider's schema
// shape. With no inbound tools, the dispatcher's own tools are advertised.
func (t *Translator) TranslateTools(inbound []InboundTool) []core.ToolSchema {
	if len(inbound) == 0 {
		return t.dispatcher.Schemas()
	}
	schemas := make([]core.ToolSchema, len(inbound))
	for i, tool := range inbound {
		schemas[i] = core.ToolSchema{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.InputSchema,
		}
	}
	return schemas
}

// BuildResponse wraps a completion result as a messages-protocol response.
// Tool calls are executed sequentially so result order stays deterministic
// and attributable; their results land under a labeled section beneath the
// provider's text.
func (t *Translator) BuildResponse(ctx context.Context, model string, resp *llm.ChatResponse) MessagesResponse {
	text := resp.Content
	stopReason := StopReasonEndTurn

	if resp.HasToolCalls() {
		stopReason = StopReasonToolUse
		results := make([]core.ToolResult, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			results = append(results, core.ToolResult{
				Tool:   tc.Name,
				Result: t.dispatcher.Execute(ctx, tc.Name, tc.Arguments),
			})
		}
		encoded, _ := json.MarshalIndent(results, "", "  ")
		text = text + "\n\n[Tool Results]\n" + string(encoded)
	}

	return MessagesResponse{
		ID:         NewMessageID(),
		Type:       "message",
		Role:       string(core.RoleAssistant),
		Model:      model,
		Content:    []ContentBlock{{Type: "text", Text: text}},
		StopReason: stopReason,
		Usage: ResponseUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
}
