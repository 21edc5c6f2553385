// Package bridge translates between the inbound "messages" protocol and the
// backend chat-completion protocol, in both directions and in real time for
// streams.
package bridge

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MessagesRequest is the inbound messages-protocol request body.
type MessagesRequest struct {
	Model       string           `json:"model,omitempty"`
	Messages    []InboundMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
	Tools       []InboundTool    `json:"tools,omitempty"`
}

// InboundMessage carries either a plain string or an array of content
// blocks; Content is kept raw until flattening.
type InboundMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ContentBlock is a messages-protocol content block. Only text blocks are
// supported; other types are ignored on input and never produced on output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// InboundTool is a tool declaration in the messages protocol.
type InboundTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// MessagesResponse is the non-streaming messages-protocol response object.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      ResponseUsage  `json:"usage"`
}

type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// Streaming event payloads.

type DeltaEvent struct {
	Type  string    `json:"type"`
	Index int       `json:"index"`
	Delta TextDelta `json:"delta"`
}

type TextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type StopEvent struct {
	Type    string      `json:"type"`
	Message StopMessage `json:"message"`
}

type StopMessage struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}

// NewMessageID generates a messages-protocol message identifier.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}
