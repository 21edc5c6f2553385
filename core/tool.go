package core

import "encoding/json"

// ToolCall is a tool invocation requested by the completion provider. It
// only ever appears in completion responses and is never persisted.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of executing one tool call, re-injected into the
// conversation as text.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result"`
}

// ToolSchema describes a tool to the completion provider. Parameters is a
// JSON-schema object; it is advertisement only and not enforced at dispatch.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
