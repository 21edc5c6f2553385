package llm

import "github.com/chaiwat-s/relayd/core"

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the provider's chosen output for one completion request,
// modeled as an explicit result type rather than a dynamic blob.
type ChatResponse struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        Usage           `json:"usage,omitempty"`
}

func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// StreamChunk is one parsed element of a provider stream. The channel
// carrying these is a lazy, finite sequence: zero or more content fragments
// followed by exactly one chunk with Done or Error set.
type StreamChunk struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done"`
	Error   error  `json:"-"`
}

// EmbeddingResponse is a single embedding result.
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}
