package llm

import (
	"context"

	"github.com/chaiwat-s/relayd/core"
)

// Client is the chat-completion backend consumed by the protocol bridge and
// the retrieval pipeline.
type Client interface {
	Chat(ctx context.Context, model core.ModelConfig, msgs []core.Message, tools []core.ToolSchema) (*ChatResponse, error)
	ChatStream(ctx context.Context, model core.ModelConfig, msgs []core.Message) (<-chan StreamChunk, error)
}

// Embedder turns text into fixed-length vectors, one per input,
// order-preserving.
type Embedder interface {
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{Timeout: 60}
}
