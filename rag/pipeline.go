// Package rag implements the retrieval-augmented context pipeline: embed the
// query, rank stored documents, and assemble the provider-ready message list.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/chaiwat-s/relayd/core"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/session"
	"github.com/chaiwat-s/relayd/vector"
)

const (
	// TopK is how many retrieved documents go into the context block.
	TopK = 5
	// HistoryWindow is how many recent session messages are replayed.
	HistoryWindow = 12
)

const systemInstructions = `You are a retrieval-augmented assistant. You have tools (web_fetch, file_read).

Guidelines:
- Use the provided CONTEXT for factual answers.
- If uncertain, say so.
- Keep outputs concise but accurate.`

type Pipeline struct {
	embedder   llm.Embedder
	index      vector.Index
	sessions   *session.Memory
	embedModel string
}

func NewPipeline(embedder llm.Embedder, index vector.Index, sessions *session.Memory, embedModel string) *Pipeline {
	return &Pipeline{
		embedder:   embedder,
		index:      index,
		sessions:   sessions,
		embedModel: embedModel,
	}
}

// Build assembles the message list for one retrieval-backed query. The
// returned order is a hard contract: system, history..., user — it decides
// what the provider treats as instruction versus conversation.
func (p *Pipeline) Build(ctx context.Context, sessionID, userText string) ([]core.Message, error) {
	vecs, err := p.embedder.EmbedBatch(ctx, p.embedModel, []string{userText})
	if err != nil {
		return nil, core.NewOpError("embed query", err)
	}

	top, err := p.index.Search(ctx, vecs[0].Embedding, TopK)
	if err != nil {
		return nil, core.NewOpError("search", err)
	}

	msgs := make([]core.Message, 0, HistoryWindow+2)
	msgs = append(msgs, core.NewSystemMessage(systemInstructions+"\n\nCONTEXT:\n"+formatContext(top)))
	msgs = append(msgs, p.sessions.Last(sessionID, HistoryWindow)...)
	msgs = append(msgs, core.NewUserMessage(userText))
	return msgs, nil
}

// Ingest embeds one text, appends it to the index, and persists it.
func (p *Pipeline) Ingest(ctx context.Context, text string, meta map[string]any) (vector.Document, error) {
	vecs, err := p.embedder.EmbedBatch(ctx, p.embedModel, []string{text})
	if err != nil {
		return vector.Document{}, core.NewOpError("embed document", err)
	}

	doc := vector.Document{
		ID:        vector.NewDocID(),
		Text:      text,
		Meta:      meta,
		Embedding: vecs[0].Embedding,
	}
	if err := p.index.Add(ctx, []vector.Document{doc}); err != nil {
		return vector.Document{}, core.NewOpError("store document", err)
	}
	return doc, nil
}

func formatContext(results []vector.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("# Doc (score=%.3f)\n%s", r.Score, r.Document.Text)
	}
	return strings.Join(blocks, "\n\n")
}
