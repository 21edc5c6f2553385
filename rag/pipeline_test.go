package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiwat-s/relayd/core"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/session"
	"github.com/chaiwat-s/relayd/vector"
)

type fakeEmbedder struct {
	vec   []float64
	err   error
	calls [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, model string, inputs []string) ([]llm.EmbeddingResponse, error) {
	f.calls = append(f.calls, inputs)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]llm.EmbeddingResponse, len(inputs))
	for i := range out {
		out[i] = llm.EmbeddingResponse{Embedding: f.vec}
	}
	return out, nil
}

func newTestPipeline(t *testing.T, emb *fakeEmbedder) (*Pipeline, *vector.SnapshotStore, *session.Memory) {
	t.Helper()
	idx, err := vector.LoadSnapshotStore(filepath.Join(t.TempDir(), "rag.json"))
	require.NoError(t, err)
	sessions := session.NewMemory()
	return NewPipeline(emb, idx, sessions, "text-embedding-3-small"), idx, sessions
}

func TestPipeline_BuildOrder(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0}}
	p, idx, sessions := newTestPipeline(t, emb)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []vector.Document{
		{ID: "d1", Text: "relevant fact", Embedding: []float64{1, 0}},
	}))
	for i := 0; i < 15; i++ {
		sessions.Push("s1", core.NewUserMessage(fmt.Sprintf("turn-%d", i)))
	}

	msgs, err := p.Build(ctx, "s1", "what is the fact?")
	require.NoError(t, err)

	// Hard contract: system, history..., user.
	require.Len(t, msgs, 1+HistoryWindow+1)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "CONTEXT:")
	assert.Contains(t, msgs[0].Content, "relevant fact")
	assert.Contains(t, msgs[0].Content, "score=")

	// Only the last 12 history turns are replayed.
	assert.Equal(t, "turn-3", msgs[1].Content)
	assert.Equal(t, "turn-14", msgs[HistoryWindow].Content)

	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleUser, last.Role)
	assert.Equal(t, "what is the fact?", last.Content)
}

func TestPipeline_BuildEmbedsQueryOnce(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0}}
	p, _, _ := newTestPipeline(t, emb)

	_, err := p.Build(context.Background(), "s", "query text")
	require.NoError(t, err)
	require.Len(t, emb.calls, 1)
	assert.Equal(t, []string{"query text"}, emb.calls[0])
}

func TestPipeline_BuildPropagatesEmbedError(t *testing.T) {
	emb := &fakeEmbedder{err: fmt.Errorf("%w: no key", core.ErrProvider)}
	p, _, _ := newTestPipeline(t, emb)

	_, err := p.Build(context.Background(), "s", "q")
	assert.ErrorIs(t, err, core.ErrProvider)
	assert.Contains(t, err.Error(), "embed query")
}

func TestPipeline_Ingest(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{0.5, 0.5}}
	p, idx, _ := newTestPipeline(t, emb)
	ctx := context.Background()

	doc, err := p.Ingest(ctx, "new document", map[string]any{"source": "test"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, "new document", doc.Text)
	assert.Equal(t, []float64{0.5, 0.5}, doc.Embedding)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
