package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiwat-s/relayd/llm"
)

type recordedEvent struct {
	name string
	data any
}

type fakeWriter struct {
	events []recordedEvent
}

func (f *fakeWriter) WriteEvent(name string, data any) error {
	f.events = append(f.events, recordedEvent{name: name, data: data})
	return nil
}

func feed(chunks ...llm.StreamChunk) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func TestReframer_DeltasThenStop(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	state := r.Run(feed(
		llm.StreamChunk{Content: "Hello"},
		llm.StreamChunk{Content: " world"},
		llm.StreamChunk{Done: true},
	))

	assert.Equal(t, StateClosed, state)
	require.Len(t, w.events, 3)

	assert.Equal(t, "content_block_delta", w.events[0].name)
	assert.Equal(t, "Hello", w.events[0].data.(DeltaEvent).Delta.Text)
	assert.Equal(t, "content_block_delta", w.events[1].name)
	assert.Equal(t, " world", w.events[1].data.(DeltaEvent).Delta.Text)

	// The final event carries the whole accumulated text, never the
	// earlier deltas individually.
	stop := w.events[2]
	assert.Equal(t, "message_stop", stop.name)
	msg := stop.data.(StopEvent).Message
	require.Len(t, msg.Content, 1)
	assert.Equal(t, "Hello world", msg.Content[0].Text)
	assert.Equal(t, "assistant", msg.Role)
}

func TestReframer_DeltaCarriesFragmentOnly(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	r.Run(feed(
		llm.StreamChunk{Content: "aaa"},
		llm.StreamChunk{Content: "bbb"},
		llm.StreamChunk{Done: true},
	))

	assert.Equal(t, "bbb", w.events[1].data.(DeltaEvent).Delta.Text)
	assert.Equal(t, "aaabbb", r.Text())
}

func TestReframer_ProviderError(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	state := r.Run(feed(
		llm.StreamChunk{Content: "partial"},
		llm.StreamChunk{Error: errors.New("connection reset"), Done: true},
	))

	assert.Equal(t, StateErrored, state)
	require.Len(t, w.events, 2)
	assert.Equal(t, "error", w.events[1].name)
	assert.Equal(t, "connection reset", w.events[1].data.(ErrorEvent).Error)
}

func TestReframer_ChannelCloseWithoutSentinelFinalizesOnce(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	state := r.Run(feed(llm.StreamChunk{Content: "only"}))

	assert.Equal(t, StateClosed, state)
	require.Len(t, w.events, 2)
	assert.Equal(t, "message_stop", w.events[1].name)
	assert.Equal(t, "only", w.events[1].data.(StopEvent).Message.Content[0].Text)
}

func TestReframer_EmptyStream(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	state := r.Run(feed(llm.StreamChunk{Done: true}))

	assert.Equal(t, StateClosed, state)
	require.Len(t, w.events, 1)
	assert.Equal(t, "message_stop", w.events[0].name)
	assert.Equal(t, "", w.events[0].data.(StopEvent).Message.Content[0].Text)
}

func TestReframer_EventOrderMatchesChunkOrder(t *testing.T) {
	w := &fakeWriter{}
	r := NewReframer(w)

	parts := []string{"a", "b", "c", "d", "e"}
	chunks := make([]llm.StreamChunk, 0, len(parts)+1)
	for _, p := range parts {
		chunks = append(chunks, llm.StreamChunk{Content: p})
	}
	chunks = append(chunks, llm.StreamChunk{Done: true})
	r.Run(feed(chunks...))

	require.Len(t, w.events, len(parts)+1)
	for i, p := range parts {
		assert.Equal(t, p, w.events[i].data.(DeltaEvent).Delta.Text)
	}
}
