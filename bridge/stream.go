package bridge

import (
	"strings"

	"github.com/chaiwat-s/relayd/llm"
)

// EventWriter delivers one named event to the client transport.
type EventWriter interface {
	WriteEvent(event string, data any) error
}

// State tracks the re-framer's lifecycle. Closed and Errored are terminal.
type State int

const (
	StateOpen State = iota
	StateStreaming
	StateClosed
	StateErrored
)

// Reframer re-frames provider-native delta chunks into messages-protocol
// streaming events. One instance serves exactly one streaming response.
//
// Each content fragment is emitted as its own content_block_delta, carrying
// only that fragment. The full accumulated text is transmitted once, inside
// the terminal message_stop event.
type Reframer struct {
	w     EventWriter
	msgID string
	buf   strings.Builder
	state State
}

func NewReframer(w EventWriter) *Reframer {
	return &Reframer{w: w, msgID: NewMessageID(), state: StateOpen}
}

// Run consumes the chunk sequence until its terminal element and emits
// events in exact arrival order. It finalizes exactly once, returning the
// terminal state.
func (r *Reframer) Run(chunks <-chan llm.StreamChunk) State {
	for chunk := range chunks {
		if chunk.Error != nil {
			return r.fail(chunk.Error.Error())
		}
		if chunk.Done {
			return r.finish()
		}
		if chunk.Content == "" {
			continue
		}

		r.state = StateStreaming
		r.buf.WriteString(chunk.Content)
		r.w.WriteEvent("content_block_delta", DeltaEvent{
			Type:  "content_block_delta",
			Index: 0,
			Delta: TextDelta{Type: "text_delta", Text: chunk.Content},
		})
	}

	// Producer closed the channel without a terminal chunk; still finalize
	// exactly once.
	return r.finish()
}

func (r *Reframer) finish() State {
	if r.state == StateClosed || r.state == StateErrored {
		return r.state
	}
	r.state = StateClosed
	r.w.WriteEvent("message_stop", StopEvent{
		Type: "message_stop",
		Message: StopMessage{
			ID:      r.msgID,
			Type:    "message",
			Role:    "assistant",
			Content: []ContentBlock{{Type: "text", Text: r.buf.String()}},
		},
	})
	return r.state
}

func (r *Reframer) fail(msg string) State {
	if r.state == StateClosed || r.state == StateErrored {
		return r.state
	}
	r.state = StateErrored
	r.w.WriteEvent("error", ErrorEvent{Error: msg})
	return r.state
}

// Text returns the accumulated buffer.
func (r *Reframer) Text() string {
	return r.buf.String()
}
