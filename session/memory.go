// Package session keeps bounded per-session short-term memory. Sessions are
// created lazily, live for the process lifetime, and are never persisted.
package session

import (
	"sync"

	"github.com/chaiwat-s/relayd/core"
)

// MaxMessages caps each session's message log; appending beyond it evicts
// the oldest messages first.
const MaxMessages = 50

type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string][]core.Message)}
}

// Get returns the session's messages in append order, creating an empty
// session if absent.
func (m *Memory) Get(sessionID string) []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.sessions[sessionID]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Push appends a message, evicting from the front once the session exceeds
// MaxMessages.
func (m *Memory) Push(sessionID string, msg core.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := append(m.sessions[sessionID], msg)
	if len(msgs) > MaxMessages {
		msgs = msgs[len(msgs)-MaxMessages:]
	}
	m.sessions[sessionID] = msgs
}

// Last returns up to n most recent messages, oldest first.
func (m *Memory) Last(sessionID string, n int) []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.sessions[sessionID]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out
}
