package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaiwat-s/relayd/core"
)

func TestMemory_GetCreatesEmpty(t *testing.T) {
	m := NewMemory()
	assert.Empty(t, m.Get("fresh"))
}

func TestMemory_PushEvictsOldestFirst(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 60; i++ {
		m.Push("s1", core.NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	msgs := m.Get("s1")
	require.Len(t, msgs, MaxMessages)

	// Exactly the most recent 50 survive, oldest-first order preserved.
	assert.Equal(t, "msg-10", msgs[0].Content)
	assert.Equal(t, "msg-59", msgs[len(msgs)-1].Content)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+10), msg.Content)
	}
}

func TestMemory_SessionsAreIndependent(t *testing.T) {
	m := NewMemory()
	m.Push("a", core.NewUserMessage("hello"))
	assert.Len(t, m.Get("a"), 1)
	assert.Empty(t, m.Get("b"))
}

func TestMemory_Last(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 20; i++ {
		m.Push("s", core.NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	last := m.Last("s", 12)
	require.Len(t, last, 12)
	assert.Equal(t, "msg-8", last[0].Content)
	assert.Equal(t, "msg-19", last[11].Content)

	assert.Len(t, m.Last("s", 100), 20)
}
