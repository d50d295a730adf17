package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSessions_DerivedAndStable(t *testing.T) {
	a := NewChatSessions()
	b := NewChatSessions()

	id := a.Current(42)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Equal(t, id, a.Current(42))
	assert.Equal(t, id, b.Current(42), "derived from the chat id across restarts")
	assert.NotEqual(t, id, a.Current(43))
}

func TestChatSessions_Rotate(t *testing.T) {
	s := NewChatSessions()
	old := s.Current(42)
	other := s.Current(7)

	next := s.Rotate(context.Background(), old)
	assert.NotEqual(t, old, next)
	assert.Equal(t, next, s.Current(42))
	assert.Equal(t, other, s.Current(7))
}

func TestChatSessions_LockSerializesTurns(t *testing.T) {
	s := NewChatSessions()
	id := s.Current(42)

	unlock := s.Lock(id)

	acquired := make(chan struct{})
	go func() {
		release := s.Lock(id)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second turn ran while the first held the session")
	case <-time.After(50 * time.Millisecond):
	}

	other := s.Lock(s.Current(7))
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second turn never acquired the session")
	}
}
