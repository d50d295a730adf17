package telegram

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// chatNamespace scopes the derived session ids of Telegram chats.
var chatNamespace = uuid.MustParse("8a3f2c5e-6b1d-4e7a-9c0f-2d4b6e8a1c3f")

// ChatSessions binds each chat to its current conversation. A chat starts on
// a session derived from its id, so restarts resume the same conversation
// until /new rotates it.
type ChatSessions struct {
	mu       sync.Mutex
	sessions map[int64]string
	turns    map[string]*sync.Mutex
}

func NewChatSessions() *ChatSessions {
	return &ChatSessions{
		sessions: make(map[int64]string),
		turns:    make(map[string]*sync.Mutex),
	}
}

// Lock serializes turns on one session. Telegram delivers updates
// concurrently, and two turns on the same history would interleave.
func (s *ChatSessions) Lock(sessionID string) (unlock func()) {
	s.mu.Lock()
	turn, ok := s.turns[sessionID]
	if !ok {
		turn = &sync.Mutex{}
		s.turns[sessionID] = turn
	}
	s.mu.Unlock()

	turn.Lock()
	return turn.Unlock
}

func (s *ChatSessions) Current(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sessions[chatID]; ok {
		return id
	}
	id := uuid.NewSHA1(chatNamespace, []byte("telegram-"+strconv.FormatInt(chatID, 10))).String()
	s.sessions[chatID] = id
	return id
}

// Rotate moves the chat bound to current onto a fresh session.
func (s *ChatSessions) Rotate(ctx context.Context, current string) string {
	next := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, id := range s.sessions {
		if id == current {
			s.sessions[chatID] = next
		}
	}
	return next
}
