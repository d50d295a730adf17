package core

import (
	"context"
	"time"
)

type SessionRepository interface {
	EnsureSession(ctx context.Context, id string) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	AppendMessage(ctx context.Context, sessionID string, msg Message) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	Touch(ctx context.Context, sessionID string) error
	MarkProcessed(ctx context.Context, sessionID string, summaryRef *string) error
	IdleUnprocessed(ctx context.Context, idle time.Duration, limit int) ([]Session, error)
}

type MemoryRepository interface {
	Load(ctx context.Context) ([]Fact, error)
	Upsert(ctx context.Context, in FactInput) (Fact, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ArchiveRepository interface {
	// Archive moves sessions whose last activity is before cutoff, with
	// their messages, into the archive tables in a single transaction.
	Archive(ctx context.Context, cutoff time.Time) (int, error)
}

// Store bundles the repositories backed by one database.
type Store interface {
	Sessions() SessionRepository
	Memory() MemoryRepository
	Archive() ArchiveRepository
	Close() error
}
