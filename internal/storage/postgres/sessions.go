package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/sazed/internal/core"
)

type SessionRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool, now: utcNow}
}

const sessionColumns = `id, created_at, last_activity, message_count, processed_at, summary_ref`

func scanSession(row pgx.Row) (core.Session, error) {
	var s core.Session
	err := row.Scan(&s.ID, &s.CreatedAt, &s.LastActivity, &s.MessageCount, &s.ProcessedAt, &s.SummaryRef)
	return s, err
}

func (r *SessionRepo) EnsureSession(ctx context.Context, id string) error {
	now := r.now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, created_at, last_activity) VALUES ($1, $2, $2)
		 ON CONFLICT (id) DO NOTHING`,
		id, now,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.EnsureSession: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, id string) (core.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Session{}, fmt.Errorf("sessionRepo.GetSession: %w", core.ErrSessionNotFound)
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("sessionRepo.GetSession: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) ListSessions(ctx context.Context) ([]core.Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY last_activity DESC`)
}

func (r *SessionRepo) IdleUnprocessed(ctx context.Context, idle time.Duration, limit int) ([]core.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE message_count > 0
		   AND last_activity < $1
		   AND (processed_at IS NULL OR processed_at < last_activity)
		 ORDER BY last_activity
		 LIMIT $2`,
		r.now().Add(-idle), limit,
	)
}

func (r *SessionRepo) query(ctx context.Context, sql string, args ...any) ([]core.Session, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.query: %w", err)
	}
	defer rows.Close()

	sessions := []core.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("sessionRepo.query: scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID string, msg core.Message) error {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return fmt.Errorf("sessionRepo.AppendMessage: marshal: %w", err)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES ($1, $2, $3, $4)`,
		sessionID, string(msg.Role), content, ts,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.AppendMessage: %w", err)
	}
	return nil
}

func (r *SessionRepo) Messages(ctx context.Context, sessionID string) ([]core.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, content, timestamp FROM messages WHERE session_id = $1 ORDER BY timestamp, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.Messages: %w", err)
	}
	defer rows.Close()

	messages := []core.Message{}
	for rows.Next() {
		var (
			msg     core.Message
			role    string
			content []byte
		)
		if err := rows.Scan(&role, &content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("sessionRepo.Messages: scan: %w", err)
		}
		msg.Role = core.Role(role)
		if err := json.Unmarshal(content, &msg.Content); err != nil {
			return nil, fmt.Errorf("sessionRepo.Messages: unmarshal: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *SessionRepo) Touch(ctx context.Context, sessionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET last_activity = $1,
		     message_count = (SELECT COUNT(*) FROM messages WHERE session_id = $2)
		 WHERE id = $2`,
		r.now(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Touch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sessionRepo.Touch: %w", core.ErrSessionNotFound)
	}
	return nil
}

func (r *SessionRepo) MarkProcessed(ctx context.Context, sessionID string, summaryRef *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET processed_at = $1, summary_ref = COALESCE($2, summary_ref) WHERE id = $3`,
		r.now(), summaryRef, sessionID,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.MarkProcessed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sessionRepo.MarkProcessed: %w", core.ErrSessionNotFound)
	}
	return nil
}
