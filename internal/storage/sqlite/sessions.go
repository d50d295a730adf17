package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

type SessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (r *SessionRepo) EnsureSession(ctx context.Context, id string) error {
	now := r.now()
	query := `INSERT INTO sessions (id, created_at, last_activity) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, id, now, now); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

const sessionColumns = `id, created_at, last_activity, message_count, processed_at, summary_ref`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (core.Session, error) {
	var (
		s           core.Session
		processedAt sql.NullTime
		summaryRef  sql.NullString
	)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.LastActivity, &s.MessageCount, &processedAt, &summaryRef); err != nil {
		return core.Session{}, err
	}
	if processedAt.Valid {
		t := processedAt.Time
		s.ProcessedAt = &t
	}
	if summaryRef.Valid {
		ref := summaryRef.String
		s.SummaryRef = &ref
	}
	return s, nil
}

func (r *SessionRepo) GetSession(ctx context.Context, id string) (core.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrSessionNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) ListSessions(ctx context.Context) ([]core.Session, error) {
	return r.querySessions(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY last_activity DESC`)
}

// IdleUnprocessed returns sessions quiet for at least idle that have
// messages newer than their last distillation.
func (r *SessionRepo) IdleUnprocessed(ctx context.Context, idle time.Duration, limit int) ([]core.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE message_count > 0
		  AND last_activity < ?
		  AND (processed_at IS NULL OR processed_at < last_activity)
		ORDER BY last_activity
		LIMIT ?`
	return r.querySessions(ctx, query, r.now().Add(-idle), limit)
}

func (r *SessionRepo) querySessions(ctx context.Context, query string, args ...any) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []core.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID string, msg core.Message) error {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}

	query := `INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, sessionID, string(msg.Role), string(content), ts.UTC()); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *SessionRepo) Messages(ctx context.Context, sessionID string) ([]core.Message, error) {
	// id breaks ties between messages written within the same clock tick
	query := `SELECT role, content, timestamp FROM messages WHERE session_id = ? ORDER BY timestamp, id`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []core.Message{}
	for rows.Next() {
		var (
			msg     core.Message
			role    string
			content string
		)
		if err := rows.Scan(&role, &content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = core.Role(role)
		if err := json.Unmarshal([]byte(content), &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("session_id", sessionID).Int("count", len(messages)).Msg("loaded session messages")
	return messages, nil
}

func (r *SessionRepo) Touch(ctx context.Context, sessionID string) error {
	query := `UPDATE sessions
		SET last_activity = ?,
		    message_count = (SELECT COUNT(*) FROM messages WHERE session_id = ?)
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, r.now(), sessionID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return requireRow(res, core.ErrSessionNotFound)
}

func (r *SessionRepo) MarkProcessed(ctx context.Context, sessionID string, summaryRef *string) error {
	var ref sql.NullString
	if summaryRef != nil {
		ref = sql.NullString{String: *summaryRef, Valid: true}
	}
	query := `UPDATE sessions SET processed_at = ?, summary_ref = COALESCE(?, summary_ref) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, r.now(), ref, sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark session processed: %w", err)
	}
	return requireRow(res, core.ErrSessionNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
