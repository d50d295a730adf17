package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/sazed/pkg/log"
)

type ArchiveRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db, now: utcNow}
}

func (r *ArchiveRepo) Archive(ctx context.Context, cutoff time.Time) (int, error) {
	cutoff = cutoff.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO sessions_archive
			(id, created_at, last_activity, message_count, processed_at, summary_ref, archived_at)
		SELECT id, created_at, last_activity, message_count, processed_at, summary_ref, ?
		FROM sessions WHERE last_activity < ?`, r.now(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to archive sessions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO messages_archive (id, session_id, role, content, timestamp)
		SELECT m.id, m.session_id, m.role, m.content, m.timestamp
		FROM messages m JOIN sessions s ON s.id = m.session_id
		WHERE s.last_activity < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to archive messages: %w", err)
	}

	// messages follow via ON DELETE CASCADE
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE last_activity < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete archived sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}

	log.FromCtx(ctx).Info().Int64("sessions", n).Time("cutoff", cutoff).Msg("archived sessions")
	return int(n), nil
}
