package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/sazed/pkg/log"
)

type ArchiveRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewArchiveRepo(pool *pgxpool.Pool) *ArchiveRepo {
	return &ArchiveRepo{pool: pool, now: utcNow}
}

func (r *ArchiveRepo) Archive(ctx context.Context, cutoff time.Time) (int, error) {
	var archived int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO sessions_archive
			     (id, created_at, last_activity, message_count, processed_at, summary_ref, archived_at)
			 SELECT id, created_at, last_activity, message_count, processed_at, summary_ref, $1
			 FROM sessions WHERE last_activity < $2
			 ON CONFLICT (id) DO UPDATE SET
			     last_activity = EXCLUDED.last_activity,
			     message_count = EXCLUDED.message_count,
			     processed_at  = EXCLUDED.processed_at,
			     summary_ref   = EXCLUDED.summary_ref,
			     archived_at   = EXCLUDED.archived_at`,
			r.now(), cutoff,
		)
		if err != nil {
			return fmt.Errorf("sessions: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO messages_archive (id, session_id, role, content, timestamp)
			 SELECT m.id, m.session_id, m.role, m.content, m.timestamp
			 FROM messages m JOIN sessions s ON s.id = m.session_id
			 WHERE s.last_activity < $1
			 ON CONFLICT (id) DO NOTHING`,
			cutoff,
		)
		if err != nil {
			return fmt.Errorf("messages: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE last_activity < $1`, cutoff)
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		archived = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("archiveRepo.Archive: %w", err)
	}

	log.FromCtx(ctx).Info().Int64("sessions", archived).Time("cutoff", cutoff).Msg("archived sessions")
	return int(archived), nil
}
