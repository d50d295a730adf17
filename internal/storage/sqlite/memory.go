package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/sazed/internal/core"
)

type MemoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db, now: utcNow}
}

const factColumns = `id, fact_type, key, value, confidence, source, created_at, updated_at`

func scanFact(row rowScanner) (core.Fact, error) {
	var (
		f      core.Fact
		source sql.NullString
	)
	if err := row.Scan(&f.ID, &f.FactType, &f.Key, &f.Value, &f.Confidence, &source, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return core.Fact{}, err
	}
	f.Source = source.String
	return f, nil
}

// Load returns all facts, most recently updated first.
func (r *MemoryRepo) Load(ctx context.Context) ([]core.Fact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+factColumns+` FROM agent_memory ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	defer rows.Close()

	facts := []core.Fact{}
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// Upsert inserts a fact or overwrites the existing (fact_type, key) row when
// the incoming confidence is at least the stored one. The row as it stands
// after the write is returned either way.
func (r *MemoryRepo) Upsert(ctx context.Context, in core.FactInput) (core.Fact, error) {
	now := r.now()
	query := `INSERT INTO agent_memory (id, fact_type, key, value, source, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fact_type, key) DO UPDATE SET
			value      = CASE WHEN excluded.confidence >= agent_memory.confidence THEN excluded.value      ELSE agent_memory.value      END,
			source     = CASE WHEN excluded.confidence >= agent_memory.confidence THEN excluded.source     ELSE agent_memory.source     END,
			updated_at = CASE WHEN excluded.confidence >= agent_memory.confidence THEN excluded.updated_at ELSE agent_memory.updated_at END,
			confidence = CASE WHEN excluded.confidence >= agent_memory.confidence THEN excluded.confidence ELSE agent_memory.confidence END`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Fact{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, query,
		uuid.NewString(), in.FactType, in.Key, in.Value, in.Source, in.Confidence, now, now)
	if err != nil {
		return core.Fact{}, fmt.Errorf("failed to upsert fact: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+factColumns+` FROM agent_memory WHERE fact_type = ? AND key = ?`, in.FactType, in.Key)
	f, err := scanFact(row)
	if err != nil {
		return core.Fact{}, fmt.Errorf("failed to read upserted fact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Fact{}, err
	}
	return f, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agent_memory WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
