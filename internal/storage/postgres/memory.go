package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/sazed/internal/core"
)

type MemoryRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewMemoryRepo(pool *pgxpool.Pool) *MemoryRepo {
	return &MemoryRepo{pool: pool, now: utcNow}
}

const factColumns = `id, fact_type, key, value, confidence, source, created_at, updated_at`

func scanFact(row pgx.Row) (core.Fact, error) {
	var (
		f      core.Fact
		source *string
	)
	if err := row.Scan(&f.ID, &f.FactType, &f.Key, &f.Value, &f.Confidence, &source, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return core.Fact{}, err
	}
	if source != nil {
		f.Source = *source
	}
	return f, nil
}

func (r *MemoryRepo) Load(ctx context.Context) ([]core.Fact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+factColumns+` FROM agent_memory ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("memoryRepo.Load: %w", err)
	}
	defer rows.Close()

	facts := []core.Fact{}
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("memoryRepo.Load: scan: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// Upsert overwrites an existing (fact_type, key) only when the incoming
// confidence is at least the stored one.
func (r *MemoryRepo) Upsert(ctx context.Context, in core.FactInput) (core.Fact, error) {
	now := r.now()
	f, err := scanFact(r.pool.QueryRow(ctx,
		`INSERT INTO agent_memory (id, fact_type, key, value, source, confidence, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (fact_type, key) DO UPDATE SET
		     value      = CASE WHEN EXCLUDED.confidence >= agent_memory.confidence THEN EXCLUDED.value      ELSE agent_memory.value      END,
		     source     = CASE WHEN EXCLUDED.confidence >= agent_memory.confidence THEN EXCLUDED.source     ELSE agent_memory.source     END,
		     updated_at = CASE WHEN EXCLUDED.confidence >= agent_memory.confidence THEN EXCLUDED.updated_at ELSE agent_memory.updated_at END,
		     confidence = CASE WHEN EXCLUDED.confidence >= agent_memory.confidence THEN EXCLUDED.confidence ELSE agent_memory.confidence END
		 RETURNING `+factColumns,
		uuid.NewString(), in.FactType, in.Key, in.Value, in.Source, in.Confidence, now,
	))
	if err != nil {
		return core.Fact{}, fmt.Errorf("memoryRepo.Upsert: %w", err)
	}
	return f, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agent_memory WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("memoryRepo.Delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
