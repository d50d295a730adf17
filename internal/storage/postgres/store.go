// Package postgres is the PostgreSQL-backed core.Store, selected when a
// DATABASE_URL is configured.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type Store struct {
	pool     *pgxpool.Pool
	sessions *SessionRepo
	memory   *MemoryRepo
	archive  *ArchiveRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: migrate: %w", err)
	}

	return &Store{
		pool:     pool,
		sessions: NewSessionRepo(pool),
		memory:   NewMemoryRepo(pool),
		archive:  NewArchiveRepo(pool),
	}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewGooseLoggerFromCtx(ctx))

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (s *Store) Sessions() core.SessionRepository { return s.sessions }
func (s *Store) Memory() core.MemoryRepository    { return s.memory }
func (s *Store) Archive() core.ArchiveRepository  { return s.archive }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
