package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
	driver "github.com/sandevgo/sazed/pkg/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func NewDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open(driver.DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewGooseLoggerFromCtx(ctx))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// Store is the SQLite-backed implementation of core.Store.
type Store struct {
	db       *sql.DB
	sessions *SessionRepo
	memory   *MemoryRepo
	archive  *ArchiveRepo
}

func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := NewDB(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:       db,
		sessions: NewSessionRepo(db),
		memory:   NewMemoryRepo(db),
		archive:  NewArchiveRepo(db),
	}, nil
}

func (s *Store) Sessions() core.SessionRepository { return s.sessions }
func (s *Store) Memory() core.MemoryRepository    { return s.memory }
func (s *Store) Archive() core.ArchiveRepository  { return s.archive }

func (s *Store) Close() error {
	return s.db.Close()
}
