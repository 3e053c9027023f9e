package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/repository"
)

// pgxPool is the subset of *pgxpool.Pool used by the storage.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// serializable is used by operations that read and then mutate copy counters.
var serializable = pgx.TxOptions{IsoLevel: pgx.Serializable}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ repository.Factory = (*Storage)(nil)

// Users returns the user repository.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

// Books returns the book repository.
func (s *Storage) Books() repository.BookRepository {
	return &bookRepository{storage: s}
}

// Borrows returns the borrow repository.
func (s *Storage) Borrows() repository.BorrowRepository {
	return &borrowRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            username TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS books (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL DEFAULT '',
            isbn TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL,
            CONSTRAINT books_copies_range CHECK (available_copies >= 0 AND available_copies <= total_copies)
        )`,
		`CREATE TABLE IF NOT EXISTS borrows (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            book_id BIGINT REFERENCES books(id) ON DELETE SET NULL,
            borrow_date TIMESTAMPTZ NOT NULL,
            due_date TIMESTAMPTZ NOT NULL,
            return_date TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_borrows_user ON borrows(user_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_borrows_open_due ON borrows(due_date, id) WHERE return_date IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.withinTx(ctx, pgx.TxOptions{}, fn)
}

func (s *Storage) withinTx(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		s.log().Error("begin transaction failed", slog.String("error", err.Error()))
		return classify(err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.log().Error("rollback failed", slog.String("error", rbErr.Error()))
			}
		} else if err = tx.Commit(ctx); err != nil {
			s.log().Warn("commit failed", slog.String("error", err.Error()))
		}
		err = classify(err)
	}()

	err = fn(tx)
	return err
}

func (s *Storage) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// classify translates PostgreSQL error codes into domain errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return domainErrors.ErrAlreadyExists
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domainErrors.ErrNotFound, pgErr.ConstraintName)
	case pgSerializationFail, pgDeadlockDetected:
		return fmt.Errorf("%w: %s", domainErrors.ErrConcurrentUpdate, pgErr.Message)
	default:
		return err
	}
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		s.log().Error("database ping failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
