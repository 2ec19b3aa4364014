package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/resilience"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Store groups the lifecycle repositories over one database and implements ports.UnitOfWork.
type Store struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithExecutor retries units of work that fail transiently and trips a breaker
// when the database keeps failing.
func (s *Store) WithExecutor(executor *resilience.Executor) *Store {
	s.executor = executor
	return s
}

// Do runs fn inside a transaction. The document row is read FOR UPDATE, which
// serializes concurrent transitions on the same document. With an executor,
// a transaction that fails transiently is rolled back and run again from scratch.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	if s.executor == nil {
		return s.runTx(ctx, fn)
	}
	err := s.executor.Execute(ctx, "postgres.unit_of_work", func(ctx context.Context) error {
		return s.runTx(ctx, fn)
	}, classifyTxError)
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrStoreUnavailable, "unit of work", err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, repositoriesFor(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "commit tx", fmt.Errorf("%w: %w", errCommitOutcomeUnknown, err))
	}
	return nil
}

// Repositories returns stores that run each call in its own implicit transaction.
func (s *Store) Repositories() ports.Repositories {
	return repositoriesFor(s.db, false)
}

func (s *Store) Favorites() ports.FavoriteStore { return NewFavoriteRepository(s.db) }

func (s *Store) AuditLog() ports.AuditLog { return NewAuditRepository(s.db) }

func repositoriesFor(db dbtx, inTx bool) ports.Repositories {
	return ports.Repositories{
		Documents: &DocumentRepository{db: db, forUpdate: inTx},
		Versions:  &VersionRepository{db: db},
		Locks:     &LockRepository{db: db, forUpdate: inTx},
		Handovers: &HandoverRepository{db: db},
	}
}

func unavailable(operation string, err error) error {
	if isRetryableConflict(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return domain.WrapError(domain.ErrStoreUnavailable, operation, err)
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == foreignKeyViolation
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
