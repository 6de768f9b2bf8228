package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	scheduledPerLeadIndex = "uq_follow_ups_one_scheduled_per_lead"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	q    querier
}

// New creates a new follow-up repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, q: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// WithinTx runs fn inside a transaction. Nested calls reuse the outer one.
func (r *Repo) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	if _, inTx := r.q.(pgx.Tx); inTx {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin follow-up tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Repo{pool: r.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit follow-up tx: %w", err)
	}
	return nil
}

func pgErrorCode(err error) (code string, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
