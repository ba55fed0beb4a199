package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx. Repositories
// are constructed on the pool and rebound to a transaction with WithTx for
// operations that must commit atomically.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrVersionConflict reports an optimistic-concurrency loss: the row changed
// between read and write within one transition request.
var ErrVersionConflict = errors.New("version conflict")
