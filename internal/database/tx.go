package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of *sql.DB and *sql.Tx that repositories use, so the
// same query code runs inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs fn inside a single transaction.  fn's error rolls the
// transaction back; a nil return commits it.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx DBTX) error) error
}

// SQLTransactor implements Transactor on a *sql.DB.
type SQLTransactor struct {
	DB *sql.DB
}

func NewTransactor(db *sql.DB) *SQLTransactor { return &SQLTransactor{DB: db} }

// InTx begins a READ COMMITTED transaction.  Row locks taken with
// SELECT ... FOR UPDATE are the serialization point, so repeatable-read
// snapshots buy nothing here and only widen gap locking.
func (t *SQLTransactor) InTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := t.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
