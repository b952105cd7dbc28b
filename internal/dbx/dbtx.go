// Package dbx holds the handle repositories run their statements on and the
// transaction helper the services use to group them.
package dbx

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/storefront/internal/common"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository works the
// same inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn on a fresh transaction. A nil return commits; an error or a
// panic rolls back, and the panic is rethrown. Failures of begin, commit and
// rollback come back as *common.StoreError. A failed rollback is joined to
// the error fn returned.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return &common.StoreError{Op: "begin tx", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, &common.StoreError{Op: "rollback tx", Err: rbErr})
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = &common.StoreError{Op: "commit tx", Err: cErr}
		}
	}()

	return fn(ctx, tx)
}
