// Package services contains server-side business logic: accounts and
// sessions, the product catalog and payments. Services return the error
// kinds of package common and hold no logger.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
)

// txRunner runs fn inside one transaction.
type txRunner func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

func sqlTx(db *sql.DB) txRunner {
	return func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, db, nil, fn)
	}
}

func storeErr(op string, err error) error {
	return common.NewStoreError(op, err)
}
