// Package payments persists purchase records.
package payments

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	// Create inserts p. When p carries an idempotency key already used by the
	// same account, nothing is written and the stored payment is returned with
	// created == false.
	Create(ctx context.Context, p *models.Payment) (stored *models.Payment, created bool, err error)
	// ListByAccount returns the account's payments, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*models.Payment, error)
}
