// Package resettokens stores password reset capabilities. Tokens are kept
// only as SHA-256 hashes; a user has at most one outstanding token.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	// Create stores tokenHash for userID, expiring at expires.
	Create(ctx context.Context, userID, tokenHash string, expires time.Time) error
	// Consume deletes the token and returns it. Only one caller can consume a
	// given hash; unknown or already consumed hashes yield common.ErrorNotFound.
	Consume(ctx context.Context, tokenHash string) (*models.ResetToken, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
