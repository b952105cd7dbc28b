// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token of sessionID for userID with an expiry of now+validity.
	Create(ctx context.Context, userID, sessionID, token string, validity time.Duration) error

	// Consume removes a refresh token and returns its metadata in one step, so a
	// token can be redeemed once. Unknown or already consumed tokens yield
	// common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByUser removes every refresh token of userID and returns the
	// distinct session ids they belonged to.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)

	// DeleteExpired removes tokens that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
