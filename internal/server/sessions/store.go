// Package sessions keeps the list of revoked sign-in sessions. Access tokens
// carry their session id; a revoked id stays listed until every access token
// of that session has expired.
package sessions

import (
	"context"
	"time"
)

type Store interface {
	// Revoke lists sessionID as revoked for ttl.
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	Ping(ctx context.Context) error
}
