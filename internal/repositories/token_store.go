package repositories

import (
	"context"
	"time"
)

// TokenStore persists refresh tokens and the revoked-access-token
// blacklist, keyed by user identity, with expiry handled by the backend.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, email, token string, ttl time.Duration) error
	DeleteRefreshToken(ctx context.Context, email string) error

	// BlacklistAccessToken revokes an access token for at least its
	// remaining lifetime, recording the reason for the revocation.
	BlacklistAccessToken(ctx context.Context, token, reason string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)

	// SaveLoginPayload caches an OAuth login response under a one-time
	// token; TakeLoginPayload reads and deletes it atomically, returning
	// nil when the token is unknown or already consumed.
	SaveLoginPayload(ctx context.Context, token string, payload []byte, ttl time.Duration) error
	TakeLoginPayload(ctx context.Context, token string) ([]byte, error)
}
