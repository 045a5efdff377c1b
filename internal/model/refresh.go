package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshSessionStore tracks outstanding refresh tokens server-side.
// Entries expire automatically at their TTL independent of explicit
// revocation.
type RefreshSessionStore interface {
	// Store registers a freshly issued refresh token for a subject.
	// Tokens are cryptographically unique, so overwriting an existing
	// entry never happens in a correct flow.
	Store(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// TakeAndRevoke atomically reads and deletes the entry for a token.
	// Under concurrent redemption of the same token exactly one caller
	// succeeds; every other caller observes ErrNotFound.
	TakeAndRevoke(ctx context.Context, token string) (uuid.UUID, error)
	// Revoke unconditionally deletes the entry. Idempotent.
	Revoke(ctx context.Context, token string) error
}
