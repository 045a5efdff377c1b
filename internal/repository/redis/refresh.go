// Package redis implements the refresh-session registry on top of Redis.
// Keys are SHA-256 digests of the token string, so the raw token never
// reaches the registry; values are the owning subject id. Redis key expiry
// provides the TTL, and GETDEL provides the single atomic
// redeem-exactly-once primitive the rotation protocol depends on.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avoronov/account-service/internal/model"
)

// ErrUnavailable is returned when Redis cannot be reached.
var ErrUnavailable = errors.New("refresh registry unavailable")

var _ model.RefreshSessionStore = (*RefreshRegistry)(nil)

// RefreshRegistry is a Redis-backed model.RefreshSessionStore.
type RefreshRegistry struct {
	client redis.UniversalClient
	prefix string
}

// NewRefreshRegistry creates a registry using the given client. prefix
// namespaces the registry keys.
func NewRefreshRegistry(client redis.UniversalClient, prefix string) *RefreshRegistry {
	if prefix == "" {
		prefix = "rt"
	}
	return &RefreshRegistry{client: client, prefix: prefix}
}

func (r *RefreshRegistry) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + ":" + hex.EncodeToString(sum[:])
}

// Store registers a refresh token for userID with the given TTL.
func (r *RefreshRegistry) Store(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// TakeAndRevoke redeems a refresh token exactly once. GETDEL is a single
// Redis command, so when two requests race on the same token only one gets
// the value; the other sees model.ErrNotFound.
func (r *RefreshRegistry) TakeAndRevoke(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := r.client.GetDel(ctx, r.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, model.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse registry entry: %w", err)
	}

	return userID, nil
}

// Revoke deletes the entry for a token. Deleting an absent entry is a no-op.
func (r *RefreshRegistry) Revoke(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time registry availability check.
func (r *RefreshRegistry) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
