package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
)

// TokenPair is an access/refresh token pair handed to the transport layer.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenService issues, rotates and revokes token pairs. It composes the
// TokenManager and the RefreshSessionStore and owns the rotation-on-use
// and reuse-detection policy.
type TokenService struct {
	manager    model.TokenManager
	registry   model.RefreshSessionStore
	refreshTTL time.Duration
	logger     *logger.Logger
}

func NewTokenService(manager model.TokenManager, registry model.RefreshSessionStore, refreshTTL time.Duration, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, registry: registry, refreshTTL: refreshTTL, logger: logger}
}

// Issue mints a fresh token pair for a subject and registers the refresh
// token. The registry TTL equals the refresh token's embedded expiry.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, _, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.registry.Store(ctx, refresh, userID, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("persist refresh: %w", err)
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh redeems a refresh token and rotates it into a new pair for the
// returned subject. A token that verifies but is absent from the registry
// has already been consumed or revoked; that is treated as a theft signal,
// logged with the decoded subject, and answered with a generic
// invalid-token error. Signature validity alone never earns new
// credentials.
func (s *TokenService) Refresh(ctx context.Context, presented string) (TokenPair, uuid.UUID, error) {
	userID, _, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return TokenPair{}, uuid.Nil, err
	}

	owner, err := s.registry.TakeAndRevoke(ctx, presented)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Warn("Token service: refresh token reuse detected",
				"user_id", userID)
			return TokenPair{}, uuid.Nil, apierr.Auth("invalid token, please log in again")
		}
		return TokenPair{}, uuid.Nil, fmt.Errorf("redeem refresh: %w", err)
	}

	// The registry entry and the token claims must agree on the subject.
	if owner != userID {
		s.logger.Warn("Token service: refresh token subject mismatch",
			"token_user_id", userID,
			"registry_user_id", owner)
		return TokenPair{}, uuid.Nil, apierr.Auth("invalid token, please log in again")
	}

	pair, err := s.Issue(ctx, userID)
	if err != nil {
		return TokenPair{}, uuid.Nil, err
	}

	s.logger.Info("Token service: refresh token rotated",
		"user_id", userID)

	return pair, userID, nil
}

// RevokeByToken deletes the registry entry for a presented refresh token.
// Used on logout; revoking an already-consumed token is a no-op.
func (s *TokenService) RevokeByToken(ctx context.Context, presented string) error {
	return s.registry.Revoke(ctx, presented)
}

// Authenticate resolves the subject of an access token without touching
// any store. The caller re-fetches subject state separately.
func (s *TokenService) Authenticate(token string) (uuid.UUID, time.Time, error) {
	return s.manager.ParseAccessToken(token)
}
