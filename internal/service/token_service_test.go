package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/mocks"
	"github.com/avoronov/account-service/internal/model"
	redisrepo "github.com/avoronov/account-service/internal/repository/redis"
	"github.com/avoronov/account-service/internal/testutil"
	"github.com/avoronov/account-service/internal/token"
)

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}
	userID := uuid.New()

	manager.On("GenerateAccessToken", userID).Return("access-token", nil)
	manager.On("GenerateRefreshToken", userID).Return("refresh-token", "jti-1", nil)
	registry.On("Store", mock.Anything, "refresh-token", userID, time.Hour).Return(nil)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	pair, err := s.Issue(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "access-token", pair.Access)
	assert.Equal(t, "refresh-token", pair.Refresh)

	registry.AssertExpectations(t)
}

func TestTokenService_Issue_RegistryDown(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}
	userID := uuid.New()

	manager.On("GenerateAccessToken", userID).Return("access-token", nil)
	manager.On("GenerateRefreshToken", userID).Return("refresh-token", "jti-1", nil)
	registry.On("Store", mock.Anything, "refresh-token", userID, time.Hour).Return(errors.New("connection refused"))

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	_, err := s.Issue(ctx, userID)
	require.Error(t, err)
}

func TestTokenService_Refresh_Rotates(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}
	userID := uuid.New()

	manager.On("ParseRefreshToken", "old-refresh").Return(userID, "jti-old", nil)
	registry.On("TakeAndRevoke", mock.Anything, "old-refresh").Return(userID, nil)
	manager.On("GenerateAccessToken", userID).Return("new-access", nil)
	manager.On("GenerateRefreshToken", userID).Return("new-refresh", "jti-new", nil)
	registry.On("Store", mock.Anything, "new-refresh", userID, time.Hour).Return(nil)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	pair, subject, err := s.Refresh(ctx, "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.Access)
	assert.Equal(t, "new-refresh", pair.Refresh)
	assert.Equal(t, userID, subject)

	registry.AssertExpectations(t)
}

func TestTokenService_Refresh_ReuseDetected(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}
	userID := uuid.New()

	manager.On("ParseRefreshToken", "consumed-refresh").Return(userID, "jti-old", nil)
	registry.On("TakeAndRevoke", mock.Anything, "consumed-refresh").Return(uuid.Nil, model.ErrNotFound)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	_, _, err := s.Refresh(ctx, "consumed-refresh")
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)

	manager.AssertNotCalled(t, "GenerateAccessToken", mock.Anything)
}

func TestTokenService_Refresh_InvalidToken(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}

	manager.On("ParseRefreshToken", "garbage").Return(uuid.Nil, "", model.ErrTokenMalformed)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	_, _, err := s.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, model.ErrTokenMalformed)

	registry.AssertNotCalled(t, "TakeAndRevoke", mock.Anything, mock.Anything)
}

func TestTokenService_Refresh_SubjectMismatch(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}
	userID := uuid.New()

	manager.On("ParseRefreshToken", "odd-refresh").Return(userID, "jti", nil)
	registry.On("TakeAndRevoke", mock.Anything, "odd-refresh").Return(uuid.New(), nil)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	_, _, err := s.Refresh(ctx, "odd-refresh")

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)
}

// Exercises the full rotation flow against a real codec and an in-memory
// registry: the same refresh token must never be redeemable twice.
func TestTokenService_Refresh_DoubleUse(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager := token.NewJWT(token.Config{Secret: "secret", AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour})
	registry := redisrepo.NewRefreshRegistry(client, "rt")
	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	userID := uuid.New()
	pair, err := s.Issue(ctx, userID)
	require.NoError(t, err)

	rotated, subject, err := s.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NotEqual(t, pair.Refresh, rotated.Refresh)
	require.Equal(t, userID, subject)

	_, _, err = s.Refresh(ctx, pair.Refresh)
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)

	// The rotated token is still live.
	_, _, err = s.Refresh(ctx, rotated.Refresh)
	require.NoError(t, err)
}

func TestTokenService_RevokeByToken(t *testing.T) {
	ctx := context.Background()
	manager := &mocks.TokenManager{}
	registry := &mocks.RefreshSessionStore{}

	registry.On("Revoke", mock.Anything, "refresh-token").Return(nil)

	s := NewTokenService(manager, registry, time.Hour, testutil.MakeNoopLogger())

	require.NoError(t, s.RevokeByToken(ctx, "refresh-token"))
	registry.AssertExpectations(t)
}
