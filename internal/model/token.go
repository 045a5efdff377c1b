package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, err error)
	ParseAccessToken(token string) (userID uuid.UUID, issuedAt time.Time, err error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
}

var (
	// ErrTokenMalformed is returned for tokens that cannot be decoded or
	// carry the wrong type claim.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned for structurally valid but expired tokens.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignature is returned when the token signature does not verify.
	ErrTokenSignature = errors.New("token signature invalid")
)
