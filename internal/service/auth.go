package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
	"github.com/avoronov/account-service/internal/password"
)

// DefaultAvatar is assigned to accounts created without an avatar.
const DefaultAvatar = "user-avatar-default.jpg"

// validEmail reports whether s is a bare RFC 5322 address, with no display
// name or angle brackets around it.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Auth drives the signup, login, logout and request-guard flows.
type Auth struct {
	users  model.UserStore
	tokens *TokenService
	logger *logger.Logger
}

func NewAuth(users model.UserStore, tokens *TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Signup creates a new active user-role account and issues its first token
// pair. The returned user never carries the password hash.
func (a *Auth) Signup(ctx context.Context, input SignupInput) (model.User, TokenPair, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" || input.PasswordConfirm == "" {
		return model.User{}, TokenPair{}, apierr.Validation("please provide first name, last name, email, password and password confirmation")
	}
	if !validEmail(input.Email) {
		return model.User{}, TokenPair{}, apierr.Validation("please provide a valid email address")
	}
	if input.Password != input.PasswordConfirm {
		return model.User{}, TokenPair{}, apierr.Validation("passwords do not match")
	}
	if err := password.Validate(input.Password); err != nil {
		return model.User{}, TokenPair{}, apierr.Validation(err.Error())
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Avatar:       DefaultAvatar,
		Role:         model.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			a.logger.Info("Auth service: signup with taken email",
				"email", input.Email)
			return model.User{}, TokenPair{}, apierr.Conflict("email already exists, please use another email")
		}
		return model.User{}, TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := a.tokens.Issue(ctx, created.ID)
	if err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("failed to issue token pair: %w", err)
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", created.ID)

	created.PasswordHash = ""
	return created, pair, nil
}

// Login verifies credentials and issues a token pair. An unknown email and
// a wrong password produce the same error so the two causes cannot be told
// apart by the caller.
func (a *Auth) Login(ctx context.Context, email, plaintext string) (model.User, TokenPair, error) {
	if email == "" || plaintext == "" {
		return model.User{}, TokenPair{}, apierr.Validation("please provide email and password")
	}

	user, err := a.users.GetByEmailWithHash(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, TokenPair{}, apierr.Auth("incorrect email or password")
		}
		return model.User{}, TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !password.Verify(user.PasswordHash, plaintext) {
		return model.User{}, TokenPair{}, apierr.Auth("incorrect email or password")
	}

	if !user.Active {
		return model.User{}, TokenPair{}, apierr.Auth("your account has been deactivated and can no longer be used")
	}

	pair, err := a.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("failed to issue token pair: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	user.PasswordHash = ""
	return user, pair, nil
}

// Logout revokes the presented refresh token, if any. Always succeeds from
// the caller's point of view.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := a.tokens.RevokeByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Authenticate is the request-guard core. It validates the access token,
// re-fetches the subject's current state to catch deactivation, and rejects
// tokens issued before the subject's last password change.
func (a *Auth) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	if accessToken == "" {
		return model.User{}, apierr.Auth("you are not logged in, please log in to get access")
	}

	userID, issuedAt, err := a.tokens.Authenticate(accessToken)
	if err != nil {
		return model.User{}, apierr.From(err)
	}

	user, err := a.users.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierr.Auth("the user belonging to this token no longer exists")
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.PasswordChangedAfter(issuedAt) {
		return model.User{}, apierr.Auth("user recently changed password, please log in again")
	}

	return user, nil
}

// Refresh rotates a presented refresh token into a new pair. The subject
// must still be an active account; a pair rotated for a deactivated or
// deleted subject is revoked on the spot.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, apierr.Auth("you are not logged in, please log in to get access")
	}

	pair, userID, err := a.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := a.users.GetActiveByID(ctx, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Warn("Auth service: refresh for inactive account",
				"user_id", userID)
			if err := a.tokens.RevokeByToken(ctx, pair.Refresh); err != nil {
				a.logger.Error("Auth service: failed to revoke rotated token",
					"user_id", userID,
					"error", err.Error())
			}
			return TokenPair{}, apierr.Auth("invalid token, please log in again")
		}
		return TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return pair, nil
}
