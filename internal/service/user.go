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
	"github.com/avoronov/account-service/internal/password"
)

// CreateUserInput carries the admin user-creation fields.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// UpdateUserInput describes a partial update. Nil fields are left alone.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Avatar    *string
	Role      *string
	Password  *string
}

// User implements user record management on top of the UserStore.
type User struct {
	users  model.UserStore
	logger *logger.Logger
}

func NewUser(users model.UserStore, logger *logger.Logger) *User {
	return &User{users: users, logger: logger}
}

func (s *User) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	users, err := s.users.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get reads a user by id regardless of active state, so admins can still
// inspect soft-deleted records.
func (s *User) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierr.NotFound("no user found with that id")
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Create is the admin creation path; it applies the same password policy
// as signup and defaults the role to "user".
func (s *User) Create(ctx context.Context, input CreateUserInput) (model.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return model.User{}, apierr.Validation("please provide first name, last name, email and password")
	}
	if !validEmail(input.Email) {
		return model.User{}, apierr.Validation("please provide a valid email address")
	}

	role := model.RoleUser
	if input.Role != "" {
		role = model.Role(input.Role)
		if !role.Valid() {
			return model.User{}, apierr.Validation("invalid role")
		}
	}

	if err := password.Validate(input.Password); err != nil {
		return model.User{}, apierr.Validation(err.Error())
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Avatar:       DefaultAvatar,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return model.User{}, apierr.Conflict("email already exists, please use another email")
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User service: user created",
		"user_id", created.ID,
		"role", created.Role)

	created.PasswordHash = ""
	return created, nil
}

// Update applies a partial update. A password change re-validates the
// policy, re-hashes, and stamps password_changed_at, which invalidates
// access tokens issued before the change.
func (s *User) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (model.User, error) {
	update := model.UserUpdate{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Avatar:    input.Avatar,
	}

	if input.Role != nil {
		role := model.Role(*input.Role)
		if !role.Valid() {
			return model.User{}, apierr.Validation("invalid role")
		}
		update.Role = &role
	}

	if input.Password != nil {
		if err := password.Validate(*input.Password); err != nil {
			return model.User{}, apierr.Validation(err.Error())
		}
		hash, err := password.Hash(*input.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		changedAt := time.Now()
		update.PasswordHash = &hash
		update.PasswordChangedAt = &changedAt
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return model.User{}, apierr.NotFound("no user found with that id")
		case errors.Is(err, model.ErrDuplicateEmail):
			return model.User{}, apierr.Conflict("email already exists, please use another email")
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	if input.Password != nil {
		s.logger.Info("User service: password changed",
			"user_id", id)
	}

	return user, nil
}

// Deactivate soft-deletes a user. The record stays; active becomes false.
func (s *User) Deactivate(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.Deactivate(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierr.NotFound("no user found with that id")
		}
		return model.User{}, fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.logger.Info("User service: user deactivated",
		"user_id", id)

	return user, nil
}
