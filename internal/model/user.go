package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role enumerates user authorization roles.
type Role string

const (
	// RoleUser is the default role assigned at signup.
	RoleUser Role = "user"
	// RoleAdmin grants access to user management routes.
	RoleAdmin Role = "admin"
	// RoleManager is an elevated non-admin role.
	RoleManager Role = "manager"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// UserStore defines persistence operations for users. GetByID reads a user
// regardless of active state; GetActiveByID filters out deactivated
// accounts and backs the request-guard path.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmailWithHash(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context, params ListParams) ([]User, error)
}

// User represents a stored user account.
// PasswordHash is never serialized and is populated only by
// GetByEmailWithHash, which exists solely for login verification.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Avatar               string     `json:"avatar"`
	Role                 Role       `json:"role"`
	Active               bool       `json:"active"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   *string    `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Tokens issued before a password change are stale.
func (u User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// UserUpdate describes a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Avatar            *string
	Role              *Role
	PasswordHash      *string
	PasswordChangedAt *time.Time
}

// SortField is a single list ordering directive.
type SortField struct {
	Field string
	Desc  bool
}

// ListParams controls pagination and ordering of user listings.
type ListParams struct {
	Page  int
	Limit int
	Sort  []SortField
}

// Normalize clamps pagination parameters to sane bounds.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}
