// Package httpctx carries the authenticated user on request contexts.
package httpctx

import (
	"context"

	"github.com/avoronov/account-service/internal/model"
)

type contextKey int

const userKey contextKey = 0

// Manager implements model.ContextManager for HTTP requests.
type Manager struct{}

// NewManager creates a new HTTP context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserToContext returns a child context carrying the resolved user.
func (m *Manager) SetUserToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext retrieves the user attached by the authenticate
// middleware, reporting whether one was present.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}
