package middleware

import (
	"context"
	"net/http"

	"github.com/avoronov/account-service/internal/api/http/handler"
	"github.com/avoronov/account-service/internal/api/http/response"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
)

// Authenticator resolves a user from an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

// Authenticate validates access tokens and injects the user into the
// request context.
type Authenticate struct {
	auth           Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(auth Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{auth: auth, contextManager: contextManager, logger: logger}
}

// Protect rejects requests without a valid access token for an active
// user. The token is read from the access token cookie.
func (m *Authenticate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.auth.Authenticate(r.Context(), handler.ReadAccessToken(r))
		if err != nil {
			response.Error(w, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetUserToContext(r.Context(), user)))
	})
}
