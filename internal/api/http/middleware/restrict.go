package middleware

import (
	"net/http"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/api/http/response"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
)

// Restrict gates handlers by user role. It must run after Protect so
// the user is already in the request context.
type Restrict struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewRestrict creates a new Restrict middleware instance.
func NewRestrict(contextManager model.ContextManager, logger *logger.Logger) *Restrict {
	return &Restrict{contextManager: contextManager, logger: logger}
}

// To allows the request through only when the authenticated user holds
// one of the given roles.
func (m *Restrict) To(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := m.contextManager.GetUserFromContext(r.Context())
			if !ok {
				response.Error(w, m.logger, apierr.Auth("you are not logged in, please log in to get access"))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Warn("Restrict middleware: access denied",
				"user_id", user.ID,
				"role", string(user.Role),
				"path", r.URL.Path)
			response.Error(w, m.logger, apierr.Authz("you do not have permission to perform this action"))
		})
	}
}
