package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/avoronov/account-service/internal/api/http/handler"
	"github.com/avoronov/account-service/internal/api/http/middleware"
	"github.com/avoronov/account-service/internal/api/http/response"
	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
)

// Dependencies holds everything the router needs to wire endpoints.
type Dependencies struct {
	Auth         *handler.Auth
	Users        *handler.User
	Authenticate *middleware.Authenticate
	Restrict     *middleware.Restrict
	Logger       *logger.Logger
}

// New constructs the chi router containing all API endpoints.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLogging(deps.Logger).Handle)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.Auth.Signup)
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.Post("/logout", deps.Auth.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(deps.Authenticate.Protect)

			r.Get("/me", deps.Users.Me)
			r.Delete("/me", deps.Users.DeleteMe)

			r.Group(func(r chi.Router) {
				r.Use(deps.Restrict.To(model.RoleAdmin))

				r.Get("/", deps.Users.List)
				r.Post("/", deps.Users.Create)
				r.Get("/{id}", deps.Users.Get)
				r.Patch("/{id}", deps.Users.Update)
				r.Delete("/{id}", deps.Users.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, deps.Logger, apierr.NotFound("route "+req.URL.Path+" not found"))
	})

	return r
}
