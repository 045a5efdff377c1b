package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/api/http/response"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
	"github.com/avoronov/account-service/internal/service"
)

// AuthService defines the session flows driven by the auth endpoints.
type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (model.User, service.TokenPair, error)
	Login(ctx context.Context, email, password string) (model.User, service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
}

// Auth handles the HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	cookies     *Cookies
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, cookies *Cookies, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

type signupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Signup registers a new account and opens its first session.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, pair, err := h.authService.Signup(r.Context(), service.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.logger.Error("Auth handler: signup failed",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	h.cookies.SetSession(w, pair)
	response.Success(w, http.StatusCreated, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	h.cookies.SetSession(w, pair)
	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

// Logout revokes the ambient refresh token and clears both session
// cookies. Always succeeds.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), ReadRefreshToken(r)); err != nil {
		h.logger.Error("Auth handler: logout failed",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	h.cookies.Clear(w)
	response.Success(w, http.StatusOK, nil)
}

// Refresh rotates the ambient refresh token into a new session pair.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.authService.Refresh(r.Context(), ReadRefreshToken(r))
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	h.cookies.SetSession(w, pair)
	response.Success(w, http.StatusOK, nil)
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return apierr.Validation("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apierr.Validation("invalid request body")
	}
	return nil
}
