package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/api/http/response"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
	"github.com/avoronov/account-service/internal/service"
)

// UserService defines user record management operations.
type UserService interface {
	List(ctx context.Context, params model.ListParams) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	Create(ctx context.Context, input service.CreateUserInput) (model.User, error)
	Update(ctx context.Context, id uuid.UUID, input service.UpdateUserInput) (model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (model.User, error)
}

// User handles the HTTP endpoints for user records.
type User struct {
	userService    UserService
	contextManager model.ContextManager
	cookies        *Cookies
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, contextManager model.ContextManager, cookies *Cookies, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		cookies:        cookies,
		logger:         logger,
	}
}

// Me returns the authenticated user's own profile.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.contextManager.GetUserFromContext(r.Context())
	if !ok {
		response.Error(w, h.logger, apierr.Auth("you are not logged in, please log in to get access"))
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

// DeleteMe soft-deletes the authenticated user's own account and closes
// the session.
func (h *User) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.contextManager.GetUserFromContext(r.Context())
	if !ok {
		response.Error(w, h.logger, apierr.Auth("you are not logged in, please log in to get access"))
		return
	}

	deactivated, err := h.userService.Deactivate(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("User handler: self-deactivation failed",
			"user_id", user.ID,
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	h.cookies.Clear(w)
	response.Success(w, http.StatusOK, map[string]any{"user": deactivated})
}

// List returns a page of users. Admin only.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context(), listParams(r))
	if err != nil {
		h.logger.Error("User handler: list failed",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	response.SuccessList(w, http.StatusOK, len(users), map[string]any{"users": users})
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Create creates a user record. Admin only.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, err := h.userService.Create(r.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		h.logger.Error("User handler: create failed",
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]any{"user": user})
}

// Get returns a single user by id. Admin only.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role"`
	Password  *string `json:"password"`
}

// Update partially updates a user record. Admin only.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Avatar:    req.Avatar,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		h.logger.Error("User handler: update failed",
			"user_id", id,
			"error", err.Error())
		response.Error(w, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

// Delete soft-deletes a user record. Admin only.
func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	user, err := h.userService.Deactivate(r.Context(), id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid user id")
	}
	return id, nil
}

// listParams parses page, limit and sort query parameters. Sort is a
// comma-separated field list; a leading "-" selects descending order.
func listParams(r *http.Request) model.ListParams {
	params := model.ListParams{}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		params.Limit = limit
	}

	if sort := r.URL.Query().Get("sort"); sort != "" {
		for _, field := range strings.Split(sort, ",") {
			if field == "" {
				continue
			}
			if strings.HasPrefix(field, "-") {
				params.Sort = append(params.Sort, model.SortField{Field: field[1:], Desc: true})
				continue
			}
			params.Sort = append(params.Sort, model.SortField{Field: field})
		}
	}

	return params.Normalize()
}
