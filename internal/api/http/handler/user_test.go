package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/account-service/internal/api/http/httpctx"
	"github.com/avoronov/account-service/internal/apierr"
	"github.com/avoronov/account-service/internal/model"
	"github.com/avoronov/account-service/internal/service"
	"github.com/avoronov/account-service/internal/testutil"
)

type userServiceMock struct {
	mock.Mock
}

func (m *userServiceMock) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *userServiceMock) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Create(ctx context.Context, input service.CreateUserInput) (model.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Update(ctx context.Context, id uuid.UUID, input service.UpdateUserInput) (model.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Deactivate(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func newUserHandler(svc UserService) *User {
	return NewUser(svc, httpctx.NewManager(), testCookies(), testutil.MakeNoopLogger())
}

func withUser(r *http.Request, user model.User) *http.Request {
	ctx := httpctx.NewManager().SetUserToContext(r.Context(), user)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUser_Me(t *testing.T) {
	svc := &userServiceMock{}
	me := model.User{ID: uuid.New(), Email: "ada@example.com", Active: true}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), me)
	rec := httptest.NewRecorder()

	newUserHandler(svc).Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), me.Email)
}

func TestUser_Me_NoContextUser(t *testing.T) {
	svc := &userServiceMock{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	newUserHandler(svc).Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUser_DeleteMe(t *testing.T) {
	svc := &userServiceMock{}
	me := model.User{ID: uuid.New(), Active: true}

	svc.On("Deactivate", mock.Anything, me.ID).Return(model.User{ID: me.ID, Active: false}, nil)

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/users/me", nil), me)
	rec := httptest.NewRecorder()

	newUserHandler(svc).DeleteMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(t, rec.Result().Cookies(), AccessTokenCookie)
	assert.Equal(t, -1, access.MaxAge)

	svc.AssertExpectations(t)
}

func TestUser_List_QueryParams(t *testing.T) {
	svc := &userServiceMock{}

	want := model.ListParams{
		Page:  2,
		Limit: 5,
		Sort:  []model.SortField{{Field: "lastName"}, {Field: "createdAt", Desc: true}},
	}
	svc.On("List", mock.Anything, want).Return([]model.User{{}, {}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2&limit=5&sort=lastName,-createdAt", nil)
	rec := httptest.NewRecorder()

	newUserHandler(svc).List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":2`)
	svc.AssertExpectations(t)
}

func TestUser_List_DefaultParams(t *testing.T) {
	svc := &userServiceMock{}

	svc.On("List", mock.Anything, model.ListParams{Page: 1, Limit: 10}).Return([]model.User{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	newUserHandler(svc).List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_Create(t *testing.T) {
	svc := &userServiceMock{}
	created := model.User{ID: uuid.New(), Email: "grace@example.com", Role: model.RoleManager}

	svc.On("Create", mock.Anything, service.CreateUserInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "Sup3rSecret!pw",
		Role:      "manager",
	}).Return(created, nil)

	body := `{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","password":"Sup3rSecret!pw","role":"manager"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newUserHandler(svc).Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUser_Get(t *testing.T) {
	svc := &userServiceMock{}
	id := uuid.New()

	svc.On("Get", mock.Anything, id).Return(model.User{ID: id}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id.String(), nil), "id", id.String())
	rec := httptest.NewRecorder()

	newUserHandler(svc).Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUser_Get_InvalidID(t *testing.T) {
	svc := &userServiceMock{}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/users/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	newUserHandler(svc).Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUser_Get_NotFound(t *testing.T) {
	svc := &userServiceMock{}
	id := uuid.New()

	svc.On("Get", mock.Anything, id).Return(model.User{}, apierr.NotFound("no user found with that id"))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id.String(), nil), "id", id.String())
	rec := httptest.NewRecorder()

	newUserHandler(svc).Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUser_Update(t *testing.T) {
	svc := &userServiceMock{}
	id := uuid.New()

	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(input service.UpdateUserInput) bool {
		return input.FirstName != nil && *input.FirstName == "Augusta" && input.Email == nil
	})).Return(model.User{ID: id, FirstName: "Augusta"}, nil)

	body := `{"firstName":"Augusta"}`
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/users/"+id.String(), strings.NewReader(body)), "id", id.String())
	rec := httptest.NewRecorder()

	newUserHandler(svc).Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_Delete(t *testing.T) {
	svc := &userServiceMock{}
	id := uuid.New()

	svc.On("Deactivate", mock.Anything, id).Return(model.User{ID: id, Active: false}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+id.String(), nil), "id", id.String())
	rec := httptest.NewRecorder()

	newUserHandler(svc).Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":false`)
}
