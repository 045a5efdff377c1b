package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/account-service/internal/model"
)

func TestConstructors_Status(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantKind   Kind
		wantStatus int
	}{
		{name: "validation", err: Validation("bad input"), wantKind: KindValidation, wantStatus: http.StatusBadRequest},
		{name: "auth", err: Auth("no credential"), wantKind: KindAuth, wantStatus: http.StatusUnauthorized},
		{name: "authz", err: Authz("forbidden"), wantKind: KindAuthz, wantStatus: http.StatusForbidden},
		{name: "not found", err: NotFound("missing"), wantKind: KindNotFound, wantStatus: http.StatusNotFound},
		{name: "conflict", err: Conflict("duplicate"), wantKind: KindConflict, wantStatus: http.StatusBadRequest},
		{name: "internal", err: Internal(errors.New("boom")), wantKind: KindInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
		})
	}
}

func TestOperational(t *testing.T) {
	assert.True(t, Validation("bad input").Operational())
	assert.True(t, Auth("no credential").Operational())
	assert.False(t, Internal(errors.New("boom")).Operational())
}

func TestFrom_PassThrough(t *testing.T) {
	orig := Auth("no credential")
	got := From(orig)
	assert.Same(t, orig, got)

	wrapped := fmt.Errorf("outer: %w", orig)
	got = From(wrapped)
	assert.Same(t, orig, got)
}

func TestFrom_ModelSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
	}{
		{name: "not found", err: model.ErrNotFound, wantKind: KindNotFound, wantStatus: http.StatusNotFound},
		{name: "duplicate email", err: model.ErrDuplicateEmail, wantKind: KindConflict, wantStatus: http.StatusBadRequest},
		{name: "expired token", err: model.ErrTokenExpired, wantKind: KindAuth, wantStatus: http.StatusUnauthorized},
		{name: "malformed token", err: model.ErrTokenMalformed, wantKind: KindAuth, wantStatus: http.StatusUnauthorized},
		{name: "bad signature", err: model.ErrTokenSignature, wantKind: KindAuth, wantStatus: http.StatusUnauthorized},
		{name: "wrapped sentinel", err: fmt.Errorf("store: %w", model.ErrNotFound), wantKind: KindNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestFrom_Unknown_MasksDetail(t *testing.T) {
	cause := errors.New("connection refused")
	got := From(cause)

	require.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "something went wrong", got.Message)
	assert.ErrorIs(t, got, cause)
}
