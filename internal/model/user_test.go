package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleManager.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_PasswordChangedAfter(t *testing.T) {
	now := time.Now()

	u := User{}
	assert.False(t, u.PasswordChangedAfter(now))

	changed := now.Add(-time.Hour)
	u.PasswordChangedAt = &changed
	assert.False(t, u.PasswordChangedAfter(now))
	assert.True(t, u.PasswordChangedAfter(now.Add(-2*time.Hour)))
}

func TestUser_SensitiveFieldsNotSerialized(t *testing.T) {
	token := "reset-token-digest"
	now := time.Now()
	u := User{
		ID:                   uuid.New(),
		Email:                "ada@example.com",
		PasswordHash:         "$2a$12$hash",
		PasswordChangedAt:    &now,
		PasswordResetToken:   &token,
		PasswordResetExpires: &now,
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), token)
	assert.Contains(t, string(data), "ada@example.com")
}

func TestListParams_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        ListParams
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", in: ListParams{}, wantPage: 1, wantLimit: 10},
		{name: "kept in range", in: ListParams{Page: 3, Limit: 25}, wantPage: 3, wantLimit: 25},
		{name: "negative page", in: ListParams{Page: -1, Limit: 10}, wantPage: 1, wantLimit: 10},
		{name: "limit too large", in: ListParams{Page: 1, Limit: 500}, wantPage: 1, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
