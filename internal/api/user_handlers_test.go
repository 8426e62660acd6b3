package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
)

func TestUsers_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users", ts.userToken(t, "mod", domain.RoleModerator))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/users", ts.userToken(t, "boss", domain.RoleAdmin))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, decodeBody[Page[UserResponse]](t, resp).Count)
}

func TestUsers_AdminCRUD(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.userToken(t, "boss", domain.RoleAdmin)

	resp := ts.api.Post("/api/v1/users", admin, map[string]any{
		"username": "newbie",
		"email":    "newbie@example.com",
		"role":     "moderator",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "moderator", decodeBody[UserResponse](t, resp).Role)

	resp = ts.api.Post("/api/v1/users", admin, map[string]any{
		"username": "newbie",
		"email":    "newbie@example.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	fields := decodeBody[fieldBody](t, resp)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")

	resp = ts.api.Patch("/api/v1/users/newbie", admin, map[string]any{"bio": "hello", "role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeBody[UserResponse](t, resp)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "admin", updated.Role)

	resp = ts.api.Patch("/api/v1/users/newbie", admin, map[string]any{"role": "overlord"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeBody[fieldBody](t, resp), "role")

	resp = ts.api.Get("/api/v1/users/newbie", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "newbie@example.com", decodeBody[UserResponse](t, resp).Email)

	resp = ts.api.Delete("/api/v1/users/newbie", admin)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/users/newbie", admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUsers_SelfProfile(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.userToken(t, "reader", domain.RoleUser)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Patch("/api/v1/users/me", token, map[string]any{"first_name": "Ann", "role": "admin"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	me := decodeBody[UserResponse](t, resp)
	assert.Equal(t, "Ann", me.FirstName)
	assert.Equal(t, "user", me.Role)

	// A regular user cannot reach another account through the admin routes.
	resp = ts.api.Get("/api/v1/users/reader", token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
