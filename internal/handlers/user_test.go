package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drift-desk/driftdesk/internal/models"
)

func TestCreateUserRequiresAdmin(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "plain", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "supersecret",
	}, basicAuth("plain"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUserDefaults(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)

	w := doRequest(t, r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "supersecret",
	}, basicAuth("admin"))

	require.Equal(t, http.StatusCreated, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, models.RoleUser, user["role"])
	assert.Equal(t, true, user["is_active"])
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)
	createTestUser(t, "taken", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "taken",
		"email":    "other@example.com",
		"password": "supersecret",
	}, basicAuth("admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)
	createTestUser(t, "taken", models.RoleUser, true)

	w := doRequest(t, r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "different",
		"email":    "taken@example.com",
		"password": "supersecret",
	}, basicAuth("admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)

	for i := 0; i < 3; i++ {
		createTestUser(t, fmt.Sprintf("user%d", i), models.RoleUser, true)
	}

	w := doRequest(t, r, http.MethodGet, "/api/users", nil, basicAuth("admin"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(4), body["total"])
	assert.Len(t, body["users"], 4)
}

func TestGetUserNotFound(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)

	w := doRequest(t, r, http.MethodGet, "/api/users/9999", nil, basicAuth("admin"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUser(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "admin", models.RoleAdmin, true)
	target := createTestUser(t, "target", models.RoleUser, true)

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", target.ID), nil, basicAuth("admin"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "target", body["username"])
}
