// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/middleware"
	"github.com/minhngo/uservault/internal/platform/sec"
)

// newAuthTestServer wires the handler the way the real API server does,
// including the bearer-token middleware.
func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokenService, err := sec.NewTokenService("http-test-secret", "uservault.app", time.Hour)
	require.NoError(t, err)

	service := NewService(newMemoryUserRepository(), tokenService)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokenService))
	router.Mount("/api/v1/auth", NewHandler(service).Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	return response, decoded
}

func getJSON(t *testing.T, server *httptest.Server, path, bearer string) (*http.Response, map[string]any) {
	t.Helper()

	request, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	return response, decoded
}

// TestAuthLifecycle walks the full journey of one account: registration,
// a failed login, a successful login, profile retrieval, and the conflict
// on re-registration.
func TestAuthLifecycle(t *testing.T) {
	server := newAuthTestServer(t)

	// Register.
	response, body := postJSON(t, server, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	created := body["data"].(map[string]any)
	assert.Equal(t, "alice", created["username"])
	assert.Equal(t, "alice@example.com", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "password_hash")

	// Wrong password is a 401 with the exact message.
	response, body = postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "not-it",
	})
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "Wrong password", body["error"])

	// Unknown email is a 401 with its own message.
	response, body = postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, "Email does not exist", body["error"])

	// Correct credentials return a token and the user.
	response, body = postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	session := body["data"].(map[string]any)
	token, _ := session["token"].(string)
	require.NotEmpty(t, token)
	loggedIn := session["user"].(map[string]any)
	assert.Equal(t, created["id"], loggedIn["id"])
	assert.NotContains(t, loggedIn, "password_hash")

	// The token resolves back to the same profile.
	response, body = getJSON(t, server, "/api/v1/auth/profile", token)
	require.Equal(t, http.StatusOK, response.StatusCode)
	profile := body["data"].(map[string]any)
	assert.Equal(t, created["id"], profile["id"])
	assert.Equal(t, "alice@example.com", profile["email"])

	// Re-registering the same email conflicts.
	response, body = postJSON(t, server, "/api/v1/auth/register", "", map[string]string{
		"username": "clone",
		"email":    "Alice@Example.com",
		"password": "secret2",
	})
	require.Equal(t, http.StatusConflict, response.StatusCode)
	assert.Equal(t, "Email is already in use", body["error"])
}

func TestAuthRegister_Validation(t *testing.T) {
	server := newAuthTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{
			name: "missing email",
			body: map[string]string{"username": "alice", "password": "secret1"},
		},
		{
			name: "malformed email",
			body: map[string]string{"username": "alice", "email": "no-at-sign", "password": "secret1"},
		},
		{
			name: "short password",
			body: map[string]string{"username": "alice", "email": "alice@example.com", "password": "tiny"},
		},
		{
			name: "missing username",
			body: map[string]string{"email": "alice@example.com", "password": "secret1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, body := postJSON(t, server, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
		})
	}
}

func TestAuthProfile_RequiresToken(t *testing.T) {
	server := newAuthTestServer(t)

	response, _ := getJSON(t, server, "/api/v1/auth/profile", "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	response, _ = getJSON(t, server, "/api/v1/auth/profile", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestAuthChangePassword(t *testing.T) {
	server := newAuthTestServer(t)

	_, _ = postJSON(t, server, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})

	_, body := postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	token := body["data"].(map[string]any)["token"].(string)

	// Wrong current password: 400 with the exact message, hash untouched.
	response, body := postJSON(t, server, "/api/v1/auth/change-password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "changed1",
	})
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "Current password is incorrect", body["error"])

	// Correct current password: rotation succeeds.
	response, body = postJSON(t, server, "/api/v1/auth/change-password", token, map[string]string{
		"current_password": "secret1",
		"new_password":     "changed1",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "Password changed successfully", body["data"].(map[string]any)["message"])

	// Old credentials are dead, the new ones work, and the token issued
	// before the change still authenticates.
	response, _ = postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	response, _ = postJSON(t, server, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "changed1",
	})
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, _ = getJSON(t, server, "/api/v1/auth/profile", token)
	assert.Equal(t, http.StatusOK, response.StatusCode)
}
