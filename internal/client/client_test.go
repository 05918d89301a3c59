// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/middleware"
	"github.com/minhngo/uservault/internal/platform/sec"
	"github.com/minhngo/uservault/internal/users/auth"
)

// newClientFixture runs a real API server (SQLite-backed) and a client with
// its own on-disk session store, the way a device session looks end to end.
func newClientFixture(t *testing.T) *Client {
	t.Helper()

	repository, err := auth.NewSQLiteUserRepository(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })

	tokenService, err := sec.NewTokenService("client-test-secret", "uservault.app", time.Hour)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokenService))
	router.Mount("/api/v1/auth", auth.NewHandler(auth.NewService(repository, tokenService)).Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	store, err := NewSQLiteSessionStore(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(server.URL, store)
}

func TestClientSessionLifecycle(t *testing.T) {
	client := newClientFixture(t)

	// Nothing cached before login.
	_, err := client.Refresh()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	created, err := client.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)

	// Registration alone does not sign the device in.
	_, err = client.Refresh()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	loggedIn, err := client.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loggedIn.ID)

	// Refresh serves the cached profile without the network.
	cached, err := client.Refresh()
	require.NoError(t, err)
	assert.Equal(t, created.ID, cached.ID)
	assert.Equal(t, "alice@example.com", cached.Email)

	// Profile does a fresh authenticated fetch.
	fresh, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, created.ID, fresh.ID)

	// Logout is local and idempotent.
	require.NoError(t, client.Logout())
	require.NoError(t, client.Logout())

	_, err = client.Refresh()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = client.Profile(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClientLogin_ServerMessagesVerbatim(t *testing.T) {
	client := newClientFixture(t)

	_, err := client.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name        string
		email       string
		password    string
		wantMessage string
	}{
		{
			name:        "unknown email",
			email:       "ghost@example.com",
			password:    "secret1",
			wantMessage: "Email does not exist",
		},
		{
			name:        "wrong password",
			email:       "alice@example.com",
			password:    "not-the-one",
			wantMessage: "Wrong password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Login(context.Background(), tt.email, tt.password)

			var apiError *APIError
			require.ErrorAs(t, err, &apiError)
			assert.Equal(t, tt.wantMessage, apiError.Message)

			// A failed login must not disturb the signed-out state.
			_, err = client.Refresh()
			assert.ErrorIs(t, err, ErrNotAuthenticated)
		})
	}
}

func TestClientPreSubmitValidation(t *testing.T) {
	client := newClientFixture(t)

	// Neither call should reach the wire; shape problems fail locally.
	_, err := client.Login(context.Background(), "not-an-email", "secret1")
	var apiError *APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, "VALIDATION_ERROR", apiError.Code)

	_, err = client.Register(context.Background(), "alice", "alice@example.com", "tiny")
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, "VALIDATION_ERROR", apiError.Code)
}

func TestClientChangePassword(t *testing.T) {
	client := newClientFixture(t)

	_, err := client.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	// Wrong current password surfaces the server's message.
	err = client.ChangePassword(context.Background(), "wrong", "changed1")
	var apiError *APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, "Current password is incorrect", apiError.Message)

	require.NoError(t, client.ChangePassword(context.Background(), "secret1", "changed1"))

	// The session survives the rotation; only the credentials changed.
	_, err = client.Profile(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.Logout())
	_, err = client.Login(context.Background(), "alice@example.com", "changed1")
	require.NoError(t, err)
}

func TestSQLiteSessionStore_Replace(t *testing.T) {
	store, err := NewSQLiteSessionStore(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveSession("token-one", []byte(`{"id":"1"}`)))
	require.NoError(t, store.SaveSession("token-two", []byte(`{"id":"2"}`)))

	token, profile, err := store.Session()
	require.NoError(t, err)
	assert.Equal(t, "token-two", token, "a new session replaces the previous one")
	assert.JSONEq(t, `{"id":"2"}`, string(profile))

	require.NoError(t, store.Clear())
	token, profile, err = store.Session()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, profile)
}
