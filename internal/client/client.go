// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package client is the device-side session manager for the UserVault API.

It mirrors what the mobile application does: pre-validates credentials
before submission, speaks the API's JSON envelopes, keeps at most one
active session in a local [SessionStore], and attaches the bearer token to
every authenticated call.

# Offline Behavior

Logout is a purely local operation: the access token is stateless on the
server, so signing out clears the store and never touches the network.
Refresh re-reads the cached profile without any token validation, which
keeps the profile screen usable offline.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/minhngo/uservault/internal/platform/validate"
	"github.com/minhngo/uservault/internal/users/auth"
)

// # Definitions & Constructors

// requestTimeout bounds every API round trip.
const requestTimeout = 15 * time.Second

// APIError is a failure reported by the server. Message carries the
// server's error text verbatim so the UI can show it unchanged.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.Message }

// ErrNotAuthenticated is returned by authenticated calls when no session
// is stored.
var ErrNotAuthenticated = &APIError{
	Status:  http.StatusUnauthorized,
	Code:    "UNAUTHORIZED",
	Message: "Not logged in",
}

// Client talks to one UserVault API server on behalf of one device.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
}

// New constructs a [Client] against baseURL, persisting sessions in store.
func New(baseURL string, store SessionStore) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		store:      store,
	}
}

// # Envelope Shapes

type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type loginData struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// # Account Lifecycle

/*
Register creates a new account.

Description: Validates the credentials locally first (email shape, password
length), then submits. Registration does not sign the device in; call
[Client.Login] afterwards.

Parameters:
  - context: context.Context
  - username, email, password: string

Returns:
  - *auth.User: Created profile
  - err: *APIError with the server's message, or transport failures
*/
func (client *Client) Register(context context.Context, username, email, password string) (*auth.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	var user auth.User
	if err := client.call(context, http.MethodPost, "/api/v1/auth/register", "", body, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

/*
Login authenticates and persists the session.

Description: On success the token and the profile are written to the store,
replacing any previous session. On failure the store is left untouched and
the server's message is surfaced verbatim.

Parameters:
  - context: context.Context
  - email, password: string

Returns:
  - *auth.User: Authenticated profile
  - err: *APIError ("Email does not exist", "Wrong password", ...) or transport failures
*/
func (client *Client) Login(context context.Context, email, password string) (*auth.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var data loginData
	if err := client.call(context, http.MethodPost, "/api/v1/auth/login", "", body, &data); err != nil {
		return nil, err
	}

	profile, err := json.Marshal(data.User)
	if err != nil {
		return nil, fmt.Errorf("client_profile_encode_failed: %w", err)
	}

	if err := client.store.SaveSession(data.Token, profile); err != nil {
		return nil, err
	}

	return data.User, nil
}

/*
Logout clears the local session.

Description: Always succeeds, even with no active session and with no
network available. The stateless server token simply expires on its own.

Returns:
  - err: Local persistence failures only
*/
func (client *Client) Logout() error {
	return client.store.Clear()
}

/*
Profile fetches the caller's profile and refreshes the local cache.

Parameters:
  - context: context.Context

Returns:
  - *auth.User: Server-fresh profile
  - err: ErrNotAuthenticated, *APIError, or transport failures
*/
func (client *Client) Profile(context context.Context) (*auth.User, error) {
	token, _, err := client.store.Session()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var user auth.User
	if err := client.call(context, http.MethodGet, "/api/v1/auth/profile", token, nil, &user); err != nil {
		return nil, err
	}

	profile, err := json.Marshal(&user)
	if err != nil {
		return nil, fmt.Errorf("client_profile_encode_failed: %w", err)
	}
	if err := client.store.SaveSession(token, profile); err != nil {
		return nil, err
	}

	return &user, nil
}

/*
Refresh returns the cached profile without any network traffic.

Description: No token validation happens here; the cached snapshot may be
stale or the token expired. Use [Client.Profile] for a server-fresh read.

Returns:
  - *auth.User: Cached profile
  - err: ErrNotAuthenticated when signed out, or decode failures
*/
func (client *Client) Refresh() (*auth.User, error) {
	token, profile, err := client.store.Session()
	if err != nil {
		return nil, err
	}
	if token == "" || len(profile) == 0 {
		return nil, ErrNotAuthenticated
	}

	user := &auth.User{}
	if err := json.Unmarshal(profile, user); err != nil {
		return nil, fmt.Errorf("client_profile_decode_failed: %w", err)
	}

	return user, nil
}

/*
ChangePassword rotates the account password.

Parameters:
  - context: context.Context
  - currentPassword, newPassword: string

Returns:
  - err: ErrNotAuthenticated, *APIError ("Current password is incorrect", ...), or transport failures
*/
func (client *Client) ChangePassword(context context.Context, currentPassword, newPassword string) error {
	if len(newPassword) < validate.MinPasswordLength {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("Password must be at least %d characters", validate.MinPasswordLength),
		}
	}

	token, _, err := client.store.Session()
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}

	return client.call(context, http.MethodPost, "/api/v1/auth/change-password", token, body, nil)
}

// # Transport

// validateCredentials runs the pre-submit checks the mobile UI performs.
func validateCredentials(email, password string) error {
	validator := &validate.Validator{}
	validator.Required(auth.FieldEmail, email).
		Email(auth.FieldEmail, email).
		Required(auth.FieldPassword, password).
		Password(auth.FieldPassword, password)

	if validator.HasErrors() {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Message: "Invalid email or password format",
		}
	}

	return nil
}

// call performs one JSON round trip, unwrapping the response envelope into
// target (which may be nil when the payload is irrelevant).
func (client *Client) call(context context.Context, method, path, bearer string, body, target any) error {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client_request_encode_failed: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(context, method, client.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("client_request_build_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("client_request_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode >= 400 {
		failure := errorEnvelope{}
		if err := json.NewDecoder(response.Body).Decode(&failure); err != nil || failure.Error == "" {
			return &APIError{
				Status:  response.StatusCode,
				Code:    "UNKNOWN",
				Message: fmt.Sprintf("Request failed with status %d", response.StatusCode),
			}
		}
		return &APIError{
			Status:  response.StatusCode,
			Code:    failure.Code,
			Message: failure.Error,
		}
	}

	if target == nil {
		return nil
	}

	envelope := successEnvelope{}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("client_response_decode_failed: %w", err)
	}

	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("client_response_unwrap_failed: %w", err)
	}

	return nil
}
