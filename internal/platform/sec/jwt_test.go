// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/sec"
)

func newTokenService(t *testing.T, ttl time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("unit-test-secret", "uservault.test", ttl)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueAndVerify verifies that an issued token resolves back
to its subject.
*/
func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTokenService(t, time.Hour)

	token, err := service.Issue("user-123", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "uservault.test", claims.Issuer)
}

/*
TestTokenService_Expired verifies that a token past its exp instant fails
verification.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t, -time.Minute)

	token, err := service.Issue("user-123", "a@x.com")
	require.NoError(t, err)

	_, err = service.Verify(token)
	assert.Error(t, err)
}

/*
TestTokenService_Tampered verifies signature integrity checks.
*/
func TestTokenService_Tampered(t *testing.T) {
	service := newTokenService(t, time.Hour)

	token, err := service.Issue("user-123", "a@x.com")
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = service.Verify(tampered)
	assert.Error(t, err)
}

/*
TestTokenService_WrongSecret verifies that tokens signed under a different
secret are rejected.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	issuing, err := sec.NewTokenService("secret-one", "uservault.test", time.Hour)
	require.NoError(t, err)

	verifying, err := sec.NewTokenService("secret-two", "uservault.test", time.Hour)
	require.NoError(t, err)

	token, err := issuing.Issue("user-123", "a@x.com")
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	assert.Error(t, err)
}

/*
TestNewTokenService_Validation rejects unusable configurations.
*/
func TestNewTokenService_Validation(t *testing.T) {
	_, err := sec.NewTokenService("", "uservault.test", time.Hour)
	assert.Error(t, err)

	_, err = sec.NewTokenService("secret", "uservault.test", 0)
	assert.Error(t, err)
}
