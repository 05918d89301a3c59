// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password verifies against
its own plaintext and nothing else.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	// Never stored or compared as plaintext.
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, sec.CheckPasswordHash("secret1", hash))
	assert.False(t, sec.CheckPasswordHash("secret2", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestHashPassword_Salted verifies that two hashes of the same password differ
(per-call random salt).
*/
func TestHashPassword_Salted(t *testing.T) {
	first, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	second, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, sec.CheckPasswordHash("secret1", first))
	assert.True(t, sec.CheckPasswordHash("secret1", second))
}

/*
TestCheckPasswordHash_MalformedHash verifies that a corrupt stored hash yields
false instead of panicking or erroring.
*/
func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-bcrypt-hash"},
		{"truncated", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sec.CheckPasswordHash("secret1", tt.hash))
		})
	}
}
