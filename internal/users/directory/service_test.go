// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/sec"
	"github.com/minhngo/uservault/internal/users/auth"
	"github.com/minhngo/uservault/pkg/pagination"
)

// recordingStatsCache is an in-memory [StatsCache] that records invalidations.
type recordingStatsCache struct {
	count         *int
	domains       *DomainStats
	invalidations int
}

func (c *recordingStatsCache) GetCount(context.Context) (int, error) {
	if c.count == nil {
		return 0, apperr.NotFound("miss")
	}
	return *c.count, nil
}

func (c *recordingStatsCache) SetCount(_ context.Context, total int) error {
	c.count = &total
	return nil
}

func (c *recordingStatsCache) GetDomainStats(context.Context) (*DomainStats, error) {
	if c.domains == nil {
		return nil, apperr.NotFound("miss")
	}
	return c.domains, nil
}

func (c *recordingStatsCache) SetDomainStats(_ context.Context, stats *DomainStats) error {
	c.domains = stats
	return nil
}

func (c *recordingStatsCache) Invalidate(context.Context) error {
	c.count = nil
	c.domains = nil
	c.invalidations++
	return nil
}

func newDirectoryService(t *testing.T) (*Service, *recordingStatsCache) {
	t.Helper()

	repository, err := auth.NewSQLiteUserRepository(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })

	cache := &recordingStatsCache{}
	return NewService(repository, cache), cache
}

func mustCreate(t *testing.T, service *Service, username, email string) *auth.User {
	t.Helper()

	user, err := service.Create(context.Background(), CreateInput{
		Username: username,
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func TestDirectoryCreate(t *testing.T) {
	service, cache := newDirectoryService(t)

	user := mustCreate(t, service, "alice", "Alice@Example.com")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, sec.CheckPasswordHash("secret1", user.PasswordHash))
	assert.Equal(t, 1, cache.invalidations, "mutations must drop cached aggregates")

	_, err := service.Create(context.Background(), CreateInput{
		Username: "clone", Email: "alice@example.com", Password: "secret2",
	})
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestDirectoryGetUpdateDelete(t *testing.T) {
	service, cache := newDirectoryService(t)
	alice := mustCreate(t, service, "alice", "alice@example.com")
	mustCreate(t, service, "bob", "bob@example.com")

	t.Run("get", func(t *testing.T) {
		found, err := service.Get(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)

		_, err = service.Get(context.Background(), "missing-id")
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		newName := "alice-two"
		updated, err := service.Update(context.Background(), alice.ID, UpdateInput{Username: &newName})
		require.NoError(t, err)
		assert.Equal(t, "alice-two", updated.Username)
		assert.Equal(t, "alice@example.com", updated.Email)
	})

	t.Run("email change to a taken address conflicts", func(t *testing.T) {
		taken := "bob@example.com"
		_, err := service.Update(context.Background(), alice.ID, UpdateInput{Email: &taken})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("password update is rehashed", func(t *testing.T) {
		newPassword := "rotated1"
		_, err := service.Update(context.Background(), alice.ID, UpdateInput{Password: &newPassword})
		require.NoError(t, err)

		stored, err := service.Get(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "rotated1", stored.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("rotated1", stored.PasswordHash))
	})

	t.Run("delete", func(t *testing.T) {
		before := cache.invalidations
		require.NoError(t, service.Delete(context.Background(), alice.ID))
		assert.Greater(t, cache.invalidations, before)

		err := service.Delete(context.Background(), alice.ID)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})
}

func TestDirectoryList(t *testing.T) {
	service, _ := newDirectoryService(t)
	for _, seed := range []struct{ username, email string }{
		{"a", "a@example.com"},
		{"b", "b@example.com"},
		{"c", "c@example.com"},
	} {
		mustCreate(t, service, seed.username, seed.email)
	}

	users, total, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)

	users, total, err = service.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 1)
}

func TestDirectoryEmailDomainStats(t *testing.T) {
	service, cache := newDirectoryService(t)

	t.Run("empty store yields zero totals", func(t *testing.T) {
		stats, err := service.EmailDomainStats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalUsers)
		assert.Zero(t, stats.TotalDomains)
		assert.Empty(t, stats.MostUsed)
		assert.Empty(t, stats.Domains)
	})

	cache.Invalidate(context.Background())

	for _, seed := range []struct{ username, email string }{
		{"a", "a@gmail.com"},
		{"b", "b@gmail.com"},
		{"c", "c@gmail.com"},
		{"d", "d@gmail.com"},
		{"e", "e@yahoo.com"},
		{"f", "f@yahoo.com"},
		{"g", "g@proton.me"},
	} {
		mustCreate(t, service, seed.username, seed.email)
	}

	stats, err := service.EmailDomainStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalDomains)
	assert.Equal(t, "gmail.com", stats.MostUsed)

	require.Len(t, stats.Domains, 3)
	assert.Equal(t, DomainStat{Domain: "gmail.com", Count: 4, Percentage: 57.14}, stats.Domains[0])
	assert.Equal(t, DomainStat{Domain: "yahoo.com", Count: 2, Percentage: 28.57}, stats.Domains[1])
	assert.Equal(t, DomainStat{Domain: "proton.me", Count: 1, Percentage: 14.29}, stats.Domains[2])
}

func TestDirectoryCount_CacheFlow(t *testing.T) {
	service, cache := newDirectoryService(t)
	mustCreate(t, service, "alice", "alice@example.com")

	// First read misses and fills the cache.
	total, err := service.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.NotNil(t, cache.count)

	// Poison the cache to prove the next read is served from it.
	poisoned := 99
	cache.count = &poisoned
	total, err = service.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, total)

	// A mutation invalidates, so the store truth returns.
	mustCreate(t, service, "bob", "bob@example.com")
	total, err = service.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
