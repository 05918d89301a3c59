// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/constants"
)

// # Stats Cache (Redis)

// StatsCacheTTL bounds how stale a cached aggregate can get should an
// invalidation be missed.
const StatsCacheTTL = 5 * time.Minute

// RedisStatsCache implements [StatsCache] on Redis.
type RedisStatsCache struct {
	client *redis.Client
}

// NewRedisStatsCache creates a Redis-backed [StatsCache].
func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

func countKey() string {
	return constants.RedisPrefixStats + "user_count"
}

func domainsKey() string {
	return constants.RedisPrefixStats + "email_domains"
}

/*
GetCount returns the cached account total.

Description: Returns apperr.NotFound on a cache miss; the caller falls back
to the store.

Parameters:
  - context: context.Context

Returns:
  - int: Cached total
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisStatsCache) GetCount(context context.Context) (int, error) {
	raw, err := cache.client.Get(context, countKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperr.NotFound("Cached user count")
		}
		return 0, fmt.Errorf("redis_stats_get_count_failed: %w", err)
	}

	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("redis_stats_count_corrupt: %w", err)
	}

	return total, nil
}

/*
SetCount stores the account total under [StatsCacheTTL].

Parameters:
  - context: context.Context
  - total: int

Returns:
  - error: Storage failures
*/
func (cache *RedisStatsCache) SetCount(context context.Context, total int) error {
	if err := cache.client.Set(context, countKey(), strconv.Itoa(total), StatsCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_stats_set_count_failed: %w", err)
	}
	return nil
}

/*
GetDomainStats returns the cached domain distribution.

Description: Returns apperr.NotFound on a cache miss or a corrupt payload.

Parameters:
  - context: context.Context

Returns:
  - *DomainStats: Cached distribution
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisStatsCache) GetDomainStats(context context.Context) (*DomainStats, error) {
	raw, err := cache.client.Get(context, domainsKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached domain stats")
		}
		return nil, fmt.Errorf("redis_stats_get_domains_failed: %w", err)
	}

	stats := &DomainStats{}
	if err := json.Unmarshal([]byte(raw), stats); err != nil {
		// A corrupt entry is treated as a miss and overwritten on refill.
		return nil, apperr.NotFound("Usable cached domain stats")
	}

	return stats, nil
}

/*
SetDomainStats stores the domain distribution under [StatsCacheTTL].

Parameters:
  - context: context.Context
  - stats: *DomainStats

Returns:
  - error: Serialization or storage failures
*/
func (cache *RedisStatsCache) SetDomainStats(context context.Context, stats *DomainStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis_stats_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, domainsKey(), payload, StatsCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_stats_set_domains_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops every cached aggregate after a mutation.

Parameters:
  - context: context.Context

Returns:
  - error: Deletion failures
*/
func (cache *RedisStatsCache) Invalidate(context context.Context) error {
	if err := cache.client.Del(context, countKey(), domainsKey()).Err(); err != nil {
		return fmt.Errorf("redis_stats_invalidate_failed: %w", err)
	}
	return nil
}
