// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package directory implements administration and analytics over the user base.

Where package auth answers "who is calling", directory answers "who is
registered": full CRUD on accounts plus the aggregate statistics (user count,
email domain distribution) that feed dashboards and the AI assistant.

# Architecture

The service reuses the auth package's [auth.UserRepository] contract, so both
storage adapters serve this package unchanged. Aggregates are fronted by a
TTL'd cache that every mutation invalidates.
*/
package directory

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/sec"
	"github.com/minhngo/uservault/internal/platform/validate"
	"github.com/minhngo/uservault/internal/users/auth"
	"github.com/minhngo/uservault/pkg/pagination"
	"github.com/minhngo/uservault/pkg/uuidv7"
)

// # Contracts & Types

// StatsCache is the volatile cache for directory aggregates.
//
// Implementations must treat every error as a miss signal: the service falls
// back to the store whenever the cache misbehaves.
type StatsCache interface {
	// GetCount returns the cached total, or an error on miss.
	GetCount(context context.Context) (int, error)
	// SetCount stores the total under the cache TTL.
	SetCount(context context.Context, total int) error
	// GetDomainStats returns the cached domain distribution, or an error on miss.
	GetDomainStats(context context.Context) (*DomainStats, error)
	// SetDomainStats stores the domain distribution under the cache TTL.
	SetDomainStats(context context.Context, stats *DomainStats) error
	// Invalidate drops every cached aggregate.
	Invalidate(context context.Context) error
}

// DomainStat is one email domain's share of the user base.
type DomainStat struct {
	Domain     string  `json:"domain"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DomainStats is the full email domain distribution.
type DomainStats struct {
	TotalUsers   int          `json:"total_users"`
	TotalDomains int          `json:"total_domains"`
	MostUsed     string       `json:"most_used,omitempty"`
	Domains      []DomainStat `json:"domains"`
}

// Service implements the user directory use cases.
type Service struct {
	userRepository auth.UserRepository
	statsCache     StatsCache
}

// NewService constructs a new [Service].
//
// statsCache may be nil; the service then always reads aggregates from the
// store directly.
func NewService(userRepo auth.UserRepository, statsCache StatsCache) *Service {
	return &Service{
		userRepository: userRepo,
		statsCache:     statsCache,
	}
}

// invalidateStats drops cached aggregates after a mutation. Cache errors are
// swallowed; the TTL bounds staleness even when Invalidate fails.
func (service *Service) invalidateStats(context context.Context) {
	if service.statsCache != nil {
		_ = service.statsCache.Invalidate(context)
	}
}

// # CRUD

// CreateInput holds the data for an administrative account creation.
type CreateInput struct {
	Username string
	Email    string
	Password string
	Image    string
}

/*
Create provisions a user account through the directory.

Description: Same rules as self-registration: normalized email, hashed
password, Conflict on a duplicate address.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: Created entity
  - err: Conflict or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*auth.User, error) {
	if len(input.Password) < validate.MinPasswordLength {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   auth.FieldPassword,
			Message: fmt.Sprintf("Minimum %d characters", validate.MinPasswordLength),
		})
	}

	email := auth.NormalizeEmail(input.Email)

	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already in use")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("directory_service_hash_failed: %w", err)
	}

	user := &auth.User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		Image:        input.Image,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.invalidateStats(context)
	return user, nil
}

/*
List returns one page of accounts with the total for pagination metadata.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Page of entities
  - int: Total accounts
  - err: Retrieval failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users, err := service.userRepository.List(context, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := service.Count(context)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

/*
Get returns a single account by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.User: Hydrated entity
  - err: NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, id string) (*auth.User, error) {
	return service.userRepository.FindByID(context, id)
}

// UpdateInput holds the partial field set for an account update. Nil fields
// are left untouched.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	Image    *string
}

/*
Update applies a partial modification to an account.

Description: Loads the current row, overlays the provided fields, and writes
back. A new email is re-checked for uniqueness; a new password is re-hashed.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *auth.User: Updated entity
  - err: NotFound, Conflict, or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*auth.User, error) {
	// Validate everything before the first write so a rejected field leaves
	// the row untouched.
	if input.Password != nil && len(*input.Password) < validate.MinPasswordLength {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   auth.FieldPassword,
			Message: fmt.Sprintf("Minimum %d characters", validate.MinPasswordLength),
		})
	}

	user, err := service.userRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Image != nil {
		user.Image = *input.Image
	}
	if input.Email != nil {
		newEmail := auth.NormalizeEmail(*input.Email)
		if newEmail != user.Email {
			// The unique index backs this check under concurrency.
			if _, err := service.userRepository.FindByEmail(context, newEmail); err == nil {
				return nil, apperr.Conflict("Email is already in use")
			}
			user.Email = newEmail
		}
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hashedPassword, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("directory_service_rehash_failed: %w", err)
		}
		if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
			return nil, err
		}
	}

	service.invalidateStats(context)
	return user, nil
}

/*
Delete removes an account permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - err: NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.userRepository.Delete(context, id); err != nil {
		return err
	}

	service.invalidateStats(context)
	return nil
}

// # Aggregates

/*
Count returns the total number of registered accounts, cache-first.

Parameters:
  - context: context.Context

Returns:
  - int: Total accounts
  - err: Retrieval failures
*/
func (service *Service) Count(context context.Context) (int, error) {
	if service.statsCache != nil {
		if total, err := service.statsCache.GetCount(context); err == nil {
			return total, nil
		}
	}

	total, err := service.userRepository.Count(context)
	if err != nil {
		return 0, err
	}

	if service.statsCache != nil {
		_ = service.statsCache.SetCount(context, total)
	}

	return total, nil
}

/*
EmailDomainStats computes the domain distribution of the user base.

Description: Each domain carries its account count and its share of the
total as a percentage rounded to two decimal places, largest share first.
An empty store yields zero totals and no domains.

Parameters:
  - context: context.Context

Returns:
  - *DomainStats: Full distribution
  - err: Retrieval failures
*/
func (service *Service) EmailDomainStats(context context.Context) (*DomainStats, error) {
	if service.statsCache != nil {
		if stats, err := service.statsCache.GetDomainStats(context); err == nil {
			return stats, nil
		}
	}

	tallies, err := service.userRepository.EmailDomains(context)
	if err != nil {
		return nil, err
	}

	stats := tallyStats(tallies)

	if service.statsCache != nil {
		_ = service.statsCache.SetDomainStats(context, stats)
	}

	return stats, nil
}

// tallyStats turns raw per-domain counts into the percentage distribution.
// The repository already returns tallies largest-first.
func tallyStats(tallies []auth.DomainTally) *DomainStats {
	total := 0
	for _, tally := range tallies {
		total += tally.Count
	}

	stats := &DomainStats{
		TotalUsers:   total,
		TotalDomains: len(tallies),
		Domains:      make([]DomainStat, 0, len(tallies)),
	}

	for _, tally := range tallies {
		stats.Domains = append(stats.Domains, DomainStat{
			Domain:     strings.ToLower(tally.Domain),
			Count:      tally.Count,
			Percentage: roundPercentage(tally.Count, total),
		})
	}

	if len(stats.Domains) > 0 {
		stats.MostUsed = stats.Domains[0].Domain
	}

	return stats
}

// roundPercentage computes count/total as a percentage with two decimals.
func roundPercentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
