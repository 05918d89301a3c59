// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package auth

import (
	"context"

	"github.com/minhngo/uservault/pkg/pagination"
)

// # User Data Access

// DomainTally is the per-domain aggregation produced by [UserRepository.EmailDomains].
type DomainTally struct {
	Domain string
	Count  int
}

// UserRepository defines the data access contract for user accounts.
//
// Two adapters satisfy it: a PostgreSQL store for server deployments and a
// SQLite store for embedded and test scenarios. Both enforce email
// uniqueness with a unique index over the lowercased address, so concurrent
// inserts of the same email resolve to exactly one Conflict.
type UserRepository interface {

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given (lowercased) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		Delete removes the account row permanently.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: NotFound if the row is absent, or persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		List returns a page of accounts ordered by creation time.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*User: Hydrated entities
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*User, error)

	/*
		Count returns the total number of accounts.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Total accounts
		  - error: Database retrieval failures
	*/
	Count(context context.Context) (int, error)

	/*
		EmailDomains tallies accounts per email domain, largest first.

		Parameters:
		  - context: context.Context

		Returns:
		  - []DomainTally: Per-domain counts, descending
		  - error: Database retrieval failures
	*/
	EmailDomains(context context.Context) ([]DomainTally, error)
}
