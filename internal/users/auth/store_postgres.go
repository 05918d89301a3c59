// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/dberr"
	"github.com/minhngo/uservault/pkg/pagination"
)

// # User Repository (PostgreSQL)

// conflictEmailInUse is the client-safe message for a duplicate email.
// The unique index on lower(email) is the authority: of two concurrent
// inserts for the same address exactly one receives this Conflict.
const conflictEmailInUse = "Email is already in use"

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates the PostgreSQL implementation of [UserRepository].
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Persists account data, initializing timestamps if absent.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, image, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Image,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Lookup on the lowercased address; callers normalize first.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM users.account
		WHERE lower(email) = lower($1)`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return user, nil
}

/*
Update persists changes to a user's mutable profile fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on an email collision, or update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET username = $2, email = $3, image = $4, updatedat = $5
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.Image,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "User", conflictEmailInUse)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Delete permanently removes a user account by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound when the row is absent, or execution errors
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM users.account WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
List returns a page of accounts ordered by creation.

Description: UUIDv7 primary keys are time-sortable, so ordering by id is
ordering by creation instant.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Hydrated entities
  - error: Retrieval failures
*/
func (repository *PostgresUserRepository) List(context context.Context, params pagination.Params) ([]*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM users.account
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Image,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return users, nil
}

/*
Count returns the total number of accounts.

Parameters:
  - context: context.Context

Returns:
  - int: Total accounts
  - error: Retrieval failures
*/
func (repository *PostgresUserRepository) Count(context context.Context) (int, error) {
	const query = "SELECT COUNT(*) FROM users.account"

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	return total, nil
}

/*
EmailDomains tallies accounts per email domain.

Description: Aggregates on the part after '@', largest group first. Ties
break alphabetically so the result is deterministic.

Parameters:
  - context: context.Context

Returns:
  - []DomainTally: Per-domain counts, descending
  - error: Retrieval failures
*/
func (repository *PostgresUserRepository) EmailDomains(context context.Context) ([]DomainTally, error) {
	const query = `
		SELECT split_part(email, '@', 2) AS domain, COUNT(*) AS total
		FROM users.account
		GROUP BY domain
		ORDER BY total DESC, domain ASC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_email_domains_failed: %w", err)
	}
	defer rows.Close()

	tallies := []DomainTally{}
	for rows.Next() {
		var tally DomainTally
		if err := rows.Scan(&tally.Domain, &tally.Count); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_email_domains_scan_failed: %w", err)
		}
		tallies = append(tallies, tally)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_email_domains_rows_failed: %w", err)
	}

	return tallies, nil
}
