// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver for database/sql.
	_ "modernc.org/sqlite"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/dberr"
	"github.com/minhngo/uservault/pkg/pagination"
)

// # User Repository (SQLite)

// SQLiteUserRepository implements the [UserRepository] interface on an
// embedded SQLite database. It backs single-node deployments and tests,
// with the same unique-email guarantee the PostgreSQL adapter gives.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository opens (or creates) the SQLite database at path and
// bootstraps the schema.
func NewSQLiteUserRepository(path string) (*SQLiteUserRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite_user_repo_open_failed: %w", err)
	}

	// The driver serializes access per connection; a single connection
	// avoids SQLITE_BUSY between concurrent writers.
	db.SetMaxOpenConns(1)

	repository := &SQLiteUserRepository{db: db}
	if err := repository.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return repository, nil
}

// Close releases the underlying database handle.
func (repository *SQLiteUserRepository) Close() error {
	return repository.db.Close()
}

// migrate creates the account table and the case-insensitive unique email
// index when absent.
func (repository *SQLiteUserRepository) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS account (
			id           TEXT PRIMARY KEY,
			username     TEXT NOT NULL,
			email        TEXT NOT NULL,
			passwordhash TEXT NOT NULL,
			image        TEXT NOT NULL DEFAULT '',
			createdat    TEXT NOT NULL,
			updatedat    TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS account_email_unique
			ON account (lower(email));`

	if _, err := repository.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite_user_repo_migrate_failed: %w", err)
	}

	return nil
}

// Timestamps are stored as RFC 3339 text for portability across drivers.
const sqliteTimeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(raw string) time.Time {
	t, _ := time.Parse(sqliteTimeLayout, raw)
	return t
}

// scanUser hydrates a single User row.
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	var createdAt, updatedAt string

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)
	return user, nil
}

// Create persists a new account row. A duplicate email surfaces as Conflict.
func (repository *SQLiteUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO account (id, username, email, passwordhash, image, createdat, updatedat)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.db.ExecContext(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Image,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)

	if err != nil {
		return dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return nil
}

// FindByEmail retrieves an account by lowercased email.
func (repository *SQLiteUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM account
		WHERE lower(email) = lower(?)`

	user, err := scanUser(repository.db.QueryRowContext(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return user, nil
}

// FindByID retrieves an account by primary key.
func (repository *SQLiteUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM account
		WHERE id = ?`

	user, err := scanUser(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User", conflictEmailInUse)
	}

	return user, nil
}

// Update persists mutable profile fields, refreshing updatedat.
func (repository *SQLiteUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE account
		SET username = ?, email = ?, image = ?, updatedat = ?
		WHERE id = ?`

	user.UpdatedAt = time.Now()
	result, err := repository.db.ExecContext(context, query,
		user.Username,
		user.Email,
		user.Image,
		formatTime(user.UpdatedAt),
		user.ID,
	)

	if err != nil {
		return dberr.Wrap(err, "User", conflictEmailInUse)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword replaces only the password hash.
func (repository *SQLiteUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = "UPDATE account SET passwordhash = ?, updatedat = ? WHERE id = ?"

	result, err := repository.db.ExecContext(context, query, newHash, formatTime(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("sqlite_user_repo_update_password_failed: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// Delete permanently removes an account row.
func (repository *SQLiteUserRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM account WHERE id = ?"

	result, err := repository.db.ExecContext(context, query, id)
	if err != nil {
		return fmt.Errorf("sqlite_user_repo_delete_failed: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// List returns a page of accounts ordered by creation (time-sortable IDs).
func (repository *SQLiteUserRepository) List(context context.Context, params pagination.Params) ([]*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, image, createdat, updatedat
		FROM account
		ORDER BY id
		LIMIT ? OFFSET ?`

	rows, err := repository.db.QueryContext(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("sqlite_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite_user_repo_list_rows_failed: %w", err)
	}

	return users, nil
}

// Count returns the total number of accounts.
func (repository *SQLiteUserRepository) Count(context context.Context) (int, error) {
	var total int
	if err := repository.db.QueryRowContext(context, "SELECT COUNT(*) FROM account").Scan(&total); err != nil {
		return 0, fmt.Errorf("sqlite_user_repo_count_failed: %w", err)
	}

	return total, nil
}

// EmailDomains tallies accounts per email domain, largest group first.
func (repository *SQLiteUserRepository) EmailDomains(context context.Context) ([]DomainTally, error) {
	const query = `
		SELECT substr(email, instr(email, '@') + 1) AS domain, COUNT(*) AS total
		FROM account
		GROUP BY domain
		ORDER BY total DESC, domain ASC`

	rows, err := repository.db.QueryContext(context, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite_user_repo_email_domains_failed: %w", err)
	}
	defer rows.Close()

	tallies := []DomainTally{}
	for rows.Next() {
		var tally DomainTally
		if err := rows.Scan(&tally.Domain, &tally.Count); err != nil {
			return nil, fmt.Errorf("sqlite_user_repo_email_domains_scan_failed: %w", err)
		}
		tallies = append(tallies, tally)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite_user_repo_email_domains_rows_failed: %w", err)
	}

	return tallies, nil
}
