// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

// Package dberr bridges low-level database errors and the application error
// taxonomy.
//
// # Why this matters
//
// Email uniqueness is enforced by a unique index in the store itself, not by
// an application-level check-then-insert. Under two concurrent registrations
// for the same email, one insert wins and the other surfaces a
// unique-violation here, which this package translates into the CONFLICT
// the caller expects.
package dberr

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/minhngo/uservault/internal/platform/apperr"
)

// Wrap inspects a database error and converts it into an [apperr.AppError].
//
// # Parameters
//   - err: the raw driver error.
//   - resource: resource name for NOT_FOUND messages (e.g. "User").
//   - conflictMsg: client-safe message for unique-violation conflicts.
func Wrap(err error, resource, conflictMsg string) error {
	if err == nil {
		return nil
	}

	// Row absence, from either driver.
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	if IsUniqueViolation(err) {
		return apperr.Conflict(conflictMsg)
	}

	// Anything else is an internal failure; details stay server-side.
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation from
// PostgreSQL (SQLSTATE 23505) or SQLite (SQLITE_CONSTRAINT_UNIQUE).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
