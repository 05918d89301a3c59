// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package client

import (
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite" driver for database/sql.
	_ "modernc.org/sqlite"
)

// # Session Store (SQLite)

// SQLiteSessionStore implements [SessionStore] on an embedded SQLite file,
// typically living in the device's application data directory.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens (or creates) the session database at path.
func NewSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("client_session_store_open_failed: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Single-row table: the CHECK pins the row id so an UPSERT always
	// replaces the one session.
	const schema = `
		CREATE TABLE IF NOT EXISTS session (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			token   TEXT NOT NULL,
			profile BLOB NOT NULL
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("client_session_store_migrate_failed: %w", err)
	}

	return &SQLiteSessionStore{db: db}, nil
}

// Close releases the underlying database handle.
func (store *SQLiteSessionStore) Close() error {
	return store.db.Close()
}

// SaveSession persists the token and profile, replacing the previous session.
func (store *SQLiteSessionStore) SaveSession(token string, profile []byte) error {
	const query = `
		INSERT INTO session (id, token, profile) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, profile = excluded.profile`

	if _, err := store.db.Exec(query, token, profile); err != nil {
		return fmt.Errorf("client_session_store_save_failed: %w", err)
	}

	return nil
}

// Session returns the persisted token and profile, or empty values when
// signed out.
func (store *SQLiteSessionStore) Session() (string, []byte, error) {
	var token string
	var profile []byte

	err := store.db.QueryRow("SELECT token, profile FROM session WHERE id = 1").Scan(&token, &profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("client_session_store_read_failed: %w", err)
	}

	return token, profile, nil
}

// Clear removes the persisted session.
func (store *SQLiteSessionStore) Clear() error {
	if _, err := store.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("client_session_store_clear_failed: %w", err)
	}
	return nil
}
