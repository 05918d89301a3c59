// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package auth implements the user identity layer.

It defines the core User entity and the logic for registration, login,
profile retrieval, and password changes.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the UserVault platform.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the
// authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldImage           = "image"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldToken           = "token"
	FieldUser            = "user"
	FieldMessage         = "message"
)
