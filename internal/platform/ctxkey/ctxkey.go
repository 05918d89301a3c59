// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// Per-request values (user identity, request ID, logger) are stored under a
// private key type so they can never collide with context values set by
// third-party packages.
package ctxkey

// key is an unexported type for context keys. Go's [context.Context] matches
// on both value and type, so string keys in other packages cannot collide.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the authenticated token claims.
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
