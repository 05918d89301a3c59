// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package apperr defines the canonical error taxonomy of the UserVault API.

It bridges low-level storage and crypto failures with the HTTP responses the
mobile client consumes.

Architecture:

  - AppError: machine-readable Code + client-safe Message + HTTP status.
  - Mapping: every service-layer error is one of a small, closed set of
    categories (Conflict, Unauthorized, Validation, NotFound, ...).
  - Hygiene: the underlying Cause never crosses the API boundary.

Every error returned by a service must be (or wrap) an [AppError] so the
gateway can translate it into a deterministic status code.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the error type carried from the service layer to the gateway.
//
// # Security
//
// Cause is kept for server-side logging only. Clients see Code, Message and
// (for validation failures) the per-field Details, never SQL text or stack
// internals.
type AppError struct {
	// Code is a machine-readable identifier (e.g. "CONFLICT", "UNAUTHORIZED").
	Code string `json:"code"`
	// Message is a human-readable description safe to show to the end user.
	Message string `json:"error"`
	// HTTPStatus is the response status the gateway writes for this error.
	HTTPStatus int `json:"-"`
	// Cause is the wrapped lower-level error, for logs only.
	Cause error `json:"-"`
	// Details carries per-field failures for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed.
	Field string `json:"field"`
	// Message describes the failure.
	Message string `json:"message"`
}

// Error implements the error interface with the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap lets [errors.Is] and [errors.As] walk the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for the named resource.
//
// Example:
//
//	apperr.NotFound("User") // "User not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate-identity violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// BadRequest creates a 400 [AppError] without field details.
//
// It is used for request-level failures that are not tied to a single field,
// such as a wrong current password during a password change.
func BadRequest(msg string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected failure.
// The cause is logged server-side and never serialized to clients.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for unreachable upstreams.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or anything it wraps) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain, or nil if absent.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
