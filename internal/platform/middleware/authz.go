// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/constants"
	"github.com/minhngo/uservault/internal/platform/ctxutil"
	"github.com/minhngo/uservault/internal/platform/respond"
	"github.com/minhngo/uservault/internal/platform/sec"
)

// TokenVerifier is the interface the authentication middleware needs.
//
// # Why an interface?
//
// It decouples the middleware from [sec.TokenService], so unit tests can
// inject a fake verifier.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization
// header.
//
// # Flow
//  1. No Authorization header: the request proceeds as anonymous.
//  2. Malformed header or failed verification: 401, request aborted.
//  3. Valid token: claims are injected into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
