// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, token
// signing) from the domain logic. It is injected into the application layer
// behind small interfaces so services never touch key material directly.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the payload embedded inside an access token.
//
// # Why custom claims?
//
// Carrying the user ID and email inside the token lets the authentication
// middleware reconstruct the caller's identity without a database lookup.
// Verification needs only the signing secret and the clock.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Claim names are abbreviated to keep the token payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
}

// TokenService issues and verifies HMAC-signed (HS256) access tokens.
//
// # Statelessness
//
// Tokens carry their own expiry and are never stored server-side. There is
// no revocation list: a token stays valid until its exp instant, logout is a
// client-local operation.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: token signing secret must not be empty")
	}
	if timeToLive <= 0 {
		return nil, fmt.Errorf("sec: token time-to-live must be positive")
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
	}, nil
}

// Issue creates a signed access token bound to the given user.
func (service *TokenService) Issue(userID, email string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.timeToLive)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity window of a token string.
//
// Expired or tampered tokens are rejected. Verification is CPU-only and does
// not consult any storage.
func (service *TokenService) Verify(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// TimeToLive reports the configured token lifetime.
func (service *TokenService) TimeToLive() time.Duration {
	return service.timeToLive
}
