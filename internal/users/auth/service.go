// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/platform/sec"
	"github.com/minhngo/uservault/internal/platform/validate"
	"github.com/minhngo/uservault/pkg/uuidv7"
)

// # Contracts & Types

// TokenIssuer defines the contract for generating access tokens.
type TokenIssuer interface {
	// Issue creates a signed JWT string bound to the given user.
	Issue(userID, email string) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing,
// registration, or login logic must be reviewed carefully.
type Service struct {
	userRepository UserRepository
	tokenIssuer    TokenIssuer
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo UserRepository, issuer TokenIssuer) *Service {
	return &Service{
		userRepository: userRepo,
		tokenIssuer:    issuer,
	}
}

// NormalizeEmail lowercases and trims an email address. Email identity is
// case-insensitive throughout the system; every lookup and every write goes
// through this normalization.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Image    string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new member, normalizing the email and hashing the
password before the row is written.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if the email is taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	email := NormalizeEmail(input.Email)

	if len(input.Password) < validate.MinPasswordLength {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPassword,
			Message: fmt.Sprintf("Minimum %d characters", validate.MinPasswordLength),
		})
	}

	// Early uniqueness check for a friendly error. The unique index in the
	// store remains the authority: under concurrent registration the losing
	// insert still surfaces the same Conflict.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already in use")
	}

	// Prevent storing plain-text passwords. Default cost balances security
	// and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID to prevent index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		Image:        input.Image,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully authenticated login.
type LoginSession struct {
	AccessToken string
	User        *User
}

/*
Login validates user credentials and issues an access token.

Description: Verifies identity with a constant-time bcrypt comparison and
returns a signed stateless token alongside the profile.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready token and user
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(input.Email))

	// The lookup failing means the address has no account.
	if err != nil {
		return nil, apperr.Unauthorized("Email does not exist")
	}

	// Constant-time comparison in bcrypt to prevent timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Wrong password")
	}

	accessToken, err := service.tokenIssuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken: accessToken,
		User:        user,
	}, nil
}

// # Profile & Credentials

/*
Profile returns the account behind an authenticated token subject.

Parameters:
  - context: context.Context
  - subjectID: string

Returns:
  - *User: Hydrated entity
  - err: Unauthorized if the subject no longer exists
*/
func (service *Service) Profile(context context.Context, subjectID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, subjectID)
	if err != nil {
		// The token outlived its account.
		return nil, apperr.Unauthorized("User not found")
	}

	return user, nil
}

/*
ChangePassword rotates an authenticated user's credentials.

Description: Verifies the current password before replacing the stored hash.
Previously issued tokens stay valid until their own expiry; rotation does not
revoke them.

Parameters:
  - context: context.Context
  - subjectID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized, BadRequest, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, subjectID, currentPassword, newPassword string) error {
	if len(newPassword) < validate.MinPasswordLength {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldNewPassword,
			Message: fmt.Sprintf("Minimum %d characters", validate.MinPasswordLength),
		})
	}

	user, err := service.userRepository.FindByID(context, subjectID)
	if err != nil {
		return apperr.Unauthorized("User not found")
	}

	// The stored hash must stay untouched on a failed verification.
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.BadRequest("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}
