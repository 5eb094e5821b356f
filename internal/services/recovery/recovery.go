// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery manages single-use password reset tokens.
//
// A token is 32 random bytes, base64url encoded. Only its SHA-256 hash is
// stored, next to an expiry one hour after issue. Issuing a new token
// overwrites the previous one, so each user has at most one live token.
package recovery

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenLength is the number of random bytes in a token.
	TokenLength = 32
	// TokenExpiry is how long a token stays valid after issue.
	TokenExpiry = time.Hour
)

var (
	ErrTokenNotFound = errors.New("recovery token not found")
	ErrTokenExpired  = errors.New("recovery token expired")
)

// PasswordPolicy checks a new password and its confirmation.
type PasswordPolicy interface {
	Validate(password, confirm string) error
}

// Service issues, validates and consumes recovery tokens.
type Service struct {
	repo      *repository.Repository
	passwords PasswordPolicy
	now       func() time.Time
}

// NewService creates a new recovery service. now defaults to time.Now.
func NewService(repo *repository.Repository, passwords PasswordPolicy, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, passwords: passwords, now: now}
}

// GenerateToken returns a new random URL-safe token.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken computes the SHA256 hash of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Issue stores a fresh token for user, replacing any earlier one, and
// returns the plaintext token with its expiry.
func (s *Service) Issue(ctx context.Context, user *models.User) (string, time.Time, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(TokenExpiry)
	if user.HasRecoveryToken() {
		slog.Info("recovery_token_replaced", "user_id", user.ID)
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.SetRecoveryToken(ctx, user.ID, HashToken(token), expiresAt)
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store recovery token: %w", err)
	}

	slog.Info("recovery_token_issued", "user_id", user.ID, "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Validate returns the user owning token. It fails with ErrTokenNotFound for
// unknown or consumed tokens and ErrTokenExpired once the expiry is reached.
func (s *Service) Validate(ctx context.Context, token string) (*models.User, error) {
	return s.validate(ctx, s.repo, token)
}

func (s *Service) validate(ctx context.Context, repo *repository.Repository, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}
	hash := HashToken(token)

	user, err := repo.GetUserByRecoveryToken(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up recovery token: %w", err)
	}

	if user.RecoveryTokenHash == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RecoveryTokenHash), []byte(hash)) != 1 {
		return nil, ErrTokenNotFound
	}

	if user.RecoveryTokenExpiresAt == nil || !s.now().Before(*user.RecoveryTokenExpiresAt) {
		return nil, ErrTokenExpired
	}

	return user, nil
}

// Consume sets a new password for the owner of token and clears the token,
// all in one transaction. On any failure the token stays valid.
func (s *Service) Consume(ctx context.Context, token, password, confirm string) (*models.User, error) {
	var user *models.User

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		user, err = s.validate(ctx, tx, token)
		if err != nil {
			return err
		}

		if err := s.passwords.Validate(password, confirm); err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		err = tx.ResetPassword(ctx, user.ID, HashToken(token), string(hash))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}

		user.PasswordHash = string(hash)
		user.RecoveryTokenHash = nil
		user.RecoveryTokenExpiresAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("password_reset", "user_id", user.ID)
	return user, nil
}
