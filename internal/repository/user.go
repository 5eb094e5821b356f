// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/models"
)

const userColumns = `id, name, email, password_hash, list_name,
	recovery_token_hash, recovery_token_expires_at, created_at`

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts user and fills in ID and CreatedAt.
// A duplicate email in any casing returns ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.ListName == "" {
		user.ListName = models.DefaultListName
	}
	user.CreatedAt = time.Now().UTC()

	return r.get(ctx, &user.ID,
		`INSERT INTO users (name, email, password_hash, list_name, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		user.Name, user.Email, user.PasswordHash, user.ListName, user.CreatedAt)
}

// GetUserByID retrieves a user by their ID
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.get(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = ?`, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists checks if an account uses the given email in any casing.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.get(ctx, &count, `SELECT count(*) FROM users WHERE lower(email) = ?`, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) UpdateUserName(ctx context.Context, id int64, name string) error {
	return r.execOne(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
}

func (r *Repository) UpdateListName(ctx context.Context, id int64, listName string) error {
	return r.execOne(ctx, `UPDATE users SET list_name = ? WHERE id = ?`, listName, id)
}

// UpdateUserPassword updates a user's password
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

// SetRecoveryToken stores a token hash and expiry, replacing any earlier token.
func (r *Repository) SetRecoveryToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET recovery_token_hash = ?, recovery_token_expires_at = ? WHERE id = ?`,
		tokenHash, expiresAt.UTC(), id)
}

// GetUserByRecoveryToken finds the user holding the given token hash.
func (r *Repository) GetUserByRecoveryToken(ctx context.Context, tokenHash string) (*models.User, error) {
	var user models.User
	err := r.get(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE recovery_token_hash = ?`, tokenHash)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword sets a new password hash and clears the recovery token.
// It only applies while tokenHash is still the stored token, so a token
// can be consumed once.
func (r *Repository) ResetPassword(ctx context.Context, id int64, tokenHash, passwordHash string) error {
	return r.execOne(ctx,
		`UPDATE users
		 SET password_hash = ?, recovery_token_hash = NULL, recovery_token_expires_at = NULL
		 WHERE id = ? AND recovery_token_hash = ?`,
		passwordHash, id, tokenHash)
}

// DeleteUser deletes a user and, through the foreign key, their tasks.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

// CountUsers returns the total number of users
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.get(ctx, &count, `SELECT count(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
