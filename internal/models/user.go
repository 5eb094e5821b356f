// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                     int64      `db:"id" json:"id"`
	Name                   string     `db:"name" json:"name"`
	Email                  string     `db:"email" json:"email"`
	PasswordHash           string     `db:"password_hash" json:"-"`
	ListName               string     `db:"list_name" json:"list_name"`
	RecoveryTokenHash      *string    `db:"recovery_token_hash" json:"-"`
	RecoveryTokenExpiresAt *time.Time `db:"recovery_token_expires_at" json:"-"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
}

// SetPassword stores a bcrypt hash of the plaintext password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SessionStamp identifies the current password. Sessions issued before a
// password change carry a different stamp and are rejected.
func (u *User) SessionStamp() string {
	sum := sha256.Sum256([]byte(u.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// HasRecoveryToken reports whether a recovery token is pending.
func (u *User) HasRecoveryToken() bool {
	return u.RecoveryTokenHash != nil && *u.RecoveryTokenHash != ""
}
