// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"unicode/utf8"

	"codeberg.org/oliverandrich/mylife/internal/validate"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// PasswordValidator checks new passwords on registration, reset and change.
type PasswordValidator struct {
	MinLength int
}

// DefaultPasswordValidator returns a validator with sensible defaults
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{MinLength: MinPasswordLength}
}

// Validate checks that password is present, matches confirm and fits the
// length bounds. Mismatch is reported before length.
func (v *PasswordValidator) Validate(password, confirm string) error {
	if password == "" {
		return validate.New(validate.PasswordRequired, "password is required")
	}
	if password != confirm {
		return validate.New(validate.PasswordMismatch, "passwords do not match")
	}
	if utf8.RuneCountInString(password) < v.MinLength {
		return &validate.Error{
			Code:    validate.PasswordTooShort,
			Message: fmt.Sprintf("password must be at least %d characters long", v.MinLength),
			Limit:   v.MinLength,
		}
	}
	if len(password) > MaxPasswordBytes {
		return &validate.Error{
			Code:    validate.TooLong,
			Message: fmt.Sprintf("password must be at most %d bytes long", MaxPasswordBytes),
			Limit:   MaxPasswordBytes,
		}
	}
	return nil
}
