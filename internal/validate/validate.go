// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package validate holds the form validation error shared by the services.
// Handlers translate Code through the "validation_<code>" message IDs.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Error codes.
const (
	NameRequired      = "name_required"
	EmailRequired     = "email_required"
	EmailInvalid      = "email_invalid"
	EmailTaken        = "email_taken"
	PasswordRequired  = "password_required"
	PasswordMismatch  = "password_mismatch"
	PasswordTooShort  = "password_too_short"
	PasswordIncorrect = "password_incorrect"
	TitleRequired     = "title_required"
	ListNameRequired  = "list_name_required"
	TooLong           = "too_long"
)

// Error is a user-correctable input problem. No data was changed.
type Error struct {
	Code    string
	Message string
	Limit   int
}

func (e *Error) Error() string {
	return e.Message
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// As extracts a validation error from err.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Required fails with code when value is blank.
func Required(value, code, message string) error {
	if strings.TrimSpace(value) == "" {
		return New(code, message)
	}
	return nil
}

// MaxLength fails when value has more than limit characters.
func MaxLength(value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &Error{
			Code:    TooLong,
			Message: fmt.Sprintf("value must be at most %d characters", limit),
			Limit:   limit,
		}
	}
	return nil
}

// Email fails unless value is a bare address such as ana@example.com.
func Email(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return New(EmailInvalid, "invalid email address")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
