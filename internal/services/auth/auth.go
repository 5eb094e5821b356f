// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo              *repository.Repository
	passwordValidator *PasswordValidator
}

func NewService(repo *repository.Repository) *Service {
	return &Service{
		repo:              repo,
		passwordValidator: DefaultPasswordValidator(),
	}
}

// PasswordValidator returns the password validator for use in other services
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// RegisterParams holds the parameters for user registration
type RegisterParams struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (p RegisterParams) validate(passwords *PasswordValidator) error {
	return validate.First(
		validate.Required(p.Name, validate.NameRequired, "name is required"),
		validate.MaxLength(p.Name, models.MaxNameLength),
		validate.Required(p.Email, validate.EmailRequired, "email is required"),
		validate.MaxLength(p.Email, models.MaxEmailLength),
		validate.Email(p.Email),
		passwords.Validate(p.Password, p.ConfirmPassword),
	)
}

// Register creates a new user account. Every failure that the user can fix
// is a *validate.Error, including an email registered in any casing.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = repository.NormalizeEmail(params.Email)

	if err := params.validate(s.passwordValidator); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(passwordHash),
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		exists, err := tx.EmailExists(ctx, params.Email)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists {
			return repository.ErrDuplicate
		}
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, validate.New(validate.EmailTaken, "email is already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// Login authenticates a user and returns the user if successful
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(password) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// ChangePasswordParams holds a password change requested from the profile.
type ChangePasswordParams struct {
	Current         string
	Password        string
	ConfirmPassword string
}

// ChangePassword changes a user's password (when they know their current
// password) and returns the updated user.
func (s *Service) ChangePassword(ctx context.Context, userID int64, params ChangePasswordParams) (*models.User, error) {
	var user *models.User

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		user, err = tx.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		if !user.CheckPassword(params.Current) {
			return validate.New(validate.PasswordIncorrect, "current password is incorrect")
		}

		if err := s.passwordValidator.Validate(params.Password, params.ConfirmPassword); err != nil {
			return err
		}

		if err := user.SetPassword(params.Password); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		return tx.UpdateUserPassword(ctx, userID, user.PasswordHash)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("password_changed", "user_id", userID)
	return user, nil
}

// UpdateName sets the display name shown on the profile.
func (s *Service) UpdateName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validate.First(
		validate.Required(name, validate.NameRequired, "name is required"),
		validate.MaxLength(name, models.MaxNameLength),
	); err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.UpdateUserName(ctx, userID, name)
	})
}
