// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/mylife/internal/metrics"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/auth"
	"codeberg.org/oliverandrich/mylife/internal/services/email"
	"codeberg.org/oliverandrich/mylife/internal/services/recovery"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/templates"
	"codeberg.org/oliverandrich/mylife/internal/validate"
	"github.com/labstack/echo/v4"
)

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, toEmail, name, token string) error
}

// AuthOptions configures AuthHandlers.
type AuthOptions struct {
	// BaseURL is the public origin used in reset links.
	BaseURL string
	// Debug allows reset links to be shown in the browser.
	Debug bool
	// Mailer is nil when SMTP is not configured.
	Mailer ResetMailer
}

// AuthHandlers handles login, registration and password recovery.
type AuthHandlers struct {
	base
	auth     *auth.Service
	recovery *recovery.Service
	repo     *repository.Repository
	mailer   ResetMailer
	baseURL  string
}

// NewAuth creates new auth handlers.
func NewAuth(
	authService *auth.Service,
	recoveryService *recovery.Service,
	repo *repository.Repository,
	sessions *session.Manager,
	opts AuthOptions,
) *AuthHandlers {
	return &AuthHandlers{
		base:     base{sessions: sessions, debug: opts.Debug},
		auth:     authService,
		recovery: recoveryService,
		repo:     repo,
		mailer:   opts.Mailer,
		baseURL:  opts.BaseURL,
	}
}

// LoginPage renders the login form.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Login(templates.LoginPage{
		Page: h.page(c),
		Next: SafeNext(c.QueryParam("next"), ""),
	}))
}

// Login checks the credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	emailAddr := strings.TrimSpace(c.FormValue("email"))
	next := SafeNext(c.FormValue("next"), "")

	user, err := h.auth.Login(ctx, emailAddr, c.FormValue("senha"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultFailure).Inc()
		h.flash(c, session.FlashError, "flash_invalid_credentials")
		return Render(c, http.StatusUnauthorized, templates.Login(templates.LoginPage{
			Page:  h.page(c),
			Email: emailAddr,
			Next:  next,
		}))
	}
	if err != nil {
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.SessionStamp())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		return err
	}
	c.SetCookie(cookie)
	metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()

	h.flash(c, session.FlashSuccess, "flash_login_success")
	return redirect(c, SafeNext(next, "/dashboard"))
}

// RegisterPage renders the sign-up form.
func (h *AuthHandlers) RegisterPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Register(templates.RegisterPage{Page: h.page(c)}))
}

// Register creates an account and sends the user to the login.
func (h *AuthHandlers) Register(c echo.Context) error {
	params := auth.RegisterParams{
		Name:            c.FormValue("nome"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("senha"),
		ConfirmPassword: c.FormValue("confirmar_senha"),
	}

	_, err := h.auth.Register(c.Request().Context(), params)
	if h.flashInvalid(c, err) {
		return Render(c, http.StatusUnprocessableEntity, templates.Register(templates.RegisterPage{
			Page:  h.page(c),
			Name:  params.Name,
			Email: params.Email,
		}))
	}
	if err != nil {
		return err
	}

	h.flash(c, session.FlashSuccess, "flash_register_success")
	return redirect(c, "/login")
}

// Logout ends the session.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	h.flash(c, session.FlashSuccess, "flash_logout")
	return redirect(c, "/login")
}

// ForgotPage renders the recovery request form.
func (h *AuthHandlers) ForgotPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Forgot(templates.ForgotPage{Page: h.page(c)}))
}

// Forgot issues a recovery token and mails the reset link. Without a
// mailer the link is only shown in debug mode.
func (h *AuthHandlers) Forgot(c echo.Context) error {
	ctx := c.Request().Context()
	emailAddr := strings.TrimSpace(c.FormValue("email"))
	rerender := func(status int) error {
		return Render(c, status, templates.Forgot(templates.ForgotPage{Page: h.page(c), Email: emailAddr}))
	}

	if err := validate.Required(emailAddr, validate.EmailRequired, "email is required"); err != nil {
		h.flashInvalid(c, err)
		return rerender(http.StatusUnprocessableEntity)
	}

	user, err := h.repo.GetUserByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("recovery_unknown_email", "email", emailAddr)
		h.flash(c, session.FlashError, "flash_email_not_found")
		return rerender(http.StatusOK)
	}
	if err != nil {
		return err
	}

	token, _, err := h.recovery.Issue(ctx, user)
	if err != nil {
		return err
	}
	metrics.RecoveryTokens.Inc()
	link := map[string]any{"URL": email.ResetURL(h.baseURL, token)}

	switch {
	case h.mailer == nil:
		metrics.RecoveryMails.WithLabelValues(metrics.MailDisabled).Inc()
		slog.Warn("recovery_mail_disabled", "user_id", user.ID)
		if h.debug {
			h.flashData(c, session.FlashWarning, "flash_recovery_debug_link", link)
		} else {
			h.flash(c, session.FlashWarning, "flash_recovery_unavailable")
		}
	default:
		if err := h.mailer.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
			metrics.RecoveryMails.WithLabelValues(metrics.MailFailed).Inc()
			slog.Error("recovery_mail_failed", "user_id", user.ID, "error", err)
			h.flash(c, session.FlashError, "flash_recovery_send_failed")
			if h.debug {
				h.flashData(c, session.FlashInfo, "flash_recovery_debug_link", link)
			}
		} else {
			metrics.RecoveryMails.WithLabelValues(metrics.MailSent).Inc()
			slog.Info("recovery_mail_sent", "user_id", user.ID)
			h.flash(c, session.FlashSuccess, "flash_recovery_sent")
		}
	}

	return rerender(http.StatusOK)
}

// ResetPage renders the new password form for a live token.
func (h *AuthHandlers) ResetPage(c echo.Context) error {
	token := c.Param("token")
	if _, err := h.recovery.Validate(c.Request().Context(), token); err != nil {
		return h.tokenRejected(c, err)
	}
	return Render(c, http.StatusOK, templates.Reset(templates.ResetPage{Page: h.page(c), Token: token}))
}

// Reset sets the new password and consumes the token.
func (h *AuthHandlers) Reset(c echo.Context) error {
	token := c.Param("token")

	_, err := h.recovery.Consume(c.Request().Context(), token, c.FormValue("senha"), c.FormValue("confirmar_senha"))
	if h.flashInvalid(c, err) {
		return Render(c, http.StatusUnprocessableEntity, templates.Reset(templates.ResetPage{Page: h.page(c), Token: token}))
	}
	if err != nil {
		return h.tokenRejected(c, err)
	}

	h.flash(c, session.FlashSuccess, "flash_password_reset")
	return redirect(c, "/login")
}

// tokenRejected sends unknown, used and expired tokens back to the
// recovery form. Other errors propagate.
func (h *AuthHandlers) tokenRejected(c echo.Context, err error) error {
	if !errors.Is(err, recovery.ErrTokenNotFound) && !errors.Is(err, recovery.ErrTokenExpired) {
		return err
	}
	slog.Warn("recovery_token_rejected", "reason", err.Error())
	h.flash(c, session.FlashError, "flash_token_invalid")
	return redirect(c, "/recuperar_senha")
}
