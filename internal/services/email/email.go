// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/oliverandrich/mylife/internal/config"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"github.com/wneessen/go-mail"
)

// ErrDisabled is returned by NewService when no SMTP credentials are configured.
var ErrDisabled = errors.New("email delivery is not configured")

// Service sends transactional mail over SMTP.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// ResetURL builds the password reset link for token.
func ResetURL(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/redefinir_senha/" + url.PathEscape(token)
}

// ResetURL builds the password reset link for token on this deployment.
func (s *Service) ResetURL(token string) string {
	return ResetURL(s.baseURL, token)
}

// SendPasswordReset mails the reset link for token to the account owner.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	msg, err := s.passwordResetMessage(ctx, toEmail, name, token)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *Service) passwordResetMessage(ctx context.Context, toEmail, name, token string) (*mail.Msg, error) {
	subject := i18n.T(ctx, "email_reset_subject")
	body := i18n.TData(ctx, "email_reset_body", map[string]any{
		"Name": name,
		"URL":  s.ResetURL(token),
	})
	return s.message(toEmail, subject, body)
}

func (s *Service) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

// send delivers msg via SMTP using go-mail.
func (s *Service) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
