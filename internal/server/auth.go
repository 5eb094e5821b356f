// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/oliverandrich/mylife/internal/appcontext"
	"codeberg.org/oliverandrich/mylife/internal/htmx"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"github.com/labstack/echo/v4"
)

// loadUser resolves the session cookie to a user. Sessions whose user is gone
// or whose stamp no longer matches the password are dropped.
func loadUser(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			user, err := repo.GetUserByID(c.Request().Context(), data.UserID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				c.SetCookie(sessions.Clear())
				return next(c)
			case err != nil:
				return err
			}

			if user.SessionStamp() != data.Stamp {
				slog.Info("session_revoked", "user_id", user.ID)
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			appcontext.SetUser(c, user)
			return next(c)
		}
	}
}

// requireAuth sends anonymous visitors to the login page. GET requests
// come back to where they started after signing in.
func requireAuth(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.UserFrom(c) != nil {
				return next(c)
			}

			sessions.AddFlash(c, session.FlashWarning, i18n.T(c.Request().Context(), "flash_login_required"))

			target := "/login"
			if c.Request().Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			}
			return htmx.Redirect(c, target)
		}
	}
}

// guestOnly keeps signed-in users away from the login and signup forms.
func guestOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.UserFrom(c) != nil {
				return htmx.Redirect(c, "/dashboard")
			}
			return next(c)
		}
	}
}
