// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/mylife/internal/appcontext"
	"codeberg.org/oliverandrich/mylife/internal/htmx"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/templates"
	"codeberg.org/oliverandrich/mylife/internal/validate"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// base carries what every page handler needs to talk back to the user.
type base struct {
	sessions *session.Manager
	debug    bool
}

// page collects the flashes for a page about to be rendered.
func (b *base) page(c echo.Context) templates.Page {
	return templates.Page{Flashes: b.sessions.Flashes(c)}
}

func (b *base) flash(c echo.Context, kind, messageID string) {
	b.sessions.AddFlash(c, kind, i18n.T(c.Request().Context(), messageID))
}

func (b *base) flashData(c echo.Context, kind, messageID string, data map[string]any) {
	b.sessions.AddFlash(c, kind, i18n.TData(c.Request().Context(), messageID, data))
}

// flashInvalid reports a validation error as an error flash. It returns
// false for any other error.
func (b *base) flashInvalid(c echo.Context, err error) bool {
	verr, ok := validate.As(err)
	if !ok {
		return false
	}
	b.flashData(c, session.FlashError, "validation_"+verr.Code, map[string]any{"Limit": verr.Limit})
	return true
}

// failed logs an unexpected error and tells the user something went wrong.
// In debug mode the error text is shown as well.
func (b *base) failed(c echo.Context, event string, err error) {
	slog.Error(event, "error", err, "path", c.Request().URL.Path)
	b.flash(c, session.FlashError, "flash_generic_error")
	if b.debug {
		b.flashData(c, session.FlashInfo, "flash_error_detail", map[string]any{"Error": err.Error()})
	}
}

// currentUser returns the signed-in user. Routes using it sit behind
// RequireAuth, so a missing user is a wiring error.
func currentUser(c echo.Context) (*models.User, error) {
	user := appcontext.UserFrom(c)
	if user == nil {
		return nil, echo.ErrUnauthorized
	}
	return user, nil
}

// taskID parses the :id path parameter. Anything but a positive integer
// is a 404, like a task that does not exist.
func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

// SafeNext returns next when it is a path on this site, else fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") ||
		strings.ContainsAny(next, "\r\n") {
		return fallback
	}
	return next
}

func redirect(c echo.Context, url string) error {
	return htmx.Redirect(c, url)
}
