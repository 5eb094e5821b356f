// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors returned by handlers as an error page.
// repository.ErrNotFound becomes a 404. The error text of a 5xx is only
// shown when debug is set.
func ErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			code = http.StatusNotFound
		case errors.As(err, &he):
			code = he.Code
		}

		if code >= http.StatusInternalServerError {
			slog.Error("request_error", "error", err, "method", c.Request().Method, "path", c.Request().URL.Path)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		page := templates.ErrorPage{
			Code:    code,
			Message: i18n.T(c.Request().Context(), errorMessageID(code)),
		}
		if debug && code >= http.StatusInternalServerError {
			page.Detail = err.Error()
		}

		if renderErr := Render(c, code, templates.Error(page)); renderErr != nil {
			slog.Error("error_page_failed", "error", renderErr)
			_ = c.String(code, http.StatusText(code))
		}
	}
}

func errorMessageID(code int) string {
	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "error_not_found"
	case http.StatusForbidden, http.StatusUnauthorized:
		return "error_forbidden"
	case http.StatusBadRequest:
		return "error_bad_request"
	case http.StatusRequestEntityTooLarge:
		return "error_too_large"
	default:
		return "error_internal"
	}
}
