// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"codeberg.org/oliverandrich/mylife/internal/handlers"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	h := handlers.New(env.repo)

	c, rec := env.request(http.MethodGet, "/health", nil, nil)
	require.NoError(t, h.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	h := handlers.New(env.repo)
	require.NoError(t, env.db.Close())

	c, rec := env.request(http.MethodGet, "/health", nil, nil)
	require.NoError(t, h.Health(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	h := handlers.New(env.repo)

	c, rec := env.request(http.MethodGet, "/", nil, nil)
	require.NoError(t, h.Home(c))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	c, rec = env.request(http.MethodGet, "/", nil, &models.User{ID: 1})
	require.NoError(t, h.Home(c))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		debug    bool
		code     int
		contains string
		hidden   string
	}{
		{"repository not found", fmt.Errorf("loading: %w", repository.ErrNotFound), false, http.StatusNotFound, "Page not found.", ""},
		{"echo not found", echo.ErrNotFound, false, http.StatusNotFound, "Page not found.", ""},
		{"csrf", echo.NewHTTPError(http.StatusForbidden, "invalid csrf token"), false, http.StatusForbidden, "Access denied.", ""},
		{"internal production", errors.New("disk on fire"), false, http.StatusInternalServerError, "Internal server error.", "disk on fire"},
		{"internal debug", errors.New("disk on fire"), true, http.StatusInternalServerError, "disk on fire", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			c, rec := env.request(http.MethodGet, "/somewhere", nil, nil)

			handlers.ErrorHandler(tt.debug)(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			if tt.hidden != "" {
				assert.NotContains(t, rec.Body.String(), tt.hidden)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/perfil?x=1", handlers.SafeNext("/perfil?x=1", "/dashboard"))
	assert.Equal(t, "/dashboard", handlers.SafeNext("", "/dashboard"))
	assert.Equal(t, "/dashboard", handlers.SafeNext("//evil.example.com/", "/dashboard"))
	assert.Equal(t, "/dashboard", handlers.SafeNext("javascript:alert(1)", "/dashboard"))
	assert.Equal(t, "/dashboard", handlers.SafeNext("/ok\r\nSet-Cookie: x", "/dashboard"))
}
