// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/mylife/internal/appcontext"
	"codeberg.org/oliverandrich/mylife/internal/config"
	"codeberg.org/oliverandrich/mylife/internal/ctxkeys"
	"codeberg.org/oliverandrich/mylife/internal/htmx"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)
	return mgr
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("details")

	assert.Contains(t, buf.String(), "details")
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "/redefinir_senha/[redacted]", redactToken("/redefinir_senha/abc123"))
	assert.Equal(t, "/redefinir_senha/", redactToken("/redefinir_senha/"))
	assert.Equal(t, "/dashboard", redactToken("/dashboard"))
}

func TestI18nMiddleware(t *testing.T) {
	require.NoError(t, i18n.Init())

	e := echo.New()
	e.Use(i18nMiddleware())

	var locale string
	e.GET("/", func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	tests := []struct {
		header string
		want   string
	}{
		{"en-US,en;q=0.9", "en"},
		{"pt-BR", "pt-BR"},
		{"", "pt-BR"},
		{"de-DE", "pt-BR"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Language", tt.header)
			e.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, locale)
		})
	}
}

func TestCsrfToContext(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("csrf", "test-token")
			return next(c)
		}
	})
	e.Use(csrfToContext())

	var token any
	e.GET("/", func(c echo.Context) error {
		token = c.Request().Context().Value(ctxkeys.CSRFToken{})
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "test-token", token)
}

func TestCsrfToContext_NoToken(t *testing.T) {
	e := echo.New()
	e.Use(csrfToContext())

	var token any
	e.GET("/", func(c echo.Context) error {
		token = c.Request().Context().Value(ctxkeys.CSRFToken{})
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, token)
}

func TestCustomContext(t *testing.T) {
	e := echo.New()
	e.Use(customContext())

	var cc *appcontext.Context
	e.GET("/", func(c echo.Context) error {
		cc, _ = c.(*appcontext.Context)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(htmx.HeaderRequest, "true")
	e.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, cc)
	require.NotNil(t, cc.Htmx)
	assert.True(t, cc.Htmx.IsHtmx)
}

// userProbe mounts loadUser and records the user each request ends up with.
func userProbe(t *testing.T, sessions *session.Manager) (*echo.Echo, **models.User) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return userProbeWithRepo(sessions, repo)
}

func TestLoadUser_NoSession(t *testing.T) {
	e, got := userProbe(t, newSessions(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, *got)
}

func TestLoadUser_ValidSession(t *testing.T) {
	sessions := newSessions(t)
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "Ana", "ana@example.com")
	e, got := userProbeWithRepo(sessions, repo)

	cookie, err := sessions.Create(user.ID, user.SessionStamp())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	e.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, *got)
	assert.Equal(t, user.ID, (*got).ID)
}

func TestLoadUser_StaleStamp(t *testing.T) {
	sessions := newSessions(t)
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewTestUser(t, repo, "Ana", "ana@example.com")
	e, got := userProbeWithRepo(sessions, repo)

	cookie, err := sessions.Create(user.ID, "before-password-change")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Nil(t, *got)
	cleared := findCookie(rec, "_session")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLoadUser_DeletedUser(t *testing.T) {
	sessions := newSessions(t)
	e, got := userProbe(t, sessions)

	cookie, err := sessions.Create(99999, "stamp")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, *got)
}

func TestLoadUser_TamperedCookie(t *testing.T) {
	e, got := userProbe(t, newSessions(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_session", Value: "forged"})
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, *got)
}

func protectedEcho(sessions *session.Manager, user *models.User) *echo.Echo {
	e := echo.New()
	e.Use(customContext())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user != nil {
				appcontext.SetUser(c, user)
			}
			return next(c)
		}
	})
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/dashboard", ok, requireAuth(sessions))
	e.POST("/adicionar", ok, requireAuth(sessions))
	e.GET("/login", ok, guestOnly())
	return e
}

func TestRequireAuth_RedirectsWithNext(t *testing.T) {
	require.NoError(t, i18n.Init())
	e := protectedEcho(newSessions(t), nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard?semana=1", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fdashboard%3Fsemana%3D1", rec.Header().Get("Location"))
	assert.NotNil(t, findCookie(rec, "_session_flash"))
}

func TestRequireAuth_PostHasNoNext(t *testing.T) {
	require.NoError(t, i18n.Init())
	e := protectedEcho(newSessions(t), nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/adicionar", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuth_Htmx(t *testing.T) {
	require.NoError(t, i18n.Init())
	e := protectedEcho(newSessions(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/adicionar", nil)
	req.Header.Set(htmx.HeaderRequest, "true")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(htmx.HeaderRedirect))
}

func TestRequireAuth_Authenticated(t *testing.T) {
	e := protectedEcho(newSessions(t), &models.User{ID: 1, Name: "Ana"})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGuestOnly(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		e := protectedEcho(newSessions(t), nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("signed in", func(t *testing.T) {
		e := protectedEcho(newSessions(t), &models.User{ID: 1, Name: "Ana"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func userProbeWithRepo(sessions *session.Manager, repo *repository.Repository) (*echo.Echo, **models.User) {
	e := echo.New()
	e.Use(customContext())
	e.Use(loadUser(sessions, repo))

	got := new(*models.User)
	e.GET("/", func(c echo.Context) error {
		*got = appcontext.UserFrom(c)
		return c.NoContent(http.StatusOK)
	})
	return e, got
}

func TestCsrfQuery(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("csrf", "issued-token")
			return next(c)
		}
	})
	e.GET("/deletar/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusSeeOther)
	}, csrfQuery())

	tests := []struct {
		target string
		code   int
	}{
		{"/deletar/1", http.StatusForbidden},
		{"/deletar/1?csrf_token=other", http.StatusForbidden},
		{"/deletar/1?csrf_token=issued-token", http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
