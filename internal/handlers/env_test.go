// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/appcontext"
	"codeberg.org/oliverandrich/mylife/internal/config"
	"codeberg.org/oliverandrich/mylife/internal/handlers"
	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/auth"
	"codeberg.org/oliverandrich/mylife/internal/services/recovery"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/services/tasks"
	"codeberg.org/oliverandrich/mylife/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/text/language"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

const testBaseURL = "http://localhost:5000"

// fakeMailer records reset mails instead of sending them.
type fakeMailer struct {
	mu     sync.Mutex
	err    error
	tokens []string
	to     []string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.to = append(m.to, toEmail)
	return m.err
}

type testEnv struct {
	e        *echo.Echo
	db       *sqlx.DB
	repo     *repository.Repository
	sessions *session.Manager
	auth     *auth.Service
	recovery *recovery.Service
	tasks    *tasks.Service
	clock    *testutil.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, i18n.Init())

	db, repo := testutil.NewTestDB(t)
	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "_test_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)

	authSvc := auth.NewService(repo)
	clock := testutil.NewClock(time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC))

	return &testEnv{
		e:        echo.New(),
		db:       db,
		repo:     repo,
		sessions: sessions,
		auth:     authSvc,
		recovery: recovery.NewService(repo, authSvc.PasswordValidator(), clock.Now),
		tasks:    tasks.NewService(repo),
		clock:    clock,
	}
}

func (env *testEnv) authHandlers(debug bool, mailer handlers.ResetMailer) *handlers.AuthHandlers {
	return handlers.NewAuth(env.auth, env.recovery, env.repo, env.sessions, handlers.AuthOptions{
		BaseURL: testBaseURL,
		Debug:   debug,
		Mailer:  mailer,
	})
}

func (env *testEnv) taskHandlers() *handlers.TaskHandlers {
	return handlers.NewTasks(env.tasks, env.sessions, false, env.clock.Now)
}

// request builds an English-locale context. A non-nil form is sent as the
// urlencoded body. user, when set, is attached as the signed-in user.
func (env *testEnv) request(method, target string, form url.Values, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(i18n.WithLocale(req.Context(), language.English))
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if user != nil {
		appcontext.SetUser(c, user)
	}
	return c, rec
}

// flashes reads the flash cookie a redirect left behind.
func (env *testEnv) flashes(rec *httptest.ResponseRecorder) []session.Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	c := env.e.NewContext(req, httptest.NewRecorder())
	return env.sessions.Flashes(c)
}

func flashTexts(list []session.Flash) []string {
	texts := make([]string, 0, len(list))
	for _, f := range list {
		texts = append(texts, f.Kind+": "+f.Text)
	}
	return texts
}

// sessionCookie returns the session cookie set on rec, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "_test_session" {
			return cookie
		}
	}
	return nil
}

var errSMTP = errors.New("dial tcp: connection refused")
