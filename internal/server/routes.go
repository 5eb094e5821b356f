// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"net/http"

	"codeberg.org/oliverandrich/mylife/internal/handlers"
	"codeberg.org/oliverandrich/mylife/internal/metrics"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"github.com/labstack/echo/v4"
)

// routeHandlers groups the handler sets mounted by setupRoutes.
type routeHandlers struct {
	base    *handlers.Handlers
	auth    *handlers.AuthHandlers
	tasks   *handlers.TaskHandlers
	profile *handlers.ProfileHandlers
}

var getOrPost = []string{http.MethodGet, http.MethodPost}

func setupRoutes(e *echo.Echo, h routeHandlers, sessions *session.Manager) {
	e.GET("/", h.base.Home)
	e.GET("/health", h.base.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Route-level middleware: a group with an empty prefix would also claim
	// the not-found catch-all.
	guest := guestOnly()
	e.GET("/login", h.auth.LoginPage, guest)
	e.POST("/login", h.auth.Login, guest)
	e.GET("/cadastro", h.auth.RegisterPage, guest)
	e.POST("/cadastro", h.auth.Register, guest)
	e.GET("/recuperar_senha", h.auth.ForgotPage, guest)
	e.POST("/recuperar_senha", h.auth.Forgot, guest)
	e.GET("/redefinir_senha/:token", h.auth.ResetPage, guest)
	e.POST("/redefinir_senha/:token", h.auth.Reset, guest)

	authed := requireAuth(sessions)
	e.Match(getOrPost, "/logout", h.auth.Logout, authed)
	e.GET("/dashboard", h.tasks.Dashboard, authed)
	e.POST("/adicionar", h.tasks.Add, authed)
	e.POST("/editar/:id", h.tasks.Edit, authed)
	e.POST("/atualizar_nome", h.tasks.RenameList, authed)
	// GET task actions must carry the CSRF token in the query string.
	for path, handler := range map[string]echo.HandlerFunc{
		"/completar/:id": h.tasks.Complete,
		"/reverter/:id":  h.tasks.Revert,
		"/deletar/:id":   h.tasks.Delete,
	} {
		e.GET(path, handler, authed, csrfQuery())
		e.POST(path, handler, authed)
	}
	e.GET("/perfil", h.profile.Show, authed)
	e.POST("/perfil", h.profile.Update, authed)
}
