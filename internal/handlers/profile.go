// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/services/auth"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/templates"
	"github.com/labstack/echo/v4"
)

// ProfileHandlers shows the account and changes its name or password.
type ProfileHandlers struct {
	base
	auth *auth.Service
	repo *repository.Repository
}

func NewProfile(authService *auth.Service, repo *repository.Repository, sessions *session.Manager, debug bool) *ProfileHandlers {
	return &ProfileHandlers{
		base: base{sessions: sessions, debug: debug},
		auth: authService,
		repo: repo,
	}
}

// Show renders the profile page.
func (h *ProfileHandlers) Show(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	total, completed, err := h.repo.CountTasks(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return Render(c, http.StatusOK, templates.Profile(templates.ProfilePage{
		Page:      h.page(c),
		User:      user,
		Total:     int(total),
		Completed: int(completed),
		Name:      user.Name,
	}))
}

// Update handles both profile forms, told apart by the "acao" field.
func (h *ProfileHandlers) Update(c echo.Context) error {
	if c.FormValue("acao") == "senha" {
		return h.changePassword(c)
	}
	return h.rename(c)
}

func (h *ProfileHandlers) rename(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.auth.UpdateName(c.Request().Context(), user.ID, c.FormValue("nome"))
	if err == nil {
		h.flash(c, session.FlashSuccess, "flash_profile_updated")
	} else if !h.flashInvalid(c, err) {
		h.failed(c, "profile_update_failed", err)
	}
	return redirect(c, "/perfil")
}

// changePassword keeps the current browser signed in. Sessions elsewhere
// carry the old password stamp and end.
func (h *ProfileHandlers) changePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.auth.ChangePassword(c.Request().Context(), user.ID, auth.ChangePasswordParams{
		Current:         c.FormValue("senha_atual"),
		Password:        c.FormValue("senha"),
		ConfirmPassword: c.FormValue("confirmar_senha"),
	})
	if err != nil {
		if !h.flashInvalid(c, err) {
			h.failed(c, "password_change_failed", err)
		}
		return redirect(c, "/perfil")
	}

	cookie, err := h.sessions.Create(updated.ID, updated.SessionStamp())
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	h.flash(c, session.FlashSuccess, "flash_password_changed")
	return redirect(c, "/perfil")
}
