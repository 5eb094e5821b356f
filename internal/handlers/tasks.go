// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/services/tasks"
	"codeberg.org/oliverandrich/mylife/internal/templates"
	"github.com/labstack/echo/v4"
)

// TaskHandlers serves the dashboard and the task mutations. Every mutation
// ends in a redirect back to the dashboard.
type TaskHandlers struct {
	base
	tasks *tasks.Service
	now   func() time.Time
}

// NewTasks creates new task handlers. now defaults to time.Now.
func NewTasks(svc *tasks.Service, sessions *session.Manager, debug bool, now func() time.Time) *TaskHandlers {
	if now == nil {
		now = time.Now
	}
	return &TaskHandlers{
		base:  base{sessions: sessions, debug: debug},
		tasks: svc,
		now:   now,
	}
}

// Dashboard renders the list, its statistics and the current week.
func (h *TaskHandlers) Dashboard(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	board, err := h.tasks.Dashboard(ctx, user.ID)
	if err != nil {
		return err
	}

	now := h.now()
	return Render(c, http.StatusOK, templates.Dashboard(templates.DashboardPage{
		Page:  h.page(c),
		User:  user,
		Board: board,
		Week:  tasks.Week(now),
		Today: templates.FormatDate(ctx, now),
	}))
}

func taskInput(c echo.Context) tasks.Input {
	return tasks.Input{
		Title:       c.FormValue("texto_tarefa"),
		Description: c.FormValue("descricao"),
		Date:        c.FormValue("data"),
		Link:        c.FormValue("link"),
	}
}

// Add creates a task from the form.
func (h *TaskHandlers) Add(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	_, err = h.tasks.Add(c.Request().Context(), user.ID, taskInput(c))
	return h.done(c, err, "flash_task_added", "task_add_failed")
}

// Edit replaces title, description, date and link of a task.
func (h *TaskHandlers) Edit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	err = h.tasks.Update(c.Request().Context(), user.ID, id, taskInput(c))
	return h.done(c, err, "flash_task_updated", "task_update_failed")
}

// RenameList sets the list name shown on the dashboard.
func (h *TaskHandlers) RenameList(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.tasks.UpdateListName(c.Request().Context(), user.ID, c.FormValue("nome_lista"))
	return h.done(c, err, "flash_list_renamed", "list_rename_failed")
}

func (h *TaskHandlers) Complete(c echo.Context) error {
	return h.byID(c, h.tasks.Complete, "flash_task_completed", "task_complete_failed")
}

func (h *TaskHandlers) Revert(c echo.Context) error {
	return h.byID(c, h.tasks.Revert, "flash_task_reverted", "task_revert_failed")
}

func (h *TaskHandlers) Delete(c echo.Context) error {
	return h.byID(c, h.tasks.Delete, "flash_task_deleted", "task_delete_failed")
}

func (h *TaskHandlers) byID(
	c echo.Context,
	op func(ctx context.Context, userID, taskID int64) error,
	successID, failEvent string,
) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}

	err = op(c.Request().Context(), user.ID, id)
	return h.done(c, err, successID, failEvent)
}

// done turns the outcome of a mutation into a flash and a redirect.
// Tasks that do not exist or belong to someone else are a 404.
func (h *TaskHandlers) done(c echo.Context, err error, successID, failEvent string) error {
	if errors.Is(err, tasks.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err == nil {
		h.flash(c, session.FlashSuccess, successID)
	} else if !h.flashInvalid(c, err) {
		h.failed(c, failEvent, err)
	}
	return redirect(c, "/dashboard")
}
