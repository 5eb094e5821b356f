// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package tasks implements the task list of a signed-in user. Every
// operation takes the owner's id and never touches another user's rows.
package tasks

import (
	"context"
	"sort"
	"strings"

	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/validate"
)

// ErrNotFound is returned for tasks that do not exist or belong to someone else.
var ErrNotFound = repository.ErrNotFound

// Input is the editable part of a task as submitted by a form.
type Input struct {
	Title       string
	Description string
	Date        string
	Link        string
}

func (in Input) normalize() Input {
	return Input{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Link:        strings.TrimSpace(in.Link),
	}
}

func (in Input) validate() error {
	return validate.First(
		validate.Required(in.Title, validate.TitleRequired, "title is required"),
		validate.MaxLength(in.Title, models.MaxTitleLength),
		validate.MaxLength(in.Date, models.MaxDateLength),
		validate.MaxLength(in.Link, models.MaxLinkLength),
	)
}

// Dashboard is the task list with its completion statistics.
type Dashboard struct {
	Tasks     []models.Task
	Total     int
	Completed int
	Percent   int
}

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard lists the user's tasks, pending ones first. Within each group
// the storage order is kept.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	list, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(list), nil
}

// Summarize orders tasks and computes the completion percentage, truncated.
func Summarize(list []models.Task) *Dashboard {
	sort.SliceStable(list, func(i, j int) bool {
		return !list[i].Done && list[j].Done
	})

	d := &Dashboard{Tasks: list, Total: len(list)}
	for _, t := range list {
		if t.Done {
			d.Completed++
		}
	}
	if d.Total > 0 {
		d.Percent = d.Completed * 100 / d.Total
	}
	return d
}

// Add creates a task owned by userID.
func (s *Service) Add(ctx context.Context, userID int64, in Input) (*models.Task, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Link:        in.Link,
	}
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces the editable fields of an owned task.
func (s *Service) Update(ctx context.Context, userID, taskID int64, in Input) error {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.UpdateTask(ctx, &models.Task{
			ID:          taskID,
			UserID:      userID,
			Title:       in.Title,
			Description: in.Description,
			Date:        in.Date,
			Link:        in.Link,
		})
	})
}

// UpdateListName renames the user's list.
func (s *Service) UpdateListName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validate.First(
		validate.Required(name, validate.ListNameRequired, "list name is required"),
		validate.MaxLength(name, models.MaxListNameLength),
	); err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.UpdateListName(ctx, userID, name)
	})
}

func (s *Service) Complete(ctx context.Context, userID, taskID int64) error {
	return s.setDone(ctx, userID, taskID, true)
}

func (s *Service) Revert(ctx context.Context, userID, taskID int64) error {
	return s.setDone(ctx, userID, taskID, false)
}

func (s *Service) setDone(ctx context.Context, userID, taskID int64, done bool) error {
	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.SetTaskDone(ctx, userID, taskID, done)
	})
}

// Delete removes an owned task permanently.
func (s *Service) Delete(ctx context.Context, userID, taskID int64) error {
	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.DeleteTask(ctx, userID, taskID)
	})
}
