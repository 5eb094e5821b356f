// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/models"
)

const taskColumns = `id, user_id, title, description, date, link, done, created_at`

// CreateTask inserts task and fills in ID and CreatedAt.
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	task.CreatedAt = time.Now().UTC()
	return r.get(ctx, &task.ID,
		`INSERT INTO tasks (user_id, title, description, date, link, done, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		task.UserID, task.Title, task.Description, task.Date, task.Link, task.Done, task.CreatedAt)
}

// ListTasks returns the user's tasks in insertion order.
func (r *Repository) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.selectAll(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns the task only if userID owns it.
func (r *Repository) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	var task models.Task
	err := r.get(ctx, &task,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *Repository) SetTaskDone(ctx context.Context, userID, taskID int64, done bool) error {
	return r.execOne(ctx,
		`UPDATE tasks SET done = ? WHERE id = ? AND user_id = ?`, done, taskID, userID)
}

// UpdateTask overwrites the editable fields of an owned task.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	return r.execOne(ctx,
		`UPDATE tasks SET title = ?, description = ?, date = ?, link = ?
		 WHERE id = ? AND user_id = ?`,
		task.Title, task.Description, task.Date, task.Link, task.ID, task.UserID)
}

func (r *Repository) DeleteTask(ctx context.Context, userID, taskID int64) error {
	return r.execOne(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
}

// CountTasks returns the number of tasks and how many of them are done.
func (r *Repository) CountTasks(ctx context.Context, userID int64) (total, done int64, err error) {
	var row struct {
		Total int64 `db:"total"`
		Done  int64 `db:"done"`
	}
	err = r.get(ctx, &row,
		`SELECT count(*) AS total, COALESCE(SUM(CASE WHEN done THEN 1 ELSE 0 END), 0) AS done
		 FROM tasks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Done, nil
}
