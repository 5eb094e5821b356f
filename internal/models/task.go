// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Task is a single entry on a user's list. Date is free text as typed.
type Task struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Date        string    `db:"date" json:"date"`
	Link        string    `db:"link" json:"link"`
	Done        bool      `db:"done" json:"done"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
