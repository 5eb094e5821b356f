// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tasks_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/services/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeek_MidWeek(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)

	days := tasks.Week(now)

	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Weekday)
	assert.Equal(t, 10, days[0].Day)
	assert.Equal(t, time.Sunday, days[6].Weekday)
	assert.Equal(t, 16, days[6].Day)

	for i, d := range days {
		assert.Equal(t, i == 2, d.Today, "day %d", d.Day)
	}
}

func TestWeek_SundayBelongsToPreviousMonday(t *testing.T) {
	now := time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC)

	days := tasks.Week(now)

	assert.Equal(t, 10, days[0].Day)
	assert.True(t, days[6].Today)
}

func TestWeek_CrossesMonthAndYear(t *testing.T) {
	// Thursday, 1 January 2026
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	days := tasks.Week(now)

	assert.Equal(t, 29, days[0].Day)
	assert.Equal(t, time.December, days[0].Month)
	assert.Equal(t, 2025, days[0].Year)
	assert.Equal(t, 1, days[3].Day)
	assert.Equal(t, time.January, days[3].Month)
	assert.Equal(t, 2026, days[3].Year)
	assert.True(t, days[3].Today)
	assert.Equal(t, 4, days[6].Day)
}

func TestWeek_MondayIsFirst(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	days := tasks.Week(now)

	assert.Equal(t, 10, days[0].Day)
	assert.True(t, days[0].Today)
}
