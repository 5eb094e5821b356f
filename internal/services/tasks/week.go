// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tasks

import "time"

// Day is one column of the week strip on the dashboard.
type Day struct {
	Weekday time.Weekday
	Day     int
	Month   time.Month
	Year    int
	Today   bool
}

// Week returns the seven days of the week containing now, Monday first.
// Today is the entry whose day and month equal now's.
func Week(now time.Time) []Day {
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)

	days := make([]Day, 7)
	for i := range days {
		d := monday.AddDate(0, 0, i)
		days[i] = Day{
			Weekday: d.Weekday(),
			Day:     d.Day(),
			Month:   d.Month(),
			Year:    d.Year(),
			Today:   d.Day() == now.Day() && d.Month() == now.Month(),
		}
	}
	return days
}
