// Package views derives chart and calendar views from stored records.
// Every builder is a pure function of its inputs: recomputing with
// unchanged data yields identical output.
package views

import (
	"time"

	"github.com/hxlyu/safegain/internal/models"
)

// CalendarDay is one cell of the current-month workout calendar.
type CalendarDay struct {
	Day        int  `json:"day"`
	IsToday    bool `json:"is_today"`
	HasWorkout bool `json:"has_workout"`
}

// BuildMonthCalendar builds cells for days 1..last-day of now's month.
// now carries the canonical civil zone; workouts are the result of a
// from-start-of-month range query, so anything before the 1st is already
// excluded. A day has a workout marker iff at least one workout falls on
// it within the current month, duplicates collapsing into one marker.
func BuildMonthCalendar(now time.Time, workouts []*models.WorkoutRecord) []CalendarDay {
	// Day 0 of the next month is the last day of this one; correct for
	// all month lengths including leap-year February.
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()

	workoutDays := make(map[int]bool)
	for _, w := range workouts {
		at, err := w.At()
		if err != nil {
			continue // malformed legacy timestamp, no marker
		}
		at = at.In(now.Location())
		if at.Year() == now.Year() && at.Month() == now.Month() {
			workoutDays[at.Day()] = true
		}
	}

	days := make([]CalendarDay, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		days = append(days, CalendarDay{
			Day:        day,
			IsToday:    day == now.Day(),
			HasWorkout: workoutDays[day],
		})
	}
	return days
}
