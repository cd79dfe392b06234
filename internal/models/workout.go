package models

import (
	"time"

	"github.com/hxlyu/safegain/internal/clock"
)

// WorkoutRecord represents one performed workout.
type WorkoutRecord struct {
	ID           int64   `db:"id" json:"id"`
	Timestamp    string  `db:"timestamp" json:"timestamp"` // RFC3339 UTC
	ExerciseType string  `db:"exercise_type" json:"exercise_type"`
	Sets         int     `db:"sets" json:"sets"`
	Reps         int     `db:"reps" json:"reps"`
	Weight       float64 `db:"weight" json:"weight"`
	Notes        string  `db:"notes" json:"notes"`
}

// TableName returns the table name for WorkoutRecord.
func (WorkoutRecord) TableName() string {
	return "workouts"
}

// At returns the instant the workout was performed.
func (w *WorkoutRecord) At() (time.Time, error) {
	return clock.FromStorage(w.Timestamp)
}
