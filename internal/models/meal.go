// Package models provides data model definitions for the SafeGain core.
package models

import (
	"time"

	"github.com/hxlyu/safegain/internal/clock"
)

// StomachFeeling is the post-meal digestive state enumeration.
type StomachFeeling string

const (
	FeelingComfortable StomachFeeling = "comfortable"
	FeelingBloating    StomachFeeling = "bloating"
	FeelingReflux      StomachFeeling = "reflux"
)

// Valid reports whether the value is one of the three known categories.
func (f StomachFeeling) Valid() bool {
	switch f {
	case FeelingComfortable, FeelingBloating, FeelingReflux:
		return true
	}
	return false
}

// MealRecord represents one eaten meal. Records are append-only: created
// through the save operation, never updated or deleted by the core.
type MealRecord struct {
	ID             int64          `db:"id" json:"id"`
	Timestamp      string         `db:"timestamp" json:"timestamp"` // RFC3339 UTC
	FoodName       string         `db:"food_name" json:"food_name"`
	Calories       float64        `db:"calories" json:"calories"`
	RiskCheck      string         `db:"risk_check" json:"risk_check"`
	Advice         string         `db:"advice" json:"advice"`
	StomachFeeling StomachFeeling `db:"stomach_feeling" json:"stomach_feeling"`
	Notes          string         `db:"notes" json:"notes"`
	ImageBlob      []byte         `db:"image_blob" json:"-"` // kept for reference only
}

// TableName returns the table name for MealRecord.
func (MealRecord) TableName() string {
	return "meals"
}

// At returns the eating instant.
func (m *MealRecord) At() (time.Time, error) {
	return clock.FromStorage(m.Timestamp)
}
