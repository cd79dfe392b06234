// Package db provides unit tests for the record-store repository.
package db

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the real schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return db
}

// =====================================================
// MealRecord Repository Tests
// =====================================================

func TestInsertMealAssignsMonotonicIDs(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	var lastID int64
	for i := 0; i < 3; i++ {
		m := &models.MealRecord{
			Timestamp:      "2026-08-31T11:45:00Z",
			FoodName:       "白灼虾",
			Calories:       320,
			StomachFeeling: models.FeelingComfortable,
		}
		if err := repo.InsertMeal(m); err != nil {
			t.Fatalf("InsertMeal() error: %v", err)
		}
		if m.ID <= lastID {
			t.Fatalf("id %d not greater than previous %d", m.ID, lastID)
		}
		lastID = m.ID
	}
}

func TestInsertMealVisibleImmediately(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	m := &models.MealRecord{
		Timestamp:      "2026-08-31T11:45:00Z",
		FoodName:       "小米粥",
		Calories:       150,
		RiskCheck:      "无明显风险",
		Advice:         "适合养胃，可以常吃",
		StomachFeeling: models.FeelingComfortable,
		Notes:          "适合养胃，可以常吃",
	}
	if err := repo.InsertMeal(m); err != nil {
		t.Fatalf("InsertMeal() error: %v", err)
	}

	meals, err := repo.ListMeals()
	if err != nil {
		t.Fatalf("ListMeals() error: %v", err)
	}
	if len(meals) != 1 {
		t.Fatalf("got %d meals, want 1", len(meals))
	}
	got := meals[0]
	if got.FoodName != "小米粥" || got.Calories != 150 ||
		got.StomachFeeling != models.FeelingComfortable || got.Advice != "适合养胃，可以常吃" {
		t.Errorf("persisted meal does not match: %+v", got)
	}
}

func TestMealImageStoredButNotListed(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	blob := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	m := &models.MealRecord{
		Timestamp:      "2026-08-31T11:45:00Z",
		StomachFeeling: models.FeelingBloating,
		ImageBlob:      blob,
	}
	if err := repo.InsertMeal(m); err != nil {
		t.Fatalf("InsertMeal() error: %v", err)
	}

	got, err := repo.MealImage(m.ID)
	if err != nil {
		t.Fatalf("MealImage() error: %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("image payload changed in round trip")
	}
}

func TestMealsSinceFiltersByTimestamp(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for _, ts := range []string{
		"2026-07-31T23:00:00Z",
		"2026-08-01T08:00:00Z",
		"2026-08-15T12:30:00Z",
	} {
		m := &models.MealRecord{Timestamp: ts, StomachFeeling: models.FeelingComfortable}
		if err := repo.InsertMeal(m); err != nil {
			t.Fatalf("InsertMeal() error: %v", err)
		}
	}

	meals, err := repo.MealsSince("2026-08-01T00:00:00Z")
	if err != nil {
		t.Fatalf("MealsSince() error: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("got %d meals, want 2", len(meals))
	}
	if meals[0].Timestamp != "2026-08-01T08:00:00Z" {
		t.Errorf("results not in insertion order: %+v", meals)
	}
}

// =====================================================
// WorkoutRecord Repository Tests
// =====================================================

func TestInsertWorkoutAndQueryRange(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	workouts := []models.WorkoutRecord{
		{Timestamp: "2026-08-02T10:00:00Z", ExerciseType: "俯卧撑", Sets: 3, Reps: 15},
		{Timestamp: "2026-08-02T18:00:00Z", ExerciseType: "哑铃弯举", Sets: 4, Reps: 10, Weight: 12.5},
		{Timestamp: "2026-07-28T10:00:00Z", ExerciseType: "深蹲", Sets: 5},
	}
	for i := range workouts {
		if err := repo.InsertWorkout(&workouts[i]); err != nil {
			t.Fatalf("InsertWorkout() error: %v", err)
		}
	}

	got, err := repo.WorkoutsSince("2026-08-01T00:00:00Z")
	if err != nil {
		t.Fatalf("WorkoutsSince() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d workouts, want 2", len(got))
	}
	if got[0].ExerciseType != "俯卧撑" || got[1].Weight != 12.5 {
		t.Errorf("unexpected rows: %+v, %+v", got[0], got[1])
	}
}

func TestInsertWorkoutRejectsEmptyType(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	// The CHECK constraint backs up the caller-side validation.
	err := repo.InsertWorkout(&models.WorkoutRecord{
		Timestamp:    "2026-08-02T10:00:00Z",
		ExerciseType: "",
	})
	if err == nil {
		t.Fatal("InsertWorkout with empty type = nil error, want failure")
	}
	if !apperrors.Is(err, apperrors.ErrStorage) {
		t.Errorf("error not classified as storage fault: %v", err)
	}
}

// =====================================================
// WeightSample Repository Tests
// =====================================================

func TestInsertWeightAllowsDuplicateDates(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for _, w := range []float64{57.5, 57.8} {
		s := &models.WeightSample{Date: "2026-08-31", Weight: w}
		if err := repo.InsertWeight(s); err != nil {
			t.Fatalf("InsertWeight() error: %v", err)
		}
	}

	samples, err := repo.RecentWeights(10)
	if err != nil {
		t.Fatalf("RecentWeights() error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2 (no dedup on date)", len(samples))
	}
}

func TestRecentWeightsOrderAndLimit(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	dates := []string{"2026-08-25", "2026-08-26", "2026-08-27", "2026-08-28"}
	for i, d := range dates {
		s := &models.WeightSample{Date: d, Weight: 57.0 + float64(i)*0.2}
		if err := repo.InsertWeight(s); err != nil {
			t.Fatalf("InsertWeight() error: %v", err)
		}
	}

	samples, err := repo.RecentWeights(3)
	if err != nil {
		t.Fatalf("RecentWeights() error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	// Descending by date: newest first, oldest of the window last.
	if samples[0].Date != "2026-08-28" || samples[2].Date != "2026-08-26" {
		t.Errorf("unexpected order: %v, %v, %v", samples[0].Date, samples[1].Date, samples[2].Date)
	}
}

func TestRecentWeightsTieBrokenByInsertionOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	first := &models.WeightSample{Date: "2026-08-31", Weight: 57.5}
	second := &models.WeightSample{Date: "2026-08-31", Weight: 57.9}
	if err := repo.InsertWeight(first); err != nil {
		t.Fatalf("InsertWeight() error: %v", err)
	}
	if err := repo.InsertWeight(second); err != nil {
		t.Fatalf("InsertWeight() error: %v", err)
	}

	samples, err := repo.RecentWeights(2)
	if err != nil {
		t.Fatalf("RecentWeights() error: %v", err)
	}
	if samples[0].ID != second.ID {
		t.Errorf("tie on date not broken by insertion order: got id %d first", samples[0].ID)
	}
}
