// Package db provides append-only repository operations for SafeGain records.
package db

import (
	"database/sql"
	"fmt"
	"sync"

	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/models"
)

// Repository provides the record-store operations for the three collections.
// All writes are single-record appends with store-assigned ids; records are
// never updated or deleted. A prepared statement cache avoids repeated SQL
// parsing on the hot query paths.
type Repository struct {
	db *sql.DB

	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from the cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another caller already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// MealRecord Operations
// =====================================================

// InsertMeal appends a meal record and assigns its store id.
func (r *Repository) InsertMeal(m *models.MealRecord) error {
	query := `
	INSERT INTO meals (timestamp, food_name, calories, risk_check, advice, stomach_feeling, notes, image_blob)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, m.Timestamp, m.FoodName, m.Calories,
		m.RiskCheck, m.Advice, m.StomachFeeling, m.Notes, m.ImageBlob)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to insert meal", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to read meal id", err)
	}
	m.ID = id
	return nil
}

// ListMeals returns the full meal history in insertion order.
func (r *Repository) ListMeals() ([]*models.MealRecord, error) {
	query := `
	SELECT id, timestamp, food_name, calories, risk_check, advice, stomach_feeling, notes
	FROM meals ORDER BY id
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query meals", err)
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query meals", err)
	}
	defer rows.Close()

	return scanMeals(rows)
}

// MealsSince returns meals whose timestamp is >= lowerBound, in insertion
// order. lowerBound is an RFC3339 UTC string, comparable by byte order.
func (r *Repository) MealsSince(lowerBound string) ([]*models.MealRecord, error) {
	query := `
	SELECT id, timestamp, food_name, calories, risk_check, advice, stomach_feeling, notes
	FROM meals WHERE timestamp >= ? ORDER BY id
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query meals", err)
	}

	rows, err := stmt.Query(lowerBound)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query meals", err)
	}
	defer rows.Close()

	return scanMeals(rows)
}

// MealImage loads the stored image payload for one meal. Kept separate from
// the list queries so history scans never drag blobs through memory.
func (r *Repository) MealImage(id int64) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRow(`SELECT image_blob FROM meals WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to load meal image", err)
	}
	return blob, nil
}

func scanMeals(rows *sql.Rows) ([]*models.MealRecord, error) {
	var meals []*models.MealRecord
	for rows.Next() {
		var m models.MealRecord
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.FoodName, &m.Calories,
			&m.RiskCheck, &m.Advice, &m.StomachFeeling, &m.Notes); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to scan meal", err)
		}
		meals = append(meals, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to iterate meals", err)
	}
	return meals, nil
}

// =====================================================
// WorkoutRecord Operations
// =====================================================

// InsertWorkout appends a workout record and assigns its store id.
func (r *Repository) InsertWorkout(w *models.WorkoutRecord) error {
	query := `
	INSERT INTO workouts (timestamp, exercise_type, sets, reps, weight, notes)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, w.Timestamp, w.ExerciseType, w.Sets, w.Reps, w.Weight, w.Notes)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to insert workout", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to read workout id", err)
	}
	w.ID = id
	return nil
}

// WorkoutsSince returns workouts whose timestamp is >= lowerBound, in
// insertion order.
func (r *Repository) WorkoutsSince(lowerBound string) ([]*models.WorkoutRecord, error) {
	query := `
	SELECT id, timestamp, exercise_type, sets, reps, weight, notes
	FROM workouts WHERE timestamp >= ? ORDER BY id
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query workouts", err)
	}

	rows, err := stmt.Query(lowerBound)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query workouts", err)
	}
	defer rows.Close()

	var workouts []*models.WorkoutRecord
	for rows.Next() {
		var w models.WorkoutRecord
		if err := rows.Scan(&w.ID, &w.Timestamp, &w.ExerciseType, &w.Sets,
			&w.Reps, &w.Weight, &w.Notes); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to scan workout", err)
		}
		workouts = append(workouts, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to iterate workouts", err)
	}
	return workouts, nil
}

// =====================================================
// WeightSample Operations
// =====================================================

// InsertWeight appends a weight sample and assigns its store id. Multiple
// samples on the same date are allowed.
func (r *Repository) InsertWeight(s *models.WeightSample) error {
	query := `INSERT INTO weights (date, weight) VALUES (?, ?)`
	result, err := r.db.Exec(query, s.Date, s.Weight)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to insert weight", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to read weight id", err)
	}
	s.ID = id
	return nil
}

// RecentWeights returns the most recent weight samples ordered by date
// descending, ties broken by insertion order (later insert first), capped
// at limit.
func (r *Repository) RecentWeights(limit int) ([]*models.WeightSample, error) {
	query := `
	SELECT id, date, weight
	FROM weights ORDER BY date DESC, id DESC LIMIT ?
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query weights", err)
	}

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to query weights", err)
	}
	defer rows.Close()

	var samples []*models.WeightSample
	for rows.Next() {
		var s models.WeightSample
		if err := rows.Scan(&s.ID, &s.Date, &s.Weight); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to scan weight", err)
		}
		samples = append(samples, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to iterate weights", err)
	}
	return samples, nil
}

// =====================================================
// Settings Operations
// =====================================================

// GetSetting reads a settings value by key. A missing key is returned as
// ("", false, nil) rather than an error.
func (r *Repository) GetSetting(key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return "", false, apperrors.Wrap(apperrors.ErrStorage, "failed to query setting", err)
	}

	var value string
	if err := stmt.QueryRow(key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(apperrors.ErrStorage, "failed to query setting", err)
	}
	return value, true, nil
}

// SetSetting upserts a settings value. Settings are the only mutable rows in
// the store.
func (r *Repository) SetSetting(key, value string) error {
	query := `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to save setting", err)
	}
	return nil
}
