// Package services orchestrates the health-tracking flows: photo analysis,
// record saves with validation, and the derived calendar/chart views.
package services

import (
	"bytes"
	"context"
	"sync"

	"github.com/hxlyu/safegain/internal/clock"
	"github.com/hxlyu/safegain/internal/db"
	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/ingest"
	"github.com/hxlyu/safegain/internal/logging"
	"github.com/hxlyu/safegain/internal/media"
	"github.com/hxlyu/safegain/internal/models"
	"github.com/hxlyu/safegain/internal/settings"
	"github.com/hxlyu/safegain/internal/uuid"
	"github.com/hxlyu/safegain/internal/views"
)

// Default food names when the user provides none. The analyzed marker is
// used whenever a photo analysis is attached to the save.
const (
	FoodNameAnalyzed = "AI分析餐食"
	FoodNameManual   = "手动记录"
)

// DefaultWeightSeriesLen is the trend window when the caller passes n <= 0.
const DefaultWeightSeriesLen = 7

// visionAnalyzer is the remote inference boundary, satisfied by
// ingest.Client and by test doubles.
type visionAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageJPEG []byte) (*models.AnalysisResult, error)
}

// PendingAnalysis is one in-flight photo analysis. Each analyze call gets
// its own value with its own id, so overlapping analyses never clobber each
// other; the caller attaches it to the eventual meal save.
type PendingAnalysis struct {
	ID     string
	Result *models.AnalysisResult
	Image  []byte // compressed JPEG, persisted with the meal
}

// Tracker coordinates the record store, the vision client and the view
// builders.
type Tracker struct {
	repo  *db.Repository
	clock *clock.Normalizer

	vision visionAnalyzer

	// Event callbacks for the embedding UI
	onRiskAlert      func(riskCheck string)
	onRefluxReminder func()

	mu sync.RWMutex
}

// NewTracker creates a Tracker over the given repository. Vision analysis
// stays disabled until ConfigureVision is called.
func NewTracker(repo *db.Repository, normalizer *clock.Normalizer) *Tracker {
	if normalizer == nil {
		normalizer = clock.NewNormalizer()
	}
	return &Tracker{
		repo:  repo,
		clock: normalizer,
	}
}

// ConfigureVision sets up the vision client with the given configuration.
// A nil-equivalent config (no API key) disables analysis.
func (t *Tracker) ConfigureVision(config ingest.Config) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if config.APIKey == "" || config.EndpointID == "" {
		t.vision = nil
		logging.Info("vision analysis disabled")
		return
	}

	decoder := ingest.NewDecoder(nil)
	decoder.OnRiskAlert(func(riskCheck string) { t.fireRiskAlert(riskCheck) })
	t.vision = ingest.NewClient(config, decoder)

	logging.Info("vision analysis configured", map[string]interface{}{
		"endpoint_id": config.EndpointID,
	})
}

// ConfigureVisionFromSettings loads stored credentials and configures the
// vision client with them.
func (t *Tracker) ConfigureVisionFromSettings(store *settings.Store) error {
	config, err := store.Load()
	if err != nil {
		return err
	}
	t.ConfigureVision(config)
	return nil
}

// IsVisionConfigured reports whether photo analysis is available.
func (t *Tracker) IsVisionConfigured() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.vision != nil
}

// OnRiskAlert registers the advisory risk-alert callback. The alert never
// blocks saving.
func (t *Tracker) OnRiskAlert(fn func(riskCheck string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRiskAlert = fn
}

// OnRefluxReminder registers the callback fired after a reflux meal save.
func (t *Tracker) OnRefluxReminder(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRefluxReminder = fn
}

func (t *Tracker) fireRiskAlert(riskCheck string) {
	t.mu.RLock()
	fn := t.onRiskAlert
	t.mu.RUnlock()
	if fn != nil {
		fn(riskCheck)
	}
}

// AnalyzeMealImage compresses a meal photo, sends it for analysis and
// returns the pending result. Nothing is persisted; the caller attaches the
// returned value to SaveMeal.
func (t *Tracker) AnalyzeMealImage(ctx context.Context, photo []byte) (*PendingAnalysis, error) {
	t.mu.RLock()
	vision := t.vision
	t.mu.RUnlock()

	if vision == nil {
		return nil, apperrors.New(apperrors.ErrNotConfigured, "vision analysis not configured")
	}

	jpeg, err := media.Compress(bytes.NewReader(photo))
	if err != nil {
		return nil, err
	}

	result, err := vision.AnalyzeImage(ctx, jpeg)
	if err != nil {
		logging.Error("meal photo analysis failed", err)
		return nil, err
	}

	pending := &PendingAnalysis{
		ID:     uuid.New(),
		Result: result,
		Image:  jpeg,
	}
	logging.Info("meal photo analyzed", map[string]interface{}{
		"analysis_id": pending.ID,
		"food_name":   result.FoodName,
		"high_risk":   result.HighRisk,
	})
	return pending, nil
}

// MealInput holds the user-entered fields of a meal save.
type MealInput struct {
	Time     string // civil "YYYY-MM-DDTHH:MM"; empty means now
	Feeling  models.StomachFeeling
	FoodName string
	Notes    string
}

// SaveMeal validates and persists a meal record, folding in the pending
// analysis when one is attached. A reflux feeling fires the reflux-reminder
// callback after the save.
func (t *Tracker) SaveMeal(input MealInput, pending *PendingAnalysis) (*models.MealRecord, error) {
	if !input.Feeling.Valid() {
		return nil, apperrors.New(apperrors.ErrValidation, "stomach feeling is required")
	}

	timestamp, err := t.stamp(input.Time)
	if err != nil {
		return nil, err
	}

	record := &models.MealRecord{
		Timestamp:      timestamp,
		FoodName:       input.FoodName,
		StomachFeeling: input.Feeling,
		Notes:          input.Notes,
	}
	if pending != nil {
		record.Calories = pending.Result.Calories
		record.RiskCheck = pending.Result.RiskCheck
		record.Advice = pending.Result.Advice
		record.ImageBlob = pending.Image
		if record.Notes == "" {
			record.Notes = pending.Result.Advice
		}
		if record.FoodName == "" {
			record.FoodName = FoodNameAnalyzed
		}
	}
	if record.FoodName == "" {
		record.FoodName = FoodNameManual
	}

	if err := t.repo.InsertMeal(record); err != nil {
		return nil, err
	}
	logging.Info("meal saved", map[string]interface{}{
		"id":      record.ID,
		"feeling": string(record.StomachFeeling),
	})

	if record.StomachFeeling == models.FeelingReflux {
		t.mu.RLock()
		fn := t.onRefluxReminder
		t.mu.RUnlock()
		if fn != nil {
			fn()
		}
	}
	return record, nil
}

// WorkoutInput holds the user-entered fields of a workout save.
type WorkoutInput struct {
	Time         string // civil "YYYY-MM-DDTHH:MM"; empty means now
	ExerciseType string
	Sets         int
	Reps         int
	Weight       float64
	Notes        string
}

// SaveWorkout validates and persists a workout record.
func (t *Tracker) SaveWorkout(input WorkoutInput) (*models.WorkoutRecord, error) {
	if input.ExerciseType == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "exercise type is required")
	}

	timestamp, err := t.stamp(input.Time)
	if err != nil {
		return nil, err
	}

	record := &models.WorkoutRecord{
		Timestamp:    timestamp,
		ExerciseType: input.ExerciseType,
		Sets:         input.Sets,
		Reps:         input.Reps,
		Weight:       input.Weight,
		Notes:        input.Notes,
	}
	if err := t.repo.InsertWorkout(record); err != nil {
		return nil, err
	}
	logging.Info("workout saved", map[string]interface{}{
		"id":   record.ID,
		"type": record.ExerciseType,
	})
	return record, nil
}

// WeightInput holds the user-entered fields of a weight save.
type WeightInput struct {
	Date   string // civil "YYYY-MM-DD"; empty means today
	Weight float64
}

// SaveWeight validates and persists a weight sample. Multiple samples per
// day are allowed.
func (t *Tracker) SaveWeight(input WeightInput) (*models.WeightSample, error) {
	if input.Weight <= 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "weight must be positive")
	}

	date := input.Date
	if date == "" {
		date, _ = t.clock.NowCivil()
	} else if _, err := t.clock.ParseCivilDate(date); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid date", err)
	}

	sample := &models.WeightSample{Date: date, Weight: input.Weight}
	if err := t.repo.InsertWeight(sample); err != nil {
		return nil, err
	}
	logging.Info("weight saved", map[string]interface{}{
		"id":   sample.ID,
		"date": sample.Date,
	})
	return sample, nil
}

// MonthCalendar queries the current civil month's workouts and derives the
// calendar day list.
func (t *Tracker) MonthCalendar() ([]views.CalendarDay, error) {
	workouts, err := t.repo.WorkoutsSince(t.clock.MonthStart())
	if err != nil {
		return nil, err
	}
	return views.BuildMonthCalendar(t.clock.Now(), workouts), nil
}

// WeightTrend is the chart-ready weight series with its Y-axis range.
type WeightTrend struct {
	Points []views.Point
	MinY   float64
	MaxY   float64
}

// WeightSeries returns the last n weight samples as a chart series in
// ascending date order. n <= 0 selects the default window.
func (t *Tracker) WeightSeries(n int) (*WeightTrend, error) {
	if n <= 0 {
		n = DefaultWeightSeriesLen
	}

	recent, err := t.repo.RecentWeights(n)
	if err != nil {
		return nil, err
	}

	points := views.BuildWeightSeries(views.Ascending(recent), n)
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	minY, maxY := views.WeightAxis(values)

	return &WeightTrend{Points: points, MinY: minY, MaxY: maxY}, nil
}

// StomachDistribution tallies the full meal history by stomach feeling.
func (t *Tracker) StomachDistribution() (views.Distribution, error) {
	meals, err := t.repo.ListMeals()
	if err != nil {
		return views.Distribution{}, err
	}
	return views.TallyStomach(meals), nil
}

// stamp converts an optional civil datetime into the storage timestamp.
func (t *Tracker) stamp(civil string) (string, error) {
	if civil == "" {
		_, civilNow := t.clock.NowCivil()
		civil = civilNow
	}
	timestamp, err := t.clock.Stamp(civil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrValidation, "invalid time", err)
	}
	return timestamp, nil
}
