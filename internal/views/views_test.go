// Package views tests for derived calendar, chart and tally views.
package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxlyu/safegain/internal/clock"
	"github.com/hxlyu/safegain/internal/models"
)

// workoutOn builds a stored workout on the given civil day.
func workoutOn(year int, month time.Month, day int) *models.WorkoutRecord {
	at := time.Date(year, month, day, 10, 0, 0, 0, clock.Canonical)
	return &models.WorkoutRecord{
		Timestamp:    clock.ToStorage(at),
		ExerciseType: "俯卧撑",
	}
}

// =====================================================
// Month Calendar
// =====================================================

// TestBuildMonthCalendarMarkers verifies markers for a 30-day month with
// duplicate same-day workouts.
func TestBuildMonthCalendarMarkers(t *testing.T) {
	now := time.Date(2026, time.June, 15, 9, 0, 0, 0, clock.Canonical)
	workouts := []*models.WorkoutRecord{
		workoutOn(2026, time.June, 3),
		workoutOn(2026, time.June, 3), // duplicate collapses
		workoutOn(2026, time.June, 10),
	}

	days := BuildMonthCalendar(now, workouts)
	require.Len(t, days, 30)

	for _, d := range days {
		want := d.Day == 3 || d.Day == 10
		assert.Equal(t, want, d.HasWorkout, "day %d", d.Day)
		assert.Equal(t, d.Day == 15, d.IsToday, "day %d", d.Day)
	}
}

// TestBuildMonthCalendarLengths verifies month-length handling including
// leap-year February.
func TestBuildMonthCalendarLengths(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"january", time.Date(2026, time.January, 1, 0, 0, 0, 0, clock.Canonical), 31},
		{"february", time.Date(2026, time.February, 10, 0, 0, 0, 0, clock.Canonical), 28},
		{"leap february", time.Date(2028, time.February, 10, 0, 0, 0, 0, clock.Canonical), 29},
		{"april", time.Date(2026, time.April, 30, 0, 0, 0, 0, clock.Canonical), 30},
		{"december", time.Date(2026, time.December, 31, 0, 0, 0, 0, clock.Canonical), 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := BuildMonthCalendar(tt.now, nil)
			require.Len(t, days, tt.want)
			assert.Equal(t, 1, days[0].Day)
			assert.Equal(t, tt.want, days[len(days)-1].Day)
		})
	}
}

// TestBuildMonthCalendarIgnoresOtherMonths verifies a stray other-month
// record never produces a marker.
func TestBuildMonthCalendarIgnoresOtherMonths(t *testing.T) {
	now := time.Date(2026, time.June, 15, 9, 0, 0, 0, clock.Canonical)
	workouts := []*models.WorkoutRecord{
		workoutOn(2026, time.July, 3),
		{Timestamp: "corrupted", ExerciseType: "深蹲"},
	}

	for _, d := range BuildMonthCalendar(now, workouts) {
		assert.False(t, d.HasWorkout, "day %d", d.Day)
	}
}

// TestBuildMonthCalendarIdempotent verifies recomputation is stable.
func TestBuildMonthCalendarIdempotent(t *testing.T) {
	now := time.Date(2026, time.June, 15, 9, 0, 0, 0, clock.Canonical)
	workouts := []*models.WorkoutRecord{workoutOn(2026, time.June, 3)}

	assert.Equal(t, BuildMonthCalendar(now, workouts), BuildMonthCalendar(now, workouts))
}

// =====================================================
// Weight Series
// =====================================================

func sampleSeries(values []float64) []*models.WeightSample {
	samples := make([]*models.WeightSample, len(values))
	for i, v := range values {
		samples[i] = &models.WeightSample{
			ID:     int64(i + 1),
			Date:   time.Date(2026, time.August, i+1, 0, 0, 0, 0, time.UTC).Format(clock.DateLayout),
			Weight: v,
		}
	}
	return samples
}

// TestBuildWeightSeriesDropsEarliest verifies the last-n window in
// ascending date order.
func TestBuildWeightSeriesDropsEarliest(t *testing.T) {
	samples := sampleSeries([]float64{70, 71, 69, 68, 67, 66, 65, 64})

	points := BuildWeightSeries(samples, 7)
	require.Len(t, points, 7)
	assert.Equal(t, float64(71), points[0].Value, "earliest sample (70) dropped")
	assert.Equal(t, float64(64), points[6].Value)
	assert.Equal(t, "08-02", points[0].Label)
	assert.Equal(t, "08-08", points[6].Label)
}

// TestBuildWeightSeriesShortHistory verifies n larger than history.
func TestBuildWeightSeriesShortHistory(t *testing.T) {
	points := BuildWeightSeries(sampleSeries([]float64{57.5, 57.8}), 7)
	require.Len(t, points, 2)
	assert.Equal(t, 57.5, points[0].Value)
}

// TestAscendingReversesRecentFetch verifies the descending-fetch-then-
// reverse pipeline yields chronological order.
func TestAscendingReversesRecentFetch(t *testing.T) {
	recent := []*models.WeightSample{
		{ID: 3, Date: "2026-08-28", Weight: 58.0},
		{ID: 2, Date: "2026-08-27", Weight: 57.8},
		{ID: 1, Date: "2026-08-26", Weight: 57.5},
	}

	asc := Ascending(recent)
	assert.Equal(t, "2026-08-26", asc[0].Date)
	assert.Equal(t, "2026-08-28", asc[2].Date)
	// Input untouched.
	assert.Equal(t, "2026-08-28", recent[0].Date)
}

// TestWeightAxis verifies the exact range constants.
func TestWeightAxis(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantMin float64
		wantMax float64
	}{
		{"no data defaults", nil, 40, 80},
		{"typical band", []float64{65, 70}, 64, 76},
		{"flat series", []float64{57.5, 57.5}, 57.5, 62.5},
		{"floor clamps at 40", []float64{41, 50}, 40, 56.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minY, maxY := WeightAxis(tt.values)
			assert.InDelta(t, tt.wantMin, minY, 1e-9)
			assert.InDelta(t, tt.wantMax, maxY, 1e-9)
		})
	}
}

// =====================================================
// Stomach-Feeling Tally
// =====================================================

// TestTallyStomach verifies counting with a malformed legacy entry.
func TestTallyStomach(t *testing.T) {
	meals := []*models.MealRecord{
		{StomachFeeling: models.FeelingComfortable},
		{StomachFeeling: models.FeelingReflux},
		{StomachFeeling: models.FeelingReflux},
		{StomachFeeling: models.StomachFeeling("unknown")},
	}

	d := TallyStomach(meals)
	assert.Equal(t, Distribution{Comfortable: 1, Bloating: 0, Reflux: 2}, d)
}

// TestTallyStomachEmpty verifies the zero distribution.
func TestTallyStomachEmpty(t *testing.T) {
	assert.Equal(t, Distribution{}, TallyStomach(nil))
}

// TestTallyStomachIdempotent verifies the full recompute is stable.
func TestTallyStomachIdempotent(t *testing.T) {
	meals := []*models.MealRecord{
		{StomachFeeling: models.FeelingBloating},
		{StomachFeeling: models.FeelingComfortable},
	}
	assert.Equal(t, TallyStomach(meals), TallyStomach(meals))
}
