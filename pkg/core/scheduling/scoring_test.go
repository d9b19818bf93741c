package scheduling

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/manpower/pkg/core/model"
)

func TestRatingForWeeklyCount(t *testing.T) {
	tests := []struct {
		name        string
		weeklyCount int
		expected    int
	}{
		{"idle", 0, 0},
		{"one schedule", 1, 1},
		{"two schedules", 2, 2},
		{"three schedules", 3, 3},
		{"four schedules", 4, 4},
		{"five schedules", 5, 5},
		{"six schedules falls back to 0", 6, 0},
		{"seven schedules falls back to 0", 7, 0},
		{"very busy falls back to 0", 42, 0},
		{"negative count treated as 0", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RatingForWeeklyCount(tt.weeklyCount))
		})
	}
}

func TestRatingForWeeklyCount_OverworkedMatchesIdle(t *testing.T) {
	idle := RatingForWeeklyCount(0)
	for count := 6; count <= 20; count++ {
		assert.Equal(t, idle, RatingForWeeklyCount(count), "weekly count %d", count)
	}
}

func TestWorkingDayWeight(t *testing.T) {
	expected := []int{165, 135, 105, 75, 45, 15}
	for rating, weight := range expected {
		assert.Equal(t, weight, WorkingDayWeight(rating), "rating %d", rating)
	}

	assert.Equal(t, 165, WorkingDayWeight(6), "out of range rating uses rating 0")
	assert.Equal(t, 165, WorkingDayWeight(-3), "out of range rating uses rating 0")
}

func TestWorkingDayWeight_StrictlyDecreasing(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		assert.Greater(t, WorkingDayWeight(rating-1), WorkingDayWeight(rating),
			"weight(%d) should be greater than weight(%d)", rating-1, rating)
	}
}

func TestWeeklyWindow(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	from, to := WeeklyWindow(ref)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), to)
}

func TestScoreCandidate(t *testing.T) {
	eight := decimal.NewFromInt(8)
	sevenHalf := decimal.RequireFromString("7.5")

	input := ScoreInput{
		Employee:    model.Employee{ID: 7, Type: model.EmployeeTypeDaily},
		Pool:        PoolPrimary,
		WeeklyCount: 2,
		History: []model.ScheduleHours{
			{ScheduleID: "s-1", RequestID: 1, Hours: &eight},
			{ScheduleID: "s-2", RequestID: 2, Hours: &sevenHalf},
		},
		Metrics: model.EmployeeMetrics{
			WorkloadPoints:  decimal.NewFromInt(10),
			BlindTestPoints: decimal.NewFromInt(20),
			AverageRating:   decimal.RequireFromString("4.5"),
		},
	}

	candidate, warnings := ScoreCandidate(input)

	assert.Empty(t, warnings)
	assert.Equal(t, int64(7), candidate.Employee.ID)
	assert.Equal(t, 2, candidate.Rating)
	assert.Equal(t, 105, candidate.WorkingDayWeight)
	assert.True(t, candidate.TotalAssignedHours.Equal(decimal.RequireFromString("15.5")))
	assert.True(t, candidate.TotalScore.Equal(decimal.RequireFromString("34.5")))
	assert.True(t, candidate.InSameSubSection())
}

func TestScoreCandidate_MissingShiftHoursIsZeroWithWarning(t *testing.T) {
	eight := decimal.NewFromInt(8)

	input := ScoreInput{
		Employee: model.Employee{ID: 3},
		History: []model.ScheduleHours{
			{ScheduleID: "s-1", RequestID: 1, Hours: &eight},
			{ScheduleID: "s-orphan", RequestID: 99, Hours: nil},
		},
	}

	candidate, warnings := ScoreCandidate(input)

	require.Len(t, warnings, 1)
	assert.Equal(t, "s-orphan", warnings[0].ScheduleID)
	assert.Equal(t, int64(99), warnings[0].RequestID)
	assert.Equal(t, int64(3), warnings[0].EmployeeID)
	assert.True(t, candidate.TotalAssignedHours.Equal(eight))
}

func TestScoreCandidate_FiveThisWeekVersusNone(t *testing.T) {
	busy, _ := ScoreCandidate(ScoreInput{Employee: model.Employee{ID: 1}, WeeklyCount: 5})
	idle, _ := ScoreCandidate(ScoreInput{Employee: model.Employee{ID: 2}, WeeklyCount: 0})

	assert.Equal(t, 5, busy.Rating)
	assert.Equal(t, 15, busy.WorkingDayWeight)
	assert.Equal(t, 0, idle.Rating)
	assert.Equal(t, 165, idle.WorkingDayWeight)
}

func TestTotalScore_ZeroMetrics(t *testing.T) {
	assert.True(t, TotalScore(model.EmployeeMetrics{}).IsZero())
}
