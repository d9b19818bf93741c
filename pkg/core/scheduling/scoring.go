package scheduling

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// WeeklyWindowDays is the length of the trailing workload window, inclusive of
// the reference date
const WeeklyWindowDays = 7

// ratingByWeeklyCount maps a weekly schedule count to its rating bucket.
// Counts outside the table (more than 5 schedules in a week) map to rating 0,
// the same bucket as an idle employee. This mirrors the behaviour of the
// system being replaced and is kept deliberately; see DESIGN.md.
var ratingByWeeklyCount = [...]int{
	0: 0,
	1: 1,
	2: 2,
	3: 3,
	4: 4,
	5: 5,
}

// ratingOutOfRange is the rating assigned to weekly counts above the table
const ratingOutOfRange = 0

// workingDayWeightByRating maps a rating to the working-day weight.
// Higher recent workload means a lower weight and a lower priority.
var workingDayWeightByRating = [...]int{
	0: 165,
	1: 135,
	2: 105,
	3: 75,
	4: 45,
	5: 15,
}

// RatingForWeeklyCount returns the rating bucket for a weekly schedule count
func RatingForWeeklyCount(weeklyCount int) int {
	if weeklyCount < 0 || weeklyCount >= len(ratingByWeeklyCount) {
		return ratingOutOfRange
	}
	return ratingByWeeklyCount[weeklyCount]
}

// WorkingDayWeight returns the working-day weight for a rating.
// Ratings outside 0-5 are treated as rating 0.
func WorkingDayWeight(rating int) int {
	if rating < 0 || rating >= len(workingDayWeightByRating) {
		return workingDayWeightByRating[0]
	}
	return workingDayWeightByRating[rating]
}

// WeeklyWindow returns the inclusive [from, to] day range used for weekly counts
func WeeklyWindow(referenceDate time.Time) (from, to time.Time) {
	to = model.DateOf(referenceDate)
	from = to.AddDate(0, 0, -(WeeklyWindowDays - 1))
	return from, to
}

// ScoreInput contains the per-employee figures needed to score one candidate
type ScoreInput struct {
	Employee         model.Employee
	Pool             Pool
	AlreadyScheduled bool

	// WeeklyCount is the number of schedules (any status) in WeeklyWindow
	WeeklyCount int

	// History is every schedule the employee has ever held, with shift hours
	History []model.ScheduleHours

	Metrics model.EmployeeMetrics
}

// ScoreCandidate computes the derived ranking figures for one employee.
// Missing shift/request links contribute zero hours and are reported as warnings.
func ScoreCandidate(input ScoreInput) (Candidate, []DataIntegrityWarning) {
	rating := RatingForWeeklyCount(input.WeeklyCount)

	totalHours := decimal.Zero
	var warnings []DataIntegrityWarning
	for _, h := range input.History {
		if h.Hours == nil {
			warnings = append(warnings, DataIntegrityWarning{
				EmployeeID:  input.Employee.ID,
				ScheduleID:  h.ScheduleID,
				RequestID:   h.RequestID,
				Description: fmt.Sprintf("schedule %s has no linked shift hours, counted as zero", h.ScheduleID),
			})
			continue
		}
		totalHours = totalHours.Add(*h.Hours)
	}

	return Candidate{
		Employee:           input.Employee,
		Pool:               input.Pool,
		AlreadyScheduled:   input.AlreadyScheduled,
		WeeklyCount:        input.WeeklyCount,
		Rating:             rating,
		WorkingDayWeight:   WorkingDayWeight(rating),
		TotalAssignedHours: totalHours,
		Metrics:            input.Metrics,
		TotalScore:         TotalScore(input.Metrics),
	}, warnings
}

// TotalScore sums the three external metrics without weighting
func TotalScore(m model.EmployeeMetrics) decimal.Decimal {
	return m.WorkloadPoints.Add(m.BlindTestPoints).Add(m.AverageRating)
}
