package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/scheduling"
)

// RankCandidatesStore defines the database operations needed for ranking
type RankCandidatesStore interface {
	GetRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error)
	ListActiveEmployees(ctx context.Context) ([]model.Employee, error)
	GetSchedulesOnDate(ctx context.Context, date time.Time) ([]model.Schedule, error)
	GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error)
	CountSchedulesInWindow(ctx context.Context, employeeID int64, from, to time.Time) (int, error)
	GetScheduleHours(ctx context.Context, employeeID int64) ([]model.ScheduleHours, error)
}

// MetricsProvider looks up the external ranking metrics for a set of employees
type MetricsProvider interface {
	GetMetrics(ctx context.Context, employeeIDs []int64) (map[int64]model.EmployeeMetrics, error)
}

// RankResult contains the ranked candidates and the suggested selection for a request
type RankResult struct {
	Request    *model.ManpowerRequest
	Candidates []scheduling.Candidate
	Selection  scheduling.Selection
	Warnings   []scheduling.DataIntegrityWarning
}

// RankCandidates computes the ordered candidate list for a manpower request.
// referenceDate anchors the trailing weekly workload window.
func RankCandidates(
	ctx context.Context,
	store RankCandidatesStore,
	metrics MetricsProvider,
	logger *zap.Logger,
	requestID int64,
	referenceDate time.Time,
) (*RankResult, error) {
	logger.Debug("Ranking candidates",
		zap.Int64("request_id", requestID),
		zap.String("reference_date", referenceDate.Format(model.DateLayout)))

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request %d: %w", requestID, err)
	}
	if req.Status == model.RequestStatusFulfilled {
		logger.Info("Request already fulfilled, current assignees will rank first", zap.Int64("request_id", requestID))
	}

	date := model.DateOf(req.Date)

	employees, err := store.ListActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	schedules, err := store.GetSchedulesOnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules on %s: %w", date.Format(model.DateLayout), err)
	}

	permits, err := store.GetApprovedPermitsCovering(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved permits: %w", err)
	}

	pool := scheduling.FilterEligible(scheduling.FilterInput{
		Request:         *req,
		Employees:       employees,
		ScheduledOnDate: scheduling.ScheduledOnDate(schedules, date),
		OnApprovedLeave: scheduling.OnApprovedLeave(permits, date),
	})

	logger.Debug("Eligibility filter applied",
		zap.Int("employees", len(employees)),
		zap.Int("primary", len(pool.Primary)),
		zap.Int("overflow", len(pool.Overflow)))

	ids := make([]int64, 0, pool.Size())
	for _, emp := range pool.Primary {
		ids = append(ids, emp.ID)
	}
	for _, emp := range pool.Overflow {
		ids = append(ids, emp.ID)
	}

	employeeMetrics := map[int64]model.EmployeeMetrics{}
	if len(ids) > 0 {
		employeeMetrics, err = metrics.GetMetrics(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch employee metrics: %w", err)
		}
	}

	from, to := scheduling.WeeklyWindow(referenceDate)

	candidates := make([]scheduling.Candidate, 0, pool.Size())
	var warnings []scheduling.DataIntegrityWarning

	score := func(emp model.Employee, p scheduling.Pool) error {
		weeklyCount, err := store.CountSchedulesInWindow(ctx, emp.ID, from, to)
		if err != nil {
			return fmt.Errorf("failed to count schedules for employee %d: %w", emp.ID, err)
		}
		history, err := store.GetScheduleHours(ctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch schedule hours for employee %d: %w", emp.ID, err)
		}

		candidate, w := scheduling.ScoreCandidate(scheduling.ScoreInput{
			Employee:         emp,
			Pool:             p,
			AlreadyScheduled: pool.AlreadyScheduled[emp.ID],
			WeeklyCount:      weeklyCount,
			History:          history,
			Metrics:          employeeMetrics[emp.ID],
		})
		candidates = append(candidates, candidate)
		warnings = append(warnings, w...)
		return nil
	}

	for _, emp := range pool.Primary {
		if err := score(emp, scheduling.PoolPrimary); err != nil {
			return nil, err
		}
	}
	for _, emp := range pool.Overflow {
		if err := score(emp, scheduling.PoolOverflow); err != nil {
			return nil, err
		}
	}

	for _, w := range warnings {
		logger.Warn("Data integrity warning while scoring",
			zap.Int64("employee_id", w.EmployeeID),
			zap.String("schedule_id", w.ScheduleID),
			zap.Int64("request_id", w.RequestID),
			zap.String("description", w.Description))
	}

	scheduling.RankCandidates(*req, candidates)
	selection := scheduling.Select(*req, candidates)

	for _, s := range selection.Shortfalls {
		logger.Warn("Selection shortfall",
			zap.Int64("request_id", req.ID),
			zap.String("kind", string(s.Kind)),
			zap.Int("required", s.Required),
			zap.Int("selected", s.Selected))
	}

	logger.Info("Candidates ranked",
		zap.Int64("request_id", req.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selection.Selected)),
		zap.Bool("complete", selection.Complete()))

	return &RankResult{
		Request:    req,
		Candidates: candidates,
		Selection:  selection,
		Warnings:   warnings,
	}, nil
}
