package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// Notifier tells an employee about a schedule created for them
type Notifier interface {
	NotifyScheduled(ctx context.Context, employee model.Employee, req model.ManpowerRequest, schedule model.Schedule) error
}

// NotificationFailure records a notification that could not be delivered
type NotificationFailure struct {
	EmployeeID int64
	ScheduleID string
	Err        error
}

// FulfillResult contains the schedules created by a fulfilment
type FulfillResult struct {
	Request   *model.ManpowerRequest
	Schedules []model.Schedule

	// NotificationFailures lists employees who could not be notified.
	// The fulfilment itself is committed regardless.
	NotificationFailures []NotificationFailure
}

// ScheduleIDs returns the IDs of the created schedules
func (r *FulfillResult) ScheduleIDs() []string {
	ids := make([]string, len(r.Schedules))
	for i, s := range r.Schedules {
		ids[i] = s.ID
	}
	return ids
}

// Fulfill assigns the confirmed employees to a manpower request as a single
// atomic unit of work. Every employee is re-validated inside the unit of work;
// if any of them is no longer schedulable nothing is written and a
// *model.ConflictError naming the employee and date is returned.
//
// notifier may be nil, in which case no notifications are sent. Notifications
// go out after the commit and the call waits for them, so callers that must
// answer quickly pass a NotificationQueue.
func Fulfill(
	ctx context.Context,
	txr db.Transactor,
	notifier Notifier,
	logger *zap.Logger,
	requestID int64,
	employeeIDs []int64,
) (*FulfillResult, error) {
	logger.Debug("Fulfilling request",
		zap.Int64("request_id", requestID),
		zap.Int64s("employee_ids", employeeIDs))

	if err := validateEmployeeIDs(employeeIDs); err != nil {
		return nil, err
	}

	// Lock employees in a consistent order so concurrent fulfilments over
	// overlapping sets cannot deadlock
	ordered := slices.Clone(employeeIDs)
	slices.Sort(ordered)

	var (
		req       *model.ManpowerRequest
		schedules []model.Schedule
		employees []model.Employee
	)

	err := txr.WithinTx(ctx, func(tx db.Tx) error {
		var err error
		req, err = tx.LockRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return model.NewValidationError("request_id", "manpower request %d does not exist", requestID)
			}
			return fmt.Errorf("failed to lock request %d: %w", requestID, err)
		}

		switch req.Status {
		case model.RequestStatusFulfilled:
			return &model.AlreadyFulfilledError{RequestID: req.ID}
		case model.RequestStatusPending:
		default:
			return &model.InvalidTransitionError{
				Entity: "manpower request",
				ID:     fmt.Sprint(req.ID),
				From:   string(req.Status),
				To:     string(model.RequestStatusFulfilled),
			}
		}

		if len(ordered) != req.RequestedAmount {
			logger.Warn("Confirmed employee count differs from requested headcount",
				zap.Int64("request_id", req.ID),
				zap.Int("requested", req.RequestedAmount),
				zap.Int("confirmed", len(ordered)))
		}

		date := model.DateOf(req.Date)

		for _, id := range ordered {
			emp, err := tx.LockEmployee(ctx, id)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return model.NewValidationError("employee_ids", "employee %d does not exist", id)
				}
				return fmt.Errorf("failed to lock employee %d: %w", id, err)
			}

			if reason := unschedulableReason(emp); reason != "" {
				return &model.ConflictError{EmployeeID: id, Date: date, Reason: reason}
			}

			onLeave, err := tx.ApprovedPermitCoversDate(ctx, id, date)
			if err != nil {
				return fmt.Errorf("failed to check permits for employee %d: %w", id, err)
			}
			if onLeave {
				return &model.ConflictError{EmployeeID: id, Date: date, Reason: "employee has approved leave on this date"}
			}

			exists, err := tx.ScheduleExistsOnDate(ctx, id, date)
			if err != nil {
				return fmt.Errorf("failed to check schedules for employee %d: %w", id, err)
			}
			if exists {
				return &model.ConflictError{EmployeeID: id, Date: date, Reason: "already scheduled on this date"}
			}

			employees = append(employees, *emp)
		}

		for _, emp := range employees {
			schedule := model.Schedule{
				ID:         uuid.New().String(),
				EmployeeID: emp.ID,
				RequestID:  req.ID,
				Date:       date,
				Status:     model.ScheduleStatusPending,
			}
			if err := tx.InsertSchedule(ctx, &schedule); err != nil {
				return fmt.Errorf("failed to insert schedule for employee %d: %w", emp.ID, err)
			}
			if err := tx.UpdateEmployeeStatus(ctx, emp.ID, model.EmployeeStatusAssigned, false); err != nil {
				return fmt.Errorf("failed to update status of employee %d: %w", emp.ID, err)
			}
			schedules = append(schedules, schedule)
		}

		if err := tx.UpdateRequestStatus(ctx, req.ID, model.RequestStatusFulfilled); err != nil {
			return fmt.Errorf("failed to mark request %d fulfilled: %w", req.ID, err)
		}
		req.Status = model.RequestStatusFulfilled

		return nil
	})
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			logger.Info("Fulfilment aborted by conflict",
				zap.Int64("request_id", requestID),
				zap.Int64("employee_id", conflict.EmployeeID),
				zap.String("reason", conflict.Reason))
		}
		return nil, err
	}

	logger.Info("Request fulfilled",
		zap.Int64("request_id", req.ID),
		zap.Int("schedules", len(schedules)))

	result := &FulfillResult{
		Request:   req,
		Schedules: schedules,
	}

	if notifier == nil {
		return result, nil
	}

	for i, schedule := range schedules {
		if err := notifier.NotifyScheduled(ctx, employees[i], *req, schedule); err != nil {
			logger.Warn("Failed to notify employee of schedule",
				zap.Int64("employee_id", schedule.EmployeeID),
				zap.String("schedule_id", schedule.ID),
				zap.Error(err))
			result.NotificationFailures = append(result.NotificationFailures, NotificationFailure{
				EmployeeID: schedule.EmployeeID,
				ScheduleID: schedule.ID,
				Err:        err,
			})
		}
	}

	return result, nil
}

// validateEmployeeIDs checks the confirmed list is non-empty, positive and free of duplicates
func validateEmployeeIDs(employeeIDs []int64) error {
	if len(employeeIDs) == 0 {
		return model.NewValidationError("employee_ids", "at least one employee is required")
	}

	seen := make(map[int64]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		if id <= 0 {
			return model.NewValidationError("employee_ids", "invalid employee id %d", id)
		}
		if seen[id] {
			return model.NewValidationError("employee_ids", "employee %d listed more than once", id)
		}
		seen[id] = true
	}

	return nil
}

// unschedulableReason returns why an employee cannot take a new schedule, or "" if they can
func unschedulableReason(emp *model.Employee) string {
	switch {
	case emp.Status == model.EmployeeStatusDeactivated:
		return "employee is deactivated"
	case emp.OnLeave:
		return "employee is on leave"
	case emp.Status != model.EmployeeStatusAvailable:
		return fmt.Sprintf("employee status is %s", emp.Status)
	}
	return ""
}
