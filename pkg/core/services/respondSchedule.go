package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// AcceptSchedule records an employee accepting a pending schedule
func AcceptSchedule(ctx context.Context, txr db.Transactor, logger *zap.Logger, scheduleID string, employeeID int64) (*model.Schedule, error) {
	return respondSchedule(ctx, txr, logger, scheduleID, employeeID, model.ScheduleStatusAccepted, "", time.Time{})
}

// RejectSchedule records an employee rejecting a pending schedule. A reason is
// required. An assigned employee becomes available again unless they still
// hold a pending or accepted schedule on or after referenceDate.
func RejectSchedule(
	ctx context.Context,
	txr db.Transactor,
	logger *zap.Logger,
	scheduleID string,
	employeeID int64,
	reason string,
	referenceDate time.Time,
) (*model.Schedule, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, model.NewValidationError("reason", "a reason is required to reject a schedule")
	}
	return respondSchedule(ctx, txr, logger, scheduleID, employeeID, model.ScheduleStatusRejected, reason, referenceDate)
}

func respondSchedule(
	ctx context.Context,
	txr db.Transactor,
	logger *zap.Logger,
	scheduleID string,
	employeeID int64,
	to model.ScheduleStatus,
	reason string,
	referenceDate time.Time,
) (*model.Schedule, error) {
	logger.Debug("Responding to schedule",
		zap.String("schedule_id", scheduleID),
		zap.Int64("employee_id", employeeID),
		zap.String("response", string(to)))

	var schedule *model.Schedule

	err := txr.WithinTx(ctx, func(tx db.Tx) error {
		var err error
		schedule, err = tx.LockSchedule(ctx, scheduleID)
		if err != nil {
			return fmt.Errorf("failed to lock schedule %s: %w", scheduleID, err)
		}

		if schedule.EmployeeID != employeeID {
			return model.NewValidationError("employee_id", "schedule %s does not belong to employee %d", scheduleID, employeeID)
		}

		// pending is the only non-terminal state
		if schedule.Status != model.ScheduleStatusPending {
			return &model.InvalidTransitionError{
				Entity: "schedule",
				ID:     scheduleID,
				From:   string(schedule.Status),
				To:     string(to),
			}
		}

		if err := tx.UpdateScheduleStatus(ctx, scheduleID, to, reason); err != nil {
			return fmt.Errorf("failed to update schedule %s: %w", scheduleID, err)
		}
		schedule.Status = to
		schedule.RejectionReason = reason

		if to != model.ScheduleStatusRejected {
			return nil
		}

		emp, err := tx.LockEmployee(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to lock employee %d: %w", employeeID, err)
		}
		if emp.Status != model.EmployeeStatusAssigned {
			return nil
		}

		stillAssigned, err := tx.ActiveScheduleExistsFrom(ctx, emp.ID, referenceDate)
		if err != nil {
			return fmt.Errorf("failed to check remaining schedules for employee %d: %w", emp.ID, err)
		}
		if stillAssigned {
			logger.Debug("Employee keeps assigned status",
				zap.Int64("employee_id", emp.ID),
				zap.String("from", model.DateOf(referenceDate).Format(model.DateLayout)))
			return nil
		}
		if err := tx.UpdateEmployeeStatus(ctx, emp.ID, model.EmployeeStatusAvailable, emp.OnLeave); err != nil {
			return fmt.Errorf("failed to release employee %d: %w", emp.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Schedule response recorded",
		zap.String("schedule_id", schedule.ID),
		zap.Int64("employee_id", schedule.EmployeeID),
		zap.String("status", string(schedule.Status)))

	return schedule, nil
}
