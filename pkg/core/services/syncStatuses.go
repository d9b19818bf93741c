package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/scheduling"
)

// SyncStatusesStore defines the database operations needed by the status sweep
type SyncStatusesStore interface {
	GetEmployeesByStatus(ctx context.Context, status model.EmployeeStatus) ([]model.Employee, error)
	GetEmployeesWithActiveSchedulesFrom(ctx context.Context, date time.Time) (map[int64]bool, error)
	GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error)
	UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error
}

// StatusChange records one employee status update made by the sweep
type StatusChange struct {
	EmployeeID int64
	From       model.EmployeeStatus
	To         model.EmployeeStatus
	OnLeave    bool
}

// SyncStatuses reconciles employee statuses with the schedules and approved
// permits in effect on referenceDate:
//   - employees with an approved permit covering the date go on leave
//   - on-leave employees without one come back (assigned if they still hold work)
//   - assigned employees with no pending or accepted schedule from the date on become available
func SyncStatuses(ctx context.Context, store SyncStatusesStore, logger *zap.Logger, referenceDate time.Time) ([]StatusChange, error) {
	date := model.DateOf(referenceDate)
	logger.Debug("Syncing employee statuses", zap.String("date", date.Format(model.DateLayout)))

	permits, err := store.GetApprovedPermitsCovering(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved permits: %w", err)
	}
	onLeave := scheduling.OnApprovedLeave(permits, date)

	active, err := store.GetEmployeesWithActiveSchedulesFrom(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active schedules: %w", err)
	}

	changes := []StatusChange{}
	for _, status := range []model.EmployeeStatus{
		model.EmployeeStatusAvailable,
		model.EmployeeStatusAssigned,
		model.EmployeeStatusOnLeave,
	} {
		employees, err := store.GetEmployeesByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s employees: %w", status, err)
		}

		for _, emp := range employees {
			newStatus, newOnLeave := reconcileStatus(emp, onLeave[emp.ID], active[emp.ID])
			if newStatus == emp.Status && newOnLeave == emp.OnLeave {
				continue
			}

			if err := store.UpdateEmployeeStatus(ctx, emp.ID, newStatus, newOnLeave); err != nil {
				return nil, fmt.Errorf("failed to update status of employee %d: %w", emp.ID, err)
			}

			logger.Debug("Employee status changed",
				zap.Int64("employee_id", emp.ID),
				zap.String("from", string(emp.Status)),
				zap.String("to", string(newStatus)),
				zap.Bool("on_leave", newOnLeave))

			changes = append(changes, StatusChange{
				EmployeeID: emp.ID,
				From:       emp.Status,
				To:         newStatus,
				OnLeave:    newOnLeave,
			})
		}
	}

	logger.Info("Employee statuses synced", zap.Int("changed", len(changes)))
	return changes, nil
}

// reconcileStatus returns the status an employee should hold given whether an
// approved permit covers the day and whether they hold active work
func reconcileStatus(emp model.Employee, hasLeave, hasActiveSchedule bool) (model.EmployeeStatus, bool) {
	if hasLeave {
		return model.EmployeeStatusOnLeave, true
	}

	working := model.EmployeeStatusAvailable
	if hasActiveSchedule {
		working = model.EmployeeStatusAssigned
	}

	switch emp.Status {
	case model.EmployeeStatusOnLeave:
		return working, false
	case model.EmployeeStatusAssigned:
		if !hasActiveSchedule {
			return model.EmployeeStatusAvailable, false
		}
		return emp.Status, false
	default:
		return emp.Status, false
	}
}
