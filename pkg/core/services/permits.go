package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// NewPermit is the input for filing a permit
type NewPermit struct {
	EmployeeID int64
	Type       model.PermitType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// PermitStore defines the database operations needed by the permit lifecycle
type PermitStore interface {
	db.Transactor
	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
	InsertPermit(ctx context.Context, permit *model.Permit) error
	GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error)
	GetSchedulesForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]model.Schedule, error)
}

// PermitDecision is the outcome of approving a permit
type PermitDecision struct {
	Permit *model.Permit

	// ConflictingSchedules are the employee's pending/accepted schedules inside
	// the permit's date range. They are left untouched for a supervisor to resolve.
	ConflictingSchedules []model.Schedule
}

// FilePermit validates and stores a pending permit
func FilePermit(ctx context.Context, store PermitStore, logger *zap.Logger, input NewPermit) (*model.Permit, error) {
	if !input.Type.IsValid() {
		return nil, model.NewValidationError("type", "unknown permit type %q", input.Type)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, model.NewValidationError("start_date", "start and end dates are required")
	}
	start, end := model.DateOf(input.StartDate), model.DateOf(input.EndDate)
	if end.Before(start) {
		return nil, model.NewValidationError("end_date", "end date %s is before start date %s",
			end.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, model.NewValidationError("reason", "a reason is required")
	}

	emp, err := store.GetEmployee(ctx, input.EmployeeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, model.NewValidationError("employee_id", "employee %d does not exist", input.EmployeeID)
		}
		return nil, fmt.Errorf("failed to fetch employee %d: %w", input.EmployeeID, err)
	}
	if emp.Status == model.EmployeeStatusDeactivated {
		return nil, model.NewValidationError("employee_id", "employee %d is deactivated", emp.ID)
	}

	permit := &model.Permit{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		Type:       input.Type,
		StartDate:  start,
		EndDate:    end,
		Reason:     reason,
		Status:     model.PermitStatusPending,
	}

	if err := store.InsertPermit(ctx, permit); err != nil {
		return nil, fmt.Errorf("failed to insert permit: %w", err)
	}

	logger.Info("Permit filed",
		zap.String("permit_id", permit.ID),
		zap.Int64("employee_id", permit.EmployeeID),
		zap.String("type", string(permit.Type)))

	return permit, nil
}

// GetPermitStore defines the database operations needed to look up a permit
type GetPermitStore interface {
	GetPermit(ctx context.Context, id string) (*model.Permit, error)
}

// GetPermit fetches a permit by ID. A missing permit wraps db.ErrNotFound.
func GetPermit(ctx context.Context, store GetPermitStore, logger *zap.Logger, permitID string) (*model.Permit, error) {
	logger.Debug("Fetching permit", zap.String("permit_id", permitID))

	permit, err := store.GetPermit(ctx, permitID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permit %s: %w", permitID, err)
	}
	return permit, nil
}

// ApprovePermit approves a pending permit. When the permit covers referenceDate
// the employee is put on leave immediately; otherwise SyncStatuses does it on
// the day the permit starts.
func ApprovePermit(ctx context.Context, store PermitStore, logger *zap.Logger, permitID string, referenceDate time.Time) (*PermitDecision, error) {
	var permit *model.Permit

	err := store.WithinTx(ctx, func(tx db.Tx) error {
		var err error
		permit, _, err = transitionPermit(ctx, tx, permitID, model.PermitStatusApproved, model.PermitStatusPending)
		if err != nil {
			return err
		}

		// The employee row is locked even when the permit starts later, so an
		// approval and a fulfilment for the same employee never interleave
		emp, err := tx.LockEmployee(ctx, permit.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to lock employee %d: %w", permit.EmployeeID, err)
		}
		if !permit.Covers(referenceDate) || emp.Status == model.EmployeeStatusDeactivated {
			return nil
		}
		if err := tx.UpdateEmployeeStatus(ctx, emp.ID, model.EmployeeStatusOnLeave, true); err != nil {
			return fmt.Errorf("failed to put employee %d on leave: %w", emp.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Permit approved",
		zap.String("permit_id", permit.ID),
		zap.Int64("employee_id", permit.EmployeeID))

	schedules, err := store.GetSchedulesForEmployee(ctx, permit.EmployeeID, permit.StartDate, permit.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules for employee %d: %w", permit.EmployeeID, err)
	}

	decision := &PermitDecision{Permit: permit, ConflictingSchedules: []model.Schedule{}}
	for _, s := range schedules {
		if !s.Status.IsActive() {
			continue
		}
		decision.ConflictingSchedules = append(decision.ConflictingSchedules, s)
		logger.Warn("Approved permit overlaps an active schedule",
			zap.String("permit_id", permit.ID),
			zap.String("schedule_id", s.ID),
			zap.String("date", s.Date.Format(model.DateLayout)))
	}

	return decision, nil
}

// RejectPermit rejects a pending permit
func RejectPermit(ctx context.Context, store PermitStore, logger *zap.Logger, permitID string) (*model.Permit, error) {
	var permit *model.Permit

	err := store.WithinTx(ctx, func(tx db.Tx) error {
		var err error
		permit, _, err = transitionPermit(ctx, tx, permitID, model.PermitStatusRejected, model.PermitStatusPending)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Permit rejected", zap.String("permit_id", permit.ID))
	return permit, nil
}

// CancelPermit cancels a pending or approved permit. If the employee is on
// leave on referenceDate only because of this permit they become available again.
func CancelPermit(ctx context.Context, store PermitStore, logger *zap.Logger, permitID string, referenceDate time.Time) (*model.Permit, error) {
	covering, err := store.GetApprovedPermitsCovering(ctx, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved permits: %w", err)
	}

	var permit *model.Permit

	err = store.WithinTx(ctx, func(tx db.Tx) error {
		var (
			previous model.PermitStatus
			err      error
		)
		permit, previous, err = transitionPermit(ctx, tx, permitID, model.PermitStatusCancelled,
			model.PermitStatusPending, model.PermitStatusApproved)
		if err != nil {
			return err
		}

		if previous != model.PermitStatusApproved || !permit.Covers(referenceDate) {
			return nil
		}
		if hasOtherCoveringPermit(covering, permit) {
			return nil
		}

		emp, err := tx.LockEmployee(ctx, permit.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to lock employee %d: %w", permit.EmployeeID, err)
		}
		if emp.Status != model.EmployeeStatusOnLeave && !emp.OnLeave {
			return nil
		}

		status := emp.Status
		if status == model.EmployeeStatusOnLeave {
			status = model.EmployeeStatusAvailable
		}
		if err := tx.UpdateEmployeeStatus(ctx, emp.ID, status, false); err != nil {
			return fmt.Errorf("failed to return employee %d from leave: %w", emp.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Permit cancelled", zap.String("permit_id", permit.ID))
	return permit, nil
}

// transitionPermit locks a permit and moves it to the target status if its
// current status is one of from. The status it moved from is returned.
func transitionPermit(ctx context.Context, tx db.Tx, permitID string, to model.PermitStatus, from ...model.PermitStatus) (*model.Permit, model.PermitStatus, error) {
	permit, err := tx.LockPermit(ctx, permitID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to lock permit %s: %w", permitID, err)
	}

	if !slices.Contains(from, permit.Status) {
		return nil, "", &model.InvalidTransitionError{
			Entity: "permit",
			ID:     permitID,
			From:   string(permit.Status),
			To:     string(to),
		}
	}

	if err := tx.UpdatePermitStatus(ctx, permitID, to); err != nil {
		return nil, "", fmt.Errorf("failed to update permit %s: %w", permitID, err)
	}
	previous := permit.Status
	permit.Status = to
	return permit, previous, nil
}

func hasOtherCoveringPermit(covering []model.Permit, permit *model.Permit) bool {
	for _, p := range covering {
		if p.EmployeeID == permit.EmployeeID && p.ID != permit.ID {
			return true
		}
	}
	return false
}
