package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// WithinTx runs fn inside a READ COMMITTED transaction. Rows read through the
// Lock* methods are held with SELECT ... FOR UPDATE until commit or rollback.
func (d *DB) WithinTx(ctx context.Context, fn func(tx db.Tx) error) error {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error) {
	return getRequest(ctx, t.tx, id, true)
}

func (t *pgTx) LockEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	return getEmployee(ctx, t.tx, id, true)
}

func (t *pgTx) LockSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	return getSchedule(ctx, t.tx, id, true)
}

func (t *pgTx) LockPermit(ctx context.Context, id string) (*model.Permit, error) {
	return getPermit(ctx, t.tx, id, true)
}

func (t *pgTx) ScheduleExistsOnDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	return scheduleExistsOnDate(ctx, t.tx, employeeID, date)
}

func (t *pgTx) ApprovedPermitCoversDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	return approvedPermitCoversDate(ctx, t.tx, employeeID, date)
}

func (t *pgTx) ActiveScheduleExistsFrom(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	return activeScheduleExistsFrom(ctx, t.tx, employeeID, date)
}

// InsertSchedule maps a violation of the one-active-schedule-per-day index to
// a *model.ConflictError
func (t *pgTx) InsertSchedule(ctx context.Context, schedule *model.Schedule) error {
	return insertSchedule(ctx, t.tx, schedule)
}

func (t *pgTx) UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error {
	return updateEmployeeStatus(ctx, t.tx, id, status, onLeave)
}

func (t *pgTx) UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	return updateRequestStatus(ctx, t.tx, id, status)
}

func (t *pgTx) UpdateScheduleStatus(ctx context.Context, id string, status model.ScheduleStatus, reason string) error {
	return updateScheduleStatus(ctx, t.tx, id, status, reason)
}

func (t *pgTx) UpdatePermitStatus(ctx context.Context, id string, status model.PermitStatus) error {
	return updatePermitStatus(ctx, t.tx, id, status)
}
