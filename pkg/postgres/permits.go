package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

const permitColumns = `id, employee_id, type, start_date, end_date, reason, status`

func scanPermit(row pgx.Row) (model.Permit, error) {
	var p model.Permit
	var permitType, status string
	if err := row.Scan(&p.ID, &p.EmployeeID, &permitType, &p.StartDate, &p.EndDate, &p.Reason, &status); err != nil {
		return p, err
	}
	p.Type = model.PermitType(permitType)
	p.Status = model.PermitStatus(status)
	p.StartDate = model.DateOf(p.StartDate)
	p.EndDate = model.DateOf(p.EndDate)
	return p, nil
}

func getPermit(ctx context.Context, q querier, id string, forUpdate bool) (*model.Permit, error) {
	query := `SELECT ` + permitColumns + ` FROM permit WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPermit(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query permit %s: %w", id, err)
	}
	return &p, nil
}

// InsertPermit inserts a permit record
func (d *DB) InsertPermit(ctx context.Context, permit *model.Permit) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO permit (id, employee_id, type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, permit.ID, permit.EmployeeID, string(permit.Type), model.DateOf(permit.StartDate),
		model.DateOf(permit.EndDate), permit.Reason, string(permit.Status))
	if err != nil {
		return fmt.Errorf("failed to insert permit: %w", err)
	}
	return nil
}

// GetPermit retrieves a permit by ID
func (d *DB) GetPermit(ctx context.Context, id string) (*model.Permit, error) {
	return getPermit(ctx, d.pool, id, false)
}

// GetApprovedPermitsCovering retrieves the approved permits whose range includes the day
func (d *DB) GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+permitColumns+`
		FROM permit
		WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1
	`, model.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query approved permits: %w", err)
	}
	defer rows.Close()

	var permits []model.Permit
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit: %w", err)
		}
		permits = append(permits, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permits: %w", err)
	}

	return permits, nil
}

func approvedPermitCoversDate(ctx context.Context, q querier, employeeID int64, date time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM permit
			WHERE employee_id = $1 AND status = 'approved' AND start_date <= $2 AND end_date >= $2
		)
	`, employeeID, model.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approved permits for employee %d: %w", employeeID, err)
	}
	return exists, nil
}

func updatePermitStatus(ctx context.Context, q querier, id string, status model.PermitStatus) error {
	tag, err := q.Exec(ctx, `UPDATE permit SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update permit %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
