package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// GetSubSection retrieves a sub-section by ID
func (d *DB) GetSubSection(ctx context.Context, id int64) (*model.SubSection, error) {
	var s model.SubSection
	err := d.pool.QueryRow(ctx, `
		SELECT id, section_id, name FROM sub_section WHERE id = $1
	`, id).Scan(&s.ID, &s.SectionID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query sub-section %d: %w", id, err)
	}
	return &s, nil
}

// GetShift retrieves a shift by ID
func (d *DB) GetShift(ctx context.Context, id int64) (*model.Shift, error) {
	var s model.Shift
	var hours decimal.Decimal
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, hours FROM shift WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &hours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query shift %d: %w", id, err)
	}
	s.Hours = hours
	return &s, nil
}

// GetMetrics retrieves the ranking metrics for the given employees. Employees
// without a metrics row are left out of the result.
func (d *DB) GetMetrics(ctx context.Context, employeeIDs []int64) (map[int64]model.EmployeeMetrics, error) {
	result := make(map[int64]model.EmployeeMetrics, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT employee_id, workload_points, blind_test_points, average_rating
		FROM employee_metrics
		WHERE employee_id = ANY($1)
	`, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var m model.EmployeeMetrics
		if err := rows.Scan(&id, &m.WorkloadPoints, &m.BlindTestPoints, &m.AverageRating); err != nil {
			return nil, fmt.Errorf("failed to scan employee metrics: %w", err)
		}
		result[id] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee metrics: %w", err)
	}

	return result, nil
}
