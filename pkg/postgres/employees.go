package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

const employeeColumns = `id, national_id, name, email, type, status, on_leave, gender`

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	var empType, status, gender string
	if err := row.Scan(&e.ID, &e.NationalID, &e.Name, &e.Email, &empType, &status, &e.OnLeave, &gender); err != nil {
		return e, err
	}
	e.Type = model.EmployeeType(empType)
	e.Status = model.EmployeeStatus(status)
	e.Gender = model.Gender(gender)
	return e, nil
}

// ListActiveEmployees returns every non-deactivated employee with their
// sub-section memberships
func (d *DB) ListActiveEmployees(ctx context.Context) ([]model.Employee, error) {
	return queryEmployees(ctx, d.pool, `
		SELECT `+employeeColumns+`
		FROM employee
		WHERE status <> 'deactivated'
		ORDER BY id
	`)
}

// GetEmployee retrieves a single employee with their memberships
func (d *DB) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	return getEmployee(ctx, d.pool, id, false)
}

// GetEmployeesByStatus retrieves all employees holding the given status
func (d *DB) GetEmployeesByStatus(ctx context.Context, status model.EmployeeStatus) ([]model.Employee, error) {
	return queryEmployees(ctx, d.pool, `
		SELECT `+employeeColumns+`
		FROM employee
		WHERE status = $1
		ORDER BY id
	`, string(status))
}

// UpdateEmployeeStatus sets an employee's status and leave flag
func (d *DB) UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error {
	return updateEmployeeStatus(ctx, d.pool, id, status, onLeave)
}

func getEmployee(ctx context.Context, q querier, id int64, forUpdate bool) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query employee %d: %w", id, err)
	}

	memberships, err := loadMemberships(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	emp.SubSections = memberships[id]

	return &emp, nil
}

func queryEmployees(ctx context.Context, q querier, sql string, args ...any) ([]model.Employee, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	rows.Close()

	if len(employees) == 0 {
		return employees, nil
	}

	ids := make([]int64, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	memberships, err := loadMemberships(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].SubSections = memberships[employees[i].ID]
	}

	return employees, nil
}

func loadMemberships(ctx context.Context, q querier, employeeIDs []int64) (map[int64][]model.SubSectionMembership, error) {
	rows, err := q.Query(ctx, `
		SELECT employee_id, sub_section_id, dedicated
		FROM employee_sub_section
		WHERE employee_id = ANY($1)
		ORDER BY employee_id, sub_section_id
	`, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-section memberships: %w", err)
	}
	defer rows.Close()

	memberships := make(map[int64][]model.SubSectionMembership)
	for rows.Next() {
		var employeeID int64
		var m model.SubSectionMembership
		if err := rows.Scan(&employeeID, &m.SubSectionID, &m.Dedicated); err != nil {
			return nil, fmt.Errorf("failed to scan sub-section membership: %w", err)
		}
		memberships[employeeID] = append(memberships[employeeID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-section memberships: %w", err)
	}

	return memberships, nil
}

func updateEmployeeStatus(ctx context.Context, q querier, id int64, status model.EmployeeStatus, onLeave bool) error {
	tag, err := q.Exec(ctx, `
		UPDATE employee SET status = $2, on_leave = $3 WHERE id = $1
	`, id, string(status), onLeave)
	if err != nil {
		return fmt.Errorf("failed to update employee %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
