package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

const scheduleColumns = `id, employee_id, request_id, date, status, rejection_reason`

func scanSchedule(row pgx.Row) (model.Schedule, error) {
	var s model.Schedule
	var status string
	if err := row.Scan(&s.ID, &s.EmployeeID, &s.RequestID, &s.Date, &status, &s.RejectionReason); err != nil {
		return s, err
	}
	s.Status = model.ScheduleStatus(status)
	s.Date = model.DateOf(s.Date)
	return s, nil
}

func querySchedules(ctx context.Context, q querier, sql string, args ...any) ([]model.Schedule, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

func scheduleExistsOnDate(ctx context.Context, q querier, employeeID int64, date time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM schedule
			WHERE employee_id = $1 AND date = $2 AND status <> 'rejected'
		)
	`, employeeID, model.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check schedules for employee %d: %w", employeeID, err)
	}
	return exists, nil
}

func activeScheduleExistsFrom(ctx context.Context, q querier, employeeID int64, date time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM schedule
			WHERE employee_id = $1 AND date >= $2 AND status IN ('pending', 'accepted')
		)
	`, employeeID, model.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check upcoming schedules for employee %d: %w", employeeID, err)
	}
	return exists, nil
}

// CountSchedulesInWindow counts the employee's schedules of any status dated
// within [from, to]
func (d *DB) CountSchedulesInWindow(ctx context.Context, employeeID int64, from, to time.Time) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM schedule
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
	`, employeeID, model.DateOf(from), model.DateOf(to)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count schedules for employee %d: %w", employeeID, err)
	}
	return count, nil
}

// GetSchedulesOnDate retrieves every schedule dated on the day
func (d *DB) GetSchedulesOnDate(ctx context.Context, date time.Time) ([]model.Schedule, error) {
	return querySchedules(ctx, d.pool, `
		SELECT `+scheduleColumns+`
		FROM schedule
		WHERE date = $1
	`, model.DateOf(date))
}

// GetSchedulesForEmployee retrieves the employee's schedules dated within [from, to]
func (d *DB) GetSchedulesForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]model.Schedule, error) {
	return querySchedules(ctx, d.pool, `
		SELECT `+scheduleColumns+`
		FROM schedule
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, employeeID, model.DateOf(from), model.DateOf(to))
}

// GetScheduleHours joins every schedule the employee has held to its
// request's shift hours. Hours is nil where the request or shift is missing.
func (d *DB) GetScheduleHours(ctx context.Context, employeeID int64) ([]model.ScheduleHours, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT s.id, s.request_id, s.date, sh.hours
		FROM schedule s
		LEFT JOIN manpower_request r ON r.id = s.request_id
		LEFT JOIN shift sh ON sh.id = r.shift_id
		WHERE s.employee_id = $1
		ORDER BY s.date
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule hours for employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	var result []model.ScheduleHours
	for rows.Next() {
		var h model.ScheduleHours
		var hours decimal.NullDecimal
		if err := rows.Scan(&h.ScheduleID, &h.RequestID, &h.Date, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan schedule hours: %w", err)
		}
		h.Date = model.DateOf(h.Date)
		if hours.Valid {
			value := hours.Decimal
			h.Hours = &value
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule hours: %w", err)
	}

	return result, nil
}

// GetEmployeesWithActiveSchedulesFrom returns the employees holding a pending
// or accepted schedule on or after the day
func (d *DB) GetEmployeesWithActiveSchedulesFrom(ctx context.Context, date time.Time) (map[int64]bool, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT DISTINCT employee_id
		FROM schedule
		WHERE date >= $1 AND status <> 'rejected'
	`, model.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query employees with active schedules: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees with active schedules: %w", err)
	}

	return result, nil
}

func insertSchedule(ctx context.Context, q querier, s *model.Schedule) error {
	_, err := q.Exec(ctx, `
		INSERT INTO schedule (id, employee_id, request_id, date, status, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.EmployeeID, s.RequestID, model.DateOf(s.Date), string(s.Status), s.RejectionReason)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &model.ConflictError{
				EmployeeID: s.EmployeeID,
				Date:       model.DateOf(s.Date),
				Reason:     "already scheduled on this date",
			}
		}
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

func getSchedule(ctx context.Context, q querier, id string, forUpdate bool) (*model.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	s, err := scanSchedule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query schedule %s: %w", id, err)
	}
	return &s, nil
}

func updateScheduleStatus(ctx context.Context, q querier, id string, status model.ScheduleStatus, reason string) error {
	tag, err := q.Exec(ctx, `
		UPDATE schedule SET status = $2, rejection_reason = $3 WHERE id = $1
	`, id, string(status), reason)
	if err != nil {
		return fmt.Errorf("failed to update schedule %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
