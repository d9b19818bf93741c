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

const requestColumns = `id, sub_section_id, shift_id, date, requested_amount, male_count, female_count, status, created_at`

func getRequest(ctx context.Context, q querier, id int64, forUpdate bool) (*model.ManpowerRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM manpower_request WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var r model.ManpowerRequest
	var status string
	err := q.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.SubSectionID, &r.ShiftID, &r.Date,
		&r.RequestedAmount, &r.MaleCount, &r.FemaleCount, &status, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query manpower request %d: %w", id, err)
	}
	r.Status = model.RequestStatus(status)
	r.Date = model.DateOf(r.Date)

	return &r, nil
}

// GetRequest retrieves a manpower request by ID
func (d *DB) GetRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error) {
	return getRequest(ctx, d.pool, id, false)
}

// InsertRequest inserts a manpower request and sets its generated ID and creation time
func (d *DB) InsertRequest(ctx context.Context, req *model.ManpowerRequest) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO manpower_request (sub_section_id, shift_id, date, requested_amount, male_count, female_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, req.SubSectionID, req.ShiftID, model.DateOf(req.Date), req.RequestedAmount,
		req.MaleCount, req.FemaleCount, string(req.Status)).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert manpower request: %w", err)
	}
	return nil
}

// RequestExists reports whether any request exists for the sub-section, shift and day
func (d *DB) RequestExists(ctx context.Context, subSectionID, shiftID int64, date time.Time) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM manpower_request
			WHERE sub_section_id = $1 AND shift_id = $2 AND date = $3
		)
	`, subSectionID, shiftID, model.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing manpower request: %w", err)
	}
	return exists, nil
}

// UpdateRequestStatus sets a manpower request's status
func (d *DB) UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	return updateRequestStatus(ctx, d.pool, id, status)
}

func updateRequestStatus(ctx context.Context, q querier, id int64, status model.RequestStatus) error {
	tag, err := q.Exec(ctx, `UPDATE manpower_request SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update manpower request %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
