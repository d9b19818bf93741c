package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// NewRequest is the input for raising a manpower request
type NewRequest struct {
	SubSectionID    int64
	ShiftID         int64
	Date            time.Time
	RequestedAmount int
	MaleCount       int
	FemaleCount     int
}

// CreateRequestStore defines the database operations needed to raise a request
type CreateRequestStore interface {
	GetSubSection(ctx context.Context, id int64) (*model.SubSection, error)
	GetShift(ctx context.Context, id int64) (*model.Shift, error)
	InsertRequest(ctx context.Context, req *model.ManpowerRequest) error
}

// CreateRequest validates and stores a new pending manpower request
func CreateRequest(ctx context.Context, store CreateRequestStore, logger *zap.Logger, input NewRequest) (*model.ManpowerRequest, error) {
	logger.Debug("Creating manpower request",
		zap.Int64("sub_section_id", input.SubSectionID),
		zap.Int64("shift_id", input.ShiftID),
		zap.String("date", input.Date.Format(model.DateLayout)),
		zap.Int("requested_amount", input.RequestedAmount))

	if err := validateNewRequest(input); err != nil {
		return nil, err
	}

	if _, err := store.GetSubSection(ctx, input.SubSectionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, model.NewValidationError("sub_section_id", "sub-section %d does not exist", input.SubSectionID)
		}
		return nil, fmt.Errorf("failed to fetch sub-section %d: %w", input.SubSectionID, err)
	}

	if _, err := store.GetShift(ctx, input.ShiftID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, model.NewValidationError("shift_id", "shift %d does not exist", input.ShiftID)
		}
		return nil, fmt.Errorf("failed to fetch shift %d: %w", input.ShiftID, err)
	}

	req := &model.ManpowerRequest{
		SubSectionID:    input.SubSectionID,
		ShiftID:         input.ShiftID,
		Date:            model.DateOf(input.Date),
		RequestedAmount: input.RequestedAmount,
		MaleCount:       input.MaleCount,
		FemaleCount:     input.FemaleCount,
		Status:          model.RequestStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := store.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to insert manpower request: %w", err)
	}

	logger.Info("Manpower request created",
		zap.Int64("request_id", req.ID),
		zap.String("date", req.Date.Format(model.DateLayout)))

	return req, nil
}

// validateNewRequest checks the fields that do not need the database
func validateNewRequest(input NewRequest) error {
	if input.Date.IsZero() {
		return model.NewValidationError("date", "date is required")
	}
	if input.RequestedAmount <= 0 {
		return model.NewValidationError("requested_amount", "must be positive, got %d", input.RequestedAmount)
	}
	if input.MaleCount < 0 {
		return model.NewValidationError("male_count", "must not be negative, got %d", input.MaleCount)
	}
	if input.FemaleCount < 0 {
		return model.NewValidationError("female_count", "must not be negative, got %d", input.FemaleCount)
	}
	if input.MaleCount+input.FemaleCount > input.RequestedAmount {
		return model.NewValidationError("requested_amount",
			"gender quotas (%d male, %d female) exceed requested amount %d",
			input.MaleCount, input.FemaleCount, input.RequestedAmount)
	}
	return nil
}

// RequestStatusStore defines the operations needed to move a request between states
type RequestStatusStore interface {
	WithinTx(ctx context.Context, fn func(tx db.Tx) error) error
}

// RejectRequest moves a pending manpower request to rejected
func RejectRequest(ctx context.Context, store RequestStatusStore, logger *zap.Logger, requestID int64) (*model.ManpowerRequest, error) {
	var req *model.ManpowerRequest

	err := store.WithinTx(ctx, func(tx db.Tx) error {
		var err error
		req, err = tx.LockRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to lock request %d: %w", requestID, err)
		}

		if req.Status != model.RequestStatusPending {
			return &model.InvalidTransitionError{
				Entity: "manpower request",
				ID:     fmt.Sprint(req.ID),
				From:   string(req.Status),
				To:     string(model.RequestStatusRejected),
			}
		}

		if err := tx.UpdateRequestStatus(ctx, req.ID, model.RequestStatusRejected); err != nil {
			return fmt.Errorf("failed to reject request %d: %w", req.ID, err)
		}
		req.Status = model.RequestStatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Manpower request rejected", zap.Int64("request_id", req.ID))
	return req, nil
}
