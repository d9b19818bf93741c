package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/internal/config"
	"github.com/jakechorley/manpower/pkg/core/model"
)

// GenerateRecurringRequestsStore defines the database operations needed to expand templates
type GenerateRecurringRequestsStore interface {
	CreateRequestStore
	RequestExists(ctx context.Context, subSectionID, shiftID int64, date time.Time) (bool, error)
}

// GeneratedRequests summarises a template expansion
type GeneratedRequests struct {
	Created []model.ManpowerRequest
	// Skipped counts occurrences that already had a request for the same sub-section and shift
	Skipped int
}

// GenerateRecurringRequests raises a pending request for every occurrence of each
// configured template between from and to (inclusive). Dates that already have a
// request for the same sub-section and shift are skipped, so the operation can be
// re-run over overlapping ranges.
func GenerateRecurringRequests(
	ctx context.Context,
	store GenerateRecurringRequestsStore,
	logger *zap.Logger,
	templates []config.RecurringRequest,
	from, to time.Time,
) (*GeneratedRequests, error) {
	from = model.DateOf(from)
	to = model.DateOf(to)
	if to.Before(from) {
		return nil, model.NewValidationError("to", "end date %s is before start date %s",
			to.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	logger.Debug("Generating recurring requests",
		zap.Int("templates", len(templates)),
		zap.String("from", from.Format(model.DateLayout)),
		zap.String("to", to.Format(model.DateLayout)))

	result := &GeneratedRequests{}

	for i, tmpl := range templates {
		dates, err := occurrences(tmpl, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to expand template %d (%s): %w", i, tmpl.Name, err)
		}

		logger.Debug("Expanded template",
			zap.String("name", tmpl.Name),
			zap.String("rrule", tmpl.RRule),
			zap.Int("occurrences", len(dates)))

		for _, date := range dates {
			exists, err := store.RequestExists(ctx, tmpl.SubSectionID, tmpl.ShiftID, date)
			if err != nil {
				return nil, fmt.Errorf("failed to check existing request on %s: %w", date.Format(model.DateLayout), err)
			}
			if exists {
				result.Skipped++
				continue
			}

			req, err := CreateRequest(ctx, store, logger, NewRequest{
				SubSectionID:    tmpl.SubSectionID,
				ShiftID:         tmpl.ShiftID,
				Date:            date,
				RequestedAmount: tmpl.RequestedAmount,
				MaleCount:       tmpl.MaleCount,
				FemaleCount:     tmpl.FemaleCount,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create request from template %s: %w", tmpl.Name, err)
			}
			result.Created = append(result.Created, *req)
		}
	}

	logger.Info("Recurring requests generated",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// occurrences returns the calendar days matched by the template's rule between
// from and to inclusive. Rules without a DTSTART only select fixed days, so
// they are started at from.
func occurrences(tmpl config.RecurringRequest, from, to time.Time) ([]time.Time, error) {
	opt, err := tmpl.Rule()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = from
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build rrule: %w", err)
	}

	// An anchored rule may fire later in the day than midnight
	endOfRange := to.AddDate(0, 0, 1).Add(-time.Second)

	var dates []time.Time
	for _, occurrence := range r.Between(from, endOfRange, true) {
		dates = append(dates, model.DateOf(occurrence))
	}
	return dates, nil
}
