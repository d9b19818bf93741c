package model

import (
	"fmt"
	"time"
)

// ValidationError is returned when a caller supplies malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AlreadyFulfilledError is returned when fulfilment is attempted on a request
// that has already been fulfilled
type AlreadyFulfilledError struct {
	RequestID int64
}

func (e *AlreadyFulfilledError) Error() string {
	return fmt.Sprintf("manpower request %d is already fulfilled", e.RequestID)
}

// ConflictError is returned when an employee in a confirmed list is no longer
// schedulable at commit time. The whole batch is aborted.
type ConflictError struct {
	EmployeeID int64
	Date       time.Time
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("employee %d cannot be scheduled on %s: %s",
		e.EmployeeID, e.Date.Format(DateLayout), e.Reason)
}

// InvalidTransitionError is returned when a status change is not allowed
// from the entity's current state
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}
