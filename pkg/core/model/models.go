package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used across the CLI, API and database
const DateLayout = "2006-01-02"

type EmployeeType string

const (
	EmployeeTypeDaily   EmployeeType = "daily"
	EmployeeTypeMonthly EmployeeType = "monthly"
)

func (t EmployeeType) IsValid() bool {
	return t == EmployeeTypeDaily || t == EmployeeTypeMonthly
}

type EmployeeStatus string

const (
	EmployeeStatusAvailable   EmployeeStatus = "available"
	EmployeeStatusAssigned    EmployeeStatus = "assigned"
	EmployeeStatusOnLeave     EmployeeStatus = "on_leave"
	EmployeeStatusDeactivated EmployeeStatus = "deactivated"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusRejected  RequestStatus = "rejected"
)

type ScheduleStatus string

const (
	ScheduleStatusPending  ScheduleStatus = "pending"
	ScheduleStatusAccepted ScheduleStatus = "accepted"
	ScheduleStatusRejected ScheduleStatus = "rejected"
)

// IsActive reports whether the schedule still occupies the employee's day
func (s ScheduleStatus) IsActive() bool {
	return s == ScheduleStatusPending || s == ScheduleStatusAccepted
}

type PermitType string

const (
	PermitTypeLeave   PermitType = "leave"
	PermitTypeSick    PermitType = "sick"
	PermitTypeSpecial PermitType = "special"
)

func (t PermitType) IsValid() bool {
	return t == PermitTypeLeave || t == PermitTypeSick || t == PermitTypeSpecial
}

type PermitStatus string

const (
	PermitStatusPending   PermitStatus = "pending"
	PermitStatusApproved  PermitStatus = "approved"
	PermitStatusRejected  PermitStatus = "rejected"
	PermitStatusCancelled PermitStatus = "cancelled"
)

// SubSectionMembership links an employee to a sub-section they work in.
// A dedicated employee is reserved for that sub-section and is never lent
// out as overflow to other sub-sections.
type SubSectionMembership struct {
	SubSectionID int64
	Dedicated    bool
}

// Employee represents a worker who can be scheduled against manpower requests
type Employee struct {
	ID          int64
	NationalID  string
	Name        string
	Email       string
	Type        EmployeeType
	Status      EmployeeStatus
	OnLeave     bool
	Gender      Gender
	SubSections []SubSectionMembership
}

// IsAvailable returns true if the employee can take on new work
func (e *Employee) IsAvailable() bool {
	return e.Status == EmployeeStatusAvailable && !e.OnLeave
}

// BelongsTo returns true if the employee is associated with the sub-section
func (e *Employee) BelongsTo(subSectionID int64) bool {
	for _, m := range e.SubSections {
		if m.SubSectionID == subSectionID {
			return true
		}
	}
	return false
}

// IsDedicatedElsewhere returns true if the employee is dedicated to any
// sub-section other than the given one
func (e *Employee) IsDedicatedElsewhere(subSectionID int64) bool {
	for _, m := range e.SubSections {
		if m.Dedicated && m.SubSectionID != subSectionID {
			return true
		}
	}
	return false
}

// SubSection is the finest-grained organisational unit
type SubSection struct {
	ID        int64
	SectionID int64
	Name      string
}

// Shift is a named working period with a fixed number of hours
type Shift struct {
	ID    int64
	Name  string
	Hours decimal.Decimal
}

// ManpowerRequest is a supervisor's request for headcount on a given day
type ManpowerRequest struct {
	ID              int64
	SubSectionID    int64
	ShiftID         int64
	Date            time.Time
	RequestedAmount int
	MaleCount       int
	FemaleCount     int
	Status          RequestStatus
	CreatedAt       time.Time
}

// Schedule assigns one employee to one manpower request for one day
type Schedule struct {
	ID              string
	EmployeeID      int64
	RequestID       int64
	Date            time.Time
	Status          ScheduleStatus
	RejectionReason string
}

// ScheduleHours is a schedule joined to the hours of its request's shift.
// Hours is nil when the linked request or shift no longer exists.
type ScheduleHours struct {
	ScheduleID string
	RequestID  int64
	Date       time.Time
	Hours      *decimal.Decimal
}

// Permit is an employee's leave/sick/special absence request
type Permit struct {
	ID         string
	EmployeeID int64
	Type       PermitType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     PermitStatus
}

// Covers returns true if the permit's date range includes the given day
func (p *Permit) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

// EmployeeMetrics are externally maintained scores used for ranking
type EmployeeMetrics struct {
	WorkloadPoints  decimal.Decimal
	BlindTestPoints decimal.Decimal
	AverageRating   decimal.Decimal
}

// DateOf truncates a time to its calendar day at midnight UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}
