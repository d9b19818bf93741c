package db

import (
	"context"
	"time"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// EmployeeStore defines the interface for employee database operations
type EmployeeStore interface {
	// ListActiveEmployees returns every non-deactivated employee with their
	// sub-section memberships. Splitting them into primary and overflow pools
	// and the per-day checks are left to the eligibility filter.
	ListActiveEmployees(ctx context.Context) ([]model.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
	GetEmployeesByStatus(ctx context.Context, status model.EmployeeStatus) ([]model.Employee, error)
	UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error
}

// RequestStore defines the interface for manpower request database operations
type RequestStore interface {
	GetRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error)
	InsertRequest(ctx context.Context, req *model.ManpowerRequest) error
	RequestExists(ctx context.Context, subSectionID, shiftID int64, date time.Time) (bool, error)
	UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error
}

// ScheduleStore defines the interface for schedule database operations
type ScheduleStore interface {
	CountSchedulesInWindow(ctx context.Context, employeeID int64, from, to time.Time) (int, error)
	GetSchedulesOnDate(ctx context.Context, date time.Time) ([]model.Schedule, error)
	GetSchedulesForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]model.Schedule, error)
	// GetScheduleHours returns every schedule the employee has ever held joined
	// to its request's shift hours
	GetScheduleHours(ctx context.Context, employeeID int64) ([]model.ScheduleHours, error)
	// GetEmployeesWithActiveSchedulesFrom returns the employees holding a pending
	// or accepted schedule on or after the date
	GetEmployeesWithActiveSchedulesFrom(ctx context.Context, date time.Time) (map[int64]bool, error)
}

// PermitStore defines the interface for permit database operations
type PermitStore interface {
	InsertPermit(ctx context.Context, permit *model.Permit) error
	GetPermit(ctx context.Context, id string) (*model.Permit, error)
	GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error)
}

// CatalogStore provides read access to the organisational reference data
type CatalogStore interface {
	GetSubSection(ctx context.Context, id int64) (*model.SubSection, error)
	GetShift(ctx context.Context, id int64) (*model.Shift, error)
}

// MetricsProvider looks up the externally maintained ranking metrics.
// Employees without metrics are omitted from the returned map.
type MetricsProvider interface {
	GetMetrics(ctx context.Context, employeeIDs []int64) (map[int64]model.EmployeeMetrics, error)
}

// Tx is a unit of work. Reads made through the Lock* methods hold a row lock
// until the unit of work ends so that decisions and writes see the same state.
type Tx interface {
	LockRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error)
	LockEmployee(ctx context.Context, id int64) (*model.Employee, error)
	LockSchedule(ctx context.Context, id string) (*model.Schedule, error)
	LockPermit(ctx context.Context, id string) (*model.Permit, error)

	ScheduleExistsOnDate(ctx context.Context, employeeID int64, date time.Time) (bool, error)
	// ApprovedPermitCoversDate reports whether the employee holds an approved
	// permit whose range includes the day
	ApprovedPermitCoversDate(ctx context.Context, employeeID int64, date time.Time) (bool, error)
	// ActiveScheduleExistsFrom reports whether the employee holds a pending or
	// accepted schedule dated on or after the day
	ActiveScheduleExistsFrom(ctx context.Context, employeeID int64, date time.Time) (bool, error)
	InsertSchedule(ctx context.Context, schedule *model.Schedule) error

	UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error
	UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error
	UpdateScheduleStatus(ctx context.Context, id string, status model.ScheduleStatus, reason string) error
	UpdatePermitStatus(ctx context.Context, id string, status model.PermitStatus) error
}

// Transactor runs fn inside a single atomic unit of work. If fn returns an
// error nothing it wrote is persisted and the error is returned unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	EmployeeStore
	RequestStore
	ScheduleStore
	PermitStore
	CatalogStore
	MetricsProvider
	Transactor
}
