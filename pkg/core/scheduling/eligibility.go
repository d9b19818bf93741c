package scheduling

import (
	"time"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// FilterInput contains everything the eligibility filter needs for one request
type FilterInput struct {
	Request model.ManpowerRequest

	// Employees is the employee pool to filter (deactivated employees may be included
	// and are dropped by the status rule)
	Employees []model.Employee

	// ScheduledOnDate maps employee ID to the request ID of the schedule they
	// already hold on the request date. Only active (pending/accepted) schedules
	// should be included.
	ScheduledOnDate map[int64]int64

	// OnApprovedLeave contains employees with an approved permit covering the date
	OnApprovedLeave map[int64]bool
}

// EligiblePool is the output of the eligibility filter
type EligiblePool struct {
	// Primary holds employees associated with the request's sub-section
	Primary []model.Employee

	// Overflow holds other available employees. Empty unless the primary pool
	// cannot cover the headcount or one of the gender quotas.
	Overflow []model.Employee

	// AlreadyScheduled contains primary/overflow employees that already hold a
	// schedule for this same request
	AlreadyScheduled map[int64]bool
}

// Size returns the number of employees across both pools
func (p *EligiblePool) Size() int {
	return len(p.Primary) + len(p.Overflow)
}

// FilterEligible selects the employees that may be offered for a request.
// Rules, applied together:
//   - employees holding a schedule on the date for a different request are excluded
//   - employees that are not available or are flagged on leave are excluded, unless
//     they already hold a schedule for this request
//   - employees with an approved permit covering the date are excluded
//   - members of the request's sub-section form the primary pool; everyone else
//     (except employees dedicated to another sub-section) forms the overflow pool,
//     which is only returned when the primary pool is insufficient
//
// Filtering never fails: a partial pool is returned and shortfall detection is
// left to selection.
func FilterEligible(input FilterInput) EligiblePool {
	req := input.Request
	pool := EligiblePool{
		Primary:          []model.Employee{},
		Overflow:         []model.Employee{},
		AlreadyScheduled: make(map[int64]bool),
	}

	var overflow []model.Employee
	for _, emp := range input.Employees {
		if emp.Status == model.EmployeeStatusDeactivated {
			continue
		}

		scheduledRequestID, hasSchedule := input.ScheduledOnDate[emp.ID]
		if hasSchedule && scheduledRequestID != req.ID {
			// Double-booking guard
			continue
		}
		alreadyScheduled := hasSchedule && scheduledRequestID == req.ID

		if !alreadyScheduled {
			if !emp.IsAvailable() {
				continue
			}
			if input.OnApprovedLeave[emp.ID] {
				continue
			}
		}

		if alreadyScheduled {
			pool.AlreadyScheduled[emp.ID] = true
		}

		if emp.BelongsTo(req.SubSectionID) {
			pool.Primary = append(pool.Primary, emp)
		} else if alreadyScheduled || !emp.IsDedicatedElsewhere(req.SubSectionID) {
			overflow = append(overflow, emp)
		}
	}

	if primaryInsufficient(req, pool.Primary) {
		pool.Overflow = overflow
	} else {
		// Employees already holding this request stay in the pool wherever they came from
		pool.Overflow = alreadyScheduledIn(overflow, pool.AlreadyScheduled)
	}

	return pool
}

// primaryInsufficient returns true if the primary pool cannot cover the
// headcount or either gender quota on its own
func primaryInsufficient(req model.ManpowerRequest, primary []model.Employee) bool {
	if len(primary) < req.RequestedAmount {
		return true
	}

	males, females := countGenders(primary)
	return males < req.MaleCount || females < req.FemaleCount
}

func alreadyScheduledIn(employees []model.Employee, scheduled map[int64]bool) []model.Employee {
	result := []model.Employee{}
	for _, emp := range employees {
		if scheduled[emp.ID] {
			result = append(result, emp)
		}
	}
	return result
}

func countGenders(employees []model.Employee) (males, females int) {
	for _, emp := range employees {
		switch emp.Gender {
		case model.GenderMale:
			males++
		case model.GenderFemale:
			females++
		}
	}
	return males, females
}

// ScheduledOnDate builds the employee→request map used by FilterEligible from
// the schedules held on a given date. Rejected schedules do not occupy the day.
func ScheduledOnDate(schedules []model.Schedule, date time.Time) map[int64]int64 {
	day := model.DateOf(date)
	scheduled := make(map[int64]int64)
	for _, s := range schedules {
		if !s.Status.IsActive() {
			continue
		}
		if !model.DateOf(s.Date).Equal(day) {
			continue
		}
		scheduled[s.EmployeeID] = s.RequestID
	}
	return scheduled
}

// OnApprovedLeave builds the set of employees whose approved permits cover the date
func OnApprovedLeave(permits []model.Permit, date time.Time) map[int64]bool {
	onLeave := make(map[int64]bool)
	for _, p := range permits {
		if p.Status != model.PermitStatusApproved {
			continue
		}
		if p.Covers(date) {
			onLeave[p.EmployeeID] = true
		}
	}
	return onLeave
}
