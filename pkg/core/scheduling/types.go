package scheduling

import (
	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// Pool identifies which pool a candidate was drawn from
type Pool string

const (
	// PoolPrimary holds employees associated with the request's sub-section
	PoolPrimary Pool = "primary"

	// PoolOverflow holds available employees from other sub-sections
	PoolOverflow Pool = "overflow"
)

// Candidate is an eligible employee together with the derived figures used
// to rank them against a single manpower request
type Candidate struct {
	Employee model.Employee

	// Pool is the pool the employee was drawn from
	Pool Pool

	// AlreadyScheduled is true if the employee already holds a schedule for
	// this same request (re-fulfilment keeps these employees first)
	AlreadyScheduled bool

	// WeeklyCount is the number of schedules in the trailing 7-day window
	WeeklyCount int

	// Rating is the bucket derived from WeeklyCount
	Rating int

	// WorkingDayWeight is the inverse priority derived from Rating
	WorkingDayWeight int

	// TotalAssignedHours is the cumulative shift hours over all schedules.
	// Informational only, not used for ranking.
	TotalAssignedHours decimal.Decimal

	Metrics model.EmployeeMetrics

	// TotalScore is WorkloadPoints + BlindTestPoints + AverageRating
	TotalScore decimal.Decimal
}

// InSameSubSection returns true if the candidate came from the primary pool
func (c *Candidate) InSameSubSection() bool {
	return c.Pool == PoolPrimary
}

// ShortfallKind identifies which constraint a selection could not satisfy
type ShortfallKind string

const (
	ShortfallMale      ShortfallKind = "male"
	ShortfallFemale    ShortfallKind = "female"
	ShortfallHeadcount ShortfallKind = "headcount"
)

// SelectionShortfall describes an unmet requirement after auto-selection
type SelectionShortfall struct {
	Kind        ShortfallKind
	Required    int
	Selected    int
	Description string
}

// DataIntegrityWarning flags a missing related record that was treated as
// a zero contribution while scoring
type DataIntegrityWarning struct {
	EmployeeID  int64
	ScheduleID  string
	RequestID   int64
	Description string
}
