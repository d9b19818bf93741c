package scheduling

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// Direction controls whether a rank key prefers higher or lower values
type Direction int

const (
	Descending Direction = iota
	Ascending
)

// RankKey is one level of the lexicographic candidate ordering
type RankKey struct {
	// Name identifies the key in logs and tests
	Name string

	// Extract returns the value compared at this level
	Extract func(c *Candidate) decimal.Decimal

	Direction Direction
}

// Compare compares two candidates at this level only.
// Returns a negative value if a sorts before b.
func (k RankKey) Compare(a, b *Candidate) int {
	cmp := k.Extract(a).Cmp(k.Extract(b))
	if k.Direction == Descending {
		return -cmp
	}
	return cmp
}

var (
	one  = decimal.NewFromInt(1)
	zero = decimal.Zero
)

func boolValue(b bool) decimal.Decimal {
	if b {
		return one
	}
	return zero
}

// RankKeys returns the ordered rank keys for a request:
//  1. already scheduled for this request first
//  2. higher total score first
//  3. gender matching an open quota first
//  4. same sub-section before overflow
//  5. monthly before daily
//  6. among daily employees, higher working-day weight first
//  7. ascending employee ID
func RankKeys(req model.ManpowerRequest) []RankKey {
	return []RankKey{
		{
			Name:      "AlreadyScheduled",
			Extract:   func(c *Candidate) decimal.Decimal { return boolValue(c.AlreadyScheduled) },
			Direction: Descending,
		},
		{
			Name:      "TotalScore",
			Extract:   func(c *Candidate) decimal.Decimal { return c.TotalScore },
			Direction: Descending,
		},
		{
			Name: "GenderQuotaFit",
			Extract: func(c *Candidate) decimal.Decimal {
				return boolValue(fitsGenderQuota(req, c.Employee.Gender))
			},
			Direction: Descending,
		},
		{
			Name:      "SameSubSection",
			Extract:   func(c *Candidate) decimal.Decimal { return boolValue(c.InSameSubSection()) },
			Direction: Descending,
		},
		{
			Name: "Monthly",
			Extract: func(c *Candidate) decimal.Decimal {
				return boolValue(c.Employee.Type == model.EmployeeTypeMonthly)
			},
			Direction: Descending,
		},
		{
			Name: "DailyWorkingDayWeight",
			Extract: func(c *Candidate) decimal.Decimal {
				if c.Employee.Type != model.EmployeeTypeDaily {
					return zero
				}
				return decimal.NewFromInt(int64(c.WorkingDayWeight))
			},
			Direction: Descending,
		},
		{
			Name:      "EmployeeID",
			Extract:   func(c *Candidate) decimal.Decimal { return decimal.NewFromInt(c.Employee.ID) },
			Direction: Ascending,
		},
	}
}

// fitsGenderQuota returns true if the request has a quota for the gender
func fitsGenderQuota(req model.ManpowerRequest, gender model.Gender) bool {
	switch gender {
	case model.GenderMale:
		return req.MaleCount > 0
	case model.GenderFemale:
		return req.FemaleCount > 0
	}
	return false
}

// Compare evaluates the keys in order and returns the first non-zero result
func Compare(keys []RankKey, a, b *Candidate) int {
	for _, key := range keys {
		if cmp := key.Compare(a, b); cmp != 0 {
			return cmp
		}
	}
	return 0
}

// RankCandidates sorts candidates in place into priority order for the request.
// The final ID key makes this a total order over distinct employees.
func RankCandidates(req model.ManpowerRequest, candidates []Candidate) {
	keys := RankKeys(req)
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return Compare(keys, &a, &b)
	})
}
