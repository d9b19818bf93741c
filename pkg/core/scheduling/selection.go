package scheduling

import (
	"fmt"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// Selection is the greedy auto-selection for a request
type Selection struct {
	// Selected candidates in the order they were picked
	Selected []Candidate

	// Shortfalls lists requirements that could not be met (empty when complete)
	Shortfalls []SelectionShortfall
}

// Complete returns true if every quota and the headcount were met
func (s *Selection) Complete() bool {
	return len(s.Shortfalls) == 0
}

// EmployeeIDs returns the IDs of the selected employees in pick order
func (s *Selection) EmployeeIDs() []int64 {
	ids := make([]int64, len(s.Selected))
	for i, c := range s.Selected {
		ids[i] = c.Employee.ID
	}
	return ids
}

// selector tracks state while building a selection
type selector struct {
	req      model.ManpowerRequest
	ranked   []Candidate
	selected []Candidate
	taken    map[int64]bool
	males    int
	females  int
}

func (s *selector) full() bool {
	return len(s.selected) >= s.req.RequestedAmount
}

func (s *selector) take(c Candidate) {
	s.selected = append(s.selected, c)
	s.taken[c.Employee.ID] = true
	switch c.Employee.Gender {
	case model.GenderMale:
		s.males++
	case model.GenderFemale:
		s.females++
	}
}

// fill walks the ranked list once and takes matching candidates until limit
// returns false or the headcount is reached
func (s *selector) fill(match func(c *Candidate) bool, limit func() bool) {
	for i := range s.ranked {
		if s.full() || !limit() {
			return
		}
		c := &s.ranked[i]
		if s.taken[c.Employee.ID] || !match(c) {
			continue
		}
		s.take(*c)
	}
}

// Select builds the auto-selection from a ranked candidate list.
// Order of construction:
//  1. candidates already scheduled for the request
//  2. male quota from same sub-section males
//  3. female quota from same sub-section females
//  4. unmet male/female quota from the overflow pool
//  5. remaining headcount from the next best candidates of any gender
//
// The construction is greedy and never revisits an earlier pick; anything
// left unmet is reported as a shortfall.
func Select(req model.ManpowerRequest, ranked []Candidate) Selection {
	s := &selector{
		req:      req,
		ranked:   ranked,
		selected: []Candidate{},
		taken:    make(map[int64]bool),
	}

	always := func() bool { return true }
	needMales := func() bool { return s.males < req.MaleCount }
	needFemales := func() bool { return s.females < req.FemaleCount }
	is := func(gender model.Gender, pool Pool) func(c *Candidate) bool {
		return func(c *Candidate) bool {
			return c.Employee.Gender == gender && c.Pool == pool
		}
	}

	s.fill(func(c *Candidate) bool { return c.AlreadyScheduled }, always)
	s.fill(is(model.GenderMale, PoolPrimary), needMales)
	s.fill(is(model.GenderFemale, PoolPrimary), needFemales)
	s.fill(is(model.GenderMale, PoolOverflow), needMales)
	s.fill(is(model.GenderFemale, PoolOverflow), needFemales)
	s.fill(func(c *Candidate) bool { return true }, always)

	return Selection{
		Selected:   s.selected,
		Shortfalls: s.shortfalls(),
	}
}

func (s *selector) shortfalls() []SelectionShortfall {
	shortfalls := []SelectionShortfall{}

	if s.males < s.req.MaleCount {
		shortfalls = append(shortfalls, SelectionShortfall{
			Kind:        ShortfallMale,
			Required:    s.req.MaleCount,
			Selected:    s.males,
			Description: fmt.Sprintf("male quota unmet: selected %d of %d", s.males, s.req.MaleCount),
		})
	}

	if s.females < s.req.FemaleCount {
		shortfalls = append(shortfalls, SelectionShortfall{
			Kind:        ShortfallFemale,
			Required:    s.req.FemaleCount,
			Selected:    s.females,
			Description: fmt.Sprintf("female quota unmet: selected %d of %d", s.females, s.req.FemaleCount),
		})
	}

	if len(s.selected) < s.req.RequestedAmount {
		shortfalls = append(shortfalls, SelectionShortfall{
			Kind:        ShortfallHeadcount,
			Required:    s.req.RequestedAmount,
			Selected:    len(s.selected),
			Description: fmt.Sprintf("headcount unmet: selected %d of %d", len(s.selected), s.req.RequestedAmount),
		})
	}

	return shortfalls
}
