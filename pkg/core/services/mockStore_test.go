package services

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/db"
)

// mockStore is an in-memory db.Database. Units of work are serialised by a
// mutex and rolled back from a snapshot when fn returns an error.
type mockStore struct {
	mu sync.Mutex

	employees   map[int64]model.Employee
	requests    map[int64]model.ManpowerRequest
	schedules   map[string]model.Schedule
	permits     map[string]model.Permit
	subSections map[int64]model.SubSection
	shifts      map[int64]model.Shift
	metrics     map[int64]model.EmployeeMetrics

	nextRequestID int64
	txCount       int
}

var _ db.Database = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		employees:     make(map[int64]model.Employee),
		requests:      make(map[int64]model.ManpowerRequest),
		schedules:     make(map[string]model.Schedule),
		permits:       make(map[string]model.Permit),
		subSections:   make(map[int64]model.SubSection),
		shifts:        make(map[int64]model.Shift),
		metrics:       make(map[int64]model.EmployeeMetrics),
		nextRequestID: 1000,
	}
}

// Fixture helpers

func (m *mockStore) addEmployee(id int64, gender model.Gender, empType model.EmployeeType, subSections ...int64) {
	memberships := make([]model.SubSectionMembership, len(subSections))
	for i, s := range subSections {
		memberships[i] = model.SubSectionMembership{SubSectionID: s}
	}
	m.employees[id] = model.Employee{
		ID:          id,
		Name:        "employee",
		Email:       "employee@example.com",
		Type:        empType,
		Status:      model.EmployeeStatusAvailable,
		Gender:      gender,
		SubSections: memberships,
	}
}

func (m *mockStore) setScore(id int64, score int64) {
	m.metrics[id] = model.EmployeeMetrics{
		WorkloadPoints:  decimal.NewFromInt(score),
		BlindTestPoints: decimal.Zero,
		AverageRating:   decimal.Zero,
	}
}

func (m *mockStore) addRequest(req model.ManpowerRequest) {
	if req.Status == "" {
		req.Status = model.RequestStatusPending
	}
	m.requests[req.ID] = req
}

func (m *mockStore) addSchedule(s model.Schedule) {
	if s.Status == "" {
		s.Status = model.ScheduleStatusPending
	}
	m.schedules[s.ID] = s
}

func (m *mockStore) schedulesFor(employeeID int64, date time.Time) []model.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.EmployeeID == employeeID && s.Date.Equal(model.DateOf(date)) {
			result = append(result, s)
		}
	}
	return result
}

func sortedByID[T any](items map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(items))
	result := make([]T, 0, len(keys))
	for _, k := range keys {
		result = append(result, items[k])
	}
	return result
}

// EmployeeStore

func (m *mockStore) ListActiveEmployees(ctx context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Employee
	for _, e := range sortedByID(m.employees) {
		if e.Status != model.EmployeeStatusDeactivated {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

func (m *mockStore) GetEmployeesByStatus(ctx context.Context, status model.EmployeeStatus) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Employee
	for _, e := range sortedByID(m.employees) {
		if e.Status == status {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateEmployeeStatus(id, status, onLeave)
}

func (m *mockStore) updateEmployeeStatus(id int64, status model.EmployeeStatus, onLeave bool) error {
	e, ok := m.employees[id]
	if !ok {
		return db.ErrNotFound
	}
	e.Status = status
	e.OnLeave = onLeave
	m.employees[id] = e
	return nil
}

// RequestStore

func (m *mockStore) GetRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (m *mockStore) InsertRequest(ctx context.Context, req *model.ManpowerRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRequestID++
	req.ID = m.nextRequestID
	m.requests[req.ID] = *req
	return nil
}

func (m *mockStore) RequestExists(ctx context.Context, subSectionID, shiftID int64, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.SubSectionID == subSectionID && r.ShiftID == shiftID && r.Date.Equal(model.DateOf(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateRequestStatus(id, status)
}

func (m *mockStore) updateRequestStatus(id int64, status model.RequestStatus) error {
	r, ok := m.requests[id]
	if !ok {
		return db.ErrNotFound
	}
	r.Status = status
	m.requests[id] = r
	return nil
}

// ScheduleStore

func (m *mockStore) scheduleExistsOnDate(employeeID int64, date time.Time) bool {
	for _, s := range m.schedules {
		if s.EmployeeID == employeeID && s.Status.IsActive() && s.Date.Equal(model.DateOf(date)) {
			return true
		}
	}
	return false
}

func (m *mockStore) CountSchedulesInWindow(ctx context.Context, employeeID int64, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.schedules {
		if s.EmployeeID == employeeID && !s.Date.Before(from) && !s.Date.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) GetSchedulesOnDate(ctx context.Context, date time.Time) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.Date.Equal(model.DateOf(date)) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockStore) GetSchedulesForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.EmployeeID == employeeID && !s.Date.Before(from) && !s.Date.After(to) {
			result = append(result, s)
		}
	}
	slices.SortFunc(result, func(a, b model.Schedule) int { return a.Date.Compare(b.Date) })
	return result, nil
}

func (m *mockStore) GetScheduleHours(ctx context.Context, employeeID int64) ([]model.ScheduleHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScheduleHours
	for _, s := range m.schedules {
		if s.EmployeeID != employeeID {
			continue
		}
		h := model.ScheduleHours{ScheduleID: s.ID, RequestID: s.RequestID, Date: s.Date}
		if r, ok := m.requests[s.RequestID]; ok {
			if shift, ok := m.shifts[r.ShiftID]; ok {
				hours := shift.Hours
				h.Hours = &hours
			}
		}
		result = append(result, h)
	}
	return result, nil
}

func (m *mockStore) GetEmployeesWithActiveSchedulesFrom(ctx context.Context, date time.Time) (map[int64]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64]bool)
	for _, s := range m.schedules {
		if s.Status.IsActive() && !s.Date.Before(model.DateOf(date)) {
			result[s.EmployeeID] = true
		}
	}
	return result, nil
}

// PermitStore

func (m *mockStore) InsertPermit(ctx context.Context, permit *model.Permit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permits[permit.ID] = *permit
	return nil
}

func (m *mockStore) GetPermit(ctx context.Context, id string) (*model.Permit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.permits[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *mockStore) GetApprovedPermitsCovering(ctx context.Context, date time.Time) ([]model.Permit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Permit
	for _, p := range m.permits {
		if p.Status == model.PermitStatusApproved && p.Covers(date) {
			result = append(result, p)
		}
	}
	return result, nil
}

// CatalogStore

func (m *mockStore) GetSubSection(ctx context.Context, id int64) (*model.SubSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subSections[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (m *mockStore) GetShift(ctx context.Context, id int64) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

// MetricsProvider

func (m *mockStore) GetMetrics(ctx context.Context, employeeIDs []int64) (map[int64]model.EmployeeMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64]model.EmployeeMetrics)
	for _, id := range employeeIDs {
		if metrics, ok := m.metrics[id]; ok {
			result[id] = metrics
		}
	}
	return result, nil
}

// Transactor

func (m *mockStore) WithinTx(ctx context.Context, fn func(tx db.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	employees := maps.Clone(m.employees)
	requests := maps.Clone(m.requests)
	schedules := maps.Clone(m.schedules)
	permits := maps.Clone(m.permits)

	if err := fn(&mockTx{store: m}); err != nil {
		m.employees = employees
		m.requests = requests
		m.schedules = schedules
		m.permits = permits
		return err
	}
	return nil
}

// mockTx operates on the store while WithinTx holds its mutex
type mockTx struct {
	store *mockStore
}

func (t *mockTx) LockRequest(ctx context.Context, id int64) (*model.ManpowerRequest, error) {
	r, ok := t.store.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (t *mockTx) LockEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	e, ok := t.store.employees[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

func (t *mockTx) LockSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	s, ok := t.store.schedules[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (t *mockTx) LockPermit(ctx context.Context, id string) (*model.Permit, error) {
	p, ok := t.store.permits[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (t *mockTx) ScheduleExistsOnDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	return t.store.scheduleExistsOnDate(employeeID, date), nil
}

func (t *mockTx) ApprovedPermitCoversDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	for _, p := range t.store.permits {
		if p.EmployeeID == employeeID && p.Status == model.PermitStatusApproved && p.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockTx) ActiveScheduleExistsFrom(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	for _, s := range t.store.schedules {
		if s.EmployeeID == employeeID && s.Status.IsActive() && !s.Date.Before(model.DateOf(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockTx) InsertSchedule(ctx context.Context, schedule *model.Schedule) error {
	// Mirrors the unique (employee_id, date) index over active schedules
	if t.store.scheduleExistsOnDate(schedule.EmployeeID, schedule.Date) {
		return &model.ConflictError{EmployeeID: schedule.EmployeeID, Date: schedule.Date, Reason: "already scheduled on this date"}
	}
	t.store.schedules[schedule.ID] = *schedule
	return nil
}

func (t *mockTx) UpdateEmployeeStatus(ctx context.Context, id int64, status model.EmployeeStatus, onLeave bool) error {
	return t.store.updateEmployeeStatus(id, status, onLeave)
}

func (t *mockTx) UpdateRequestStatus(ctx context.Context, id int64, status model.RequestStatus) error {
	return t.store.updateRequestStatus(id, status)
}

func (t *mockTx) UpdateScheduleStatus(ctx context.Context, id string, status model.ScheduleStatus, reason string) error {
	s, ok := t.store.schedules[id]
	if !ok {
		return db.ErrNotFound
	}
	s.Status = status
	s.RejectionReason = reason
	t.store.schedules[id] = s
	return nil
}

func (t *mockTx) UpdatePermitStatus(ctx context.Context, id string, status model.PermitStatus) error {
	p, ok := t.store.permits[id]
	if !ok {
		return db.ErrNotFound
	}
	p.Status = status
	t.store.permits[id] = p
	return nil
}

// mockNotifier records notifications and optionally fails for some employees
type mockNotifier struct {
	mu       sync.Mutex
	notified []int64
	failFor  map[int64]error
}

func (n *mockNotifier) NotifyScheduled(ctx context.Context, employee model.Employee, req model.ManpowerRequest, schedule model.Schedule) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failFor[employee.ID]; ok {
		return err
	}
	n.notified = append(n.notified, employee.ID)
	return nil
}
