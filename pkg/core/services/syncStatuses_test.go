package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
)

func TestReconcileStatus(t *testing.T) {
	tests := []struct {
		name            string
		status          model.EmployeeStatus
		onLeaveFlag     bool
		hasLeave        bool
		hasActive       bool
		expectedStatus  model.EmployeeStatus
		expectedOnLeave bool
	}{
		{"available stays available", model.EmployeeStatusAvailable, false, false, false, model.EmployeeStatusAvailable, false},
		{"available goes on leave", model.EmployeeStatusAvailable, false, true, false, model.EmployeeStatusOnLeave, true},
		{"stale leave flag is cleared", model.EmployeeStatusAvailable, true, false, false, model.EmployeeStatusAvailable, false},
		{"assigned with work stays assigned", model.EmployeeStatusAssigned, false, false, true, model.EmployeeStatusAssigned, false},
		{"assigned without work is released", model.EmployeeStatusAssigned, false, false, false, model.EmployeeStatusAvailable, false},
		{"assigned goes on leave", model.EmployeeStatusAssigned, false, true, true, model.EmployeeStatusOnLeave, true},
		{"leave ends with no work", model.EmployeeStatusOnLeave, true, false, false, model.EmployeeStatusAvailable, false},
		{"leave ends with pending work", model.EmployeeStatusOnLeave, true, false, true, model.EmployeeStatusAssigned, false},
		{"leave continues", model.EmployeeStatusOnLeave, true, true, false, model.EmployeeStatusOnLeave, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := model.Employee{ID: 1, Status: tt.status, OnLeave: tt.onLeaveFlag}

			status, onLeave := reconcileStatus(emp, tt.hasLeave, tt.hasActive)

			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedOnLeave, onLeave)
		})
	}
}

func TestSyncStatuses(t *testing.T) {
	store := newFulfillStore()
	ctx := context.Background()

	// 1: assigned, schedule in the past -> released
	store.addSchedule(model.Schedule{ID: "past", EmployeeID: 1, RequestID: 50, Date: requestDate.AddDate(0, 0, -3), Status: model.ScheduleStatusAccepted})
	require.NoError(t, store.UpdateEmployeeStatus(ctx, 1, model.EmployeeStatusAssigned, false))

	// 2: assigned, schedule today -> stays assigned
	store.addSchedule(model.Schedule{ID: "today", EmployeeID: 2, RequestID: 51, Date: requestDate, Status: model.ScheduleStatusPending})
	require.NoError(t, store.UpdateEmployeeStatus(ctx, 2, model.EmployeeStatusAssigned, false))

	// 3: available, approved permit starts today -> on leave
	store.permits["p-3"] = model.Permit{ID: "p-3", EmployeeID: 3, StartDate: requestDate, EndDate: requestDate.AddDate(0, 0, 1), Status: model.PermitStatusApproved}

	// 4: on leave, permit ended yesterday -> available
	store.permits["p-4"] = model.Permit{ID: "p-4", EmployeeID: 4, StartDate: requestDate.AddDate(0, 0, -5), EndDate: requestDate.AddDate(0, 0, -1), Status: model.PermitStatusApproved}
	require.NoError(t, store.UpdateEmployeeStatus(ctx, 4, model.EmployeeStatusOnLeave, true))

	// 5: deactivated is never touched
	require.NoError(t, store.UpdateEmployeeStatus(ctx, 5, model.EmployeeStatusDeactivated, true))

	changes, err := SyncStatuses(ctx, store, zap.NewNop(), requestDate)
	require.NoError(t, err)

	assert.ElementsMatch(t, []StatusChange{
		{EmployeeID: 1, From: model.EmployeeStatusAssigned, To: model.EmployeeStatusAvailable},
		{EmployeeID: 3, From: model.EmployeeStatusAvailable, To: model.EmployeeStatusOnLeave, OnLeave: true},
		{EmployeeID: 4, From: model.EmployeeStatusOnLeave, To: model.EmployeeStatusAvailable},
	}, changes)

	assert.Equal(t, model.EmployeeStatusAvailable, store.employees[1].Status)
	assert.Equal(t, model.EmployeeStatusAssigned, store.employees[2].Status)
	assert.Equal(t, model.EmployeeStatusOnLeave, store.employees[3].Status)
	assert.True(t, store.employees[3].OnLeave)
	assert.Equal(t, model.EmployeeStatusAvailable, store.employees[4].Status)
	assert.Equal(t, model.EmployeeStatusDeactivated, store.employees[5].Status)

	// A second sweep is a no-op
	changes, err = SyncStatuses(ctx, store, zap.NewNop(), requestDate)
	require.NoError(t, err)
	assert.Empty(t, changes)
}
