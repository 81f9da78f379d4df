package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaintenanceTransitions(t *testing.T) {
	assert.True(t, MaintenanceStatusPending.CanTransitionTo(MaintenanceStatusInProgress))
	assert.True(t, MaintenanceStatusPending.CanTransitionTo(MaintenanceStatusCancelled))
	assert.True(t, MaintenanceStatusInProgress.CanTransitionTo(MaintenanceStatusCompleted))
	assert.False(t, MaintenanceStatusPending.CanTransitionTo(MaintenanceStatusCompleted))
	assert.False(t, MaintenanceStatusCompleted.CanTransitionTo(MaintenanceStatusPending))
	assert.False(t, MaintenanceStatusCancelled.CanTransitionTo(MaintenanceStatusInProgress))
}

func TestVisitorTransitions(t *testing.T) {
	assert.True(t, VisitorStatusExpected.CanTransitionTo(VisitorStatusCheckedIn))
	assert.True(t, VisitorStatusCheckedIn.CanTransitionTo(VisitorStatusCheckedOut))
	assert.False(t, VisitorStatusExpected.CanTransitionTo(VisitorStatusCheckedOut))
	assert.False(t, VisitorStatusCheckedOut.CanTransitionTo(VisitorStatusCheckedIn))
}

func TestBillTransitions(t *testing.T) {
	assert.True(t, BillStatusPending.CanTransitionTo(BillStatusPendingVerification))
	assert.True(t, BillStatusPendingVerification.CanTransitionTo(BillStatusPaid))
	assert.False(t, BillStatusPaid.CanTransitionTo(BillStatusPending))
	assert.True(t, BillStatusOverdue.Payable())
	assert.False(t, BillStatusPendingVerification.Payable())
}

func TestBookingOverlap(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: base, EndTime: base.Add(2 * time.Hour)}

	assert.True(t, b.Overlaps(base.Add(time.Hour), base.Add(3*time.Hour)))
	assert.True(t, b.Overlaps(base.Add(-time.Hour), base.Add(30*time.Minute)))
	assert.False(t, b.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)), "back-to-back is allowed")
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base))
	assert.True(t, BookingStatusPending.Holds())
	assert.False(t, BookingStatusRejected.Holds())
}

func TestFeatureKeys(t *testing.T) {
	assert.True(t, FeatureParcels.Known())
	assert.False(t, FeatureKey("teleport").Known())
	assert.False(t, FeatureDefaults[FeatureOnlinePayment])
}
