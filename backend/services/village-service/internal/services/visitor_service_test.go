package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func newTestVisitors(e *testEnv) (*VisitorService, *fakeVisitors) {
	repo := newFakeVisitors()
	s := NewVisitorService(repo, e.units, e.users, e.notifications, e.audit)
	s.now = func() time.Time { return e.now }
	return s, repo
}

func (e *testEnv) addVisitor(repo *fakeVisitors, status models.VisitorStatus, validUntil time.Time) *models.Visitor {
	v := &models.Visitor{
		ID:         uuid.New(),
		ProjectID:  e.project.ID,
		UnitID:     e.unit.ID,
		Name:       "Somchai",
		QRToken:    utils.NewQRToken(),
		ValidUntil: &validUntil,
		Status:     status,
	}
	repo.byID[v.ID] = v
	return v
}

func TestCreateVisitorPass(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s, _ := newTestVisitors(e)
	plate := " 1กข 1234 "

	v, err := s.Create(ctx, e.residentActor(), dtos.CreateVisitorRequest{Name: " Somchai ", LicensePlate: &plate})
	require.NoError(t, err)
	assert.Equal(t, e.unit.ID, v.UnitID, "residents register for their own unit")
	assert.Equal(t, "Somchai", v.Name)
	assert.Equal(t, models.VisitorStatusExpected, v.Status)
	assert.NotEmpty(t, v.QRToken)
	require.NotNil(t, v.ValidUntil)
	assert.Equal(t, e.now.Add(24*time.Hour), *v.ValidUntil)

	_, err = s.Create(ctx, e.adminActor(), dtos.CreateVisitorRequest{Name: "Courier"})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)

	tooLong := e.now.Add(8 * 24 * time.Hour)
	_, err = s.Create(ctx, e.adminActor(), dtos.CreateVisitorRequest{UnitID: &e.unit.ID, Name: "Courier", ValidUntil: &tooLong})
	appErr := requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
	assert.Contains(t, appErr.Message, "7 days")
}

func TestVerifyVisitorPass(t *testing.T) {
	e := newTestEnv(t)
	tomorrow := e.now.Add(24 * time.Hour)
	tests := []struct {
		name       string
		status     models.VisitorStatus
		validUntil time.Time
		wantValid  bool
		wantReason string
	}{
		{"usable", models.VisitorStatusExpected, tomorrow, true, ""},
		{"validity ended", models.VisitorStatusExpected, e.now.Add(-time.Minute), false, "Pass has expired"},
		{"already used", models.VisitorStatusCheckedIn, tomorrow, false, "Pass is checked in"},
		{"withdrawn", models.VisitorStatusCancelled, tomorrow, false, "Pass is cancelled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, repo := newTestVisitors(e)
			v := e.addVisitor(repo, tc.status, tc.validUntil)

			resp, err := s.Verify(context.Background(), e.adminActor(), " "+v.QRToken+" ", false)
			require.NoError(t, err)
			assert.Equal(t, tc.wantValid, resp.Valid)
			assert.Equal(t, tc.wantReason, resp.Reason)
			assert.Equal(t, "99/1", resp.HouseNumber)
			assert.Equal(t, tc.status, repo.byID[v.ID].Status, "verify without check-in changes nothing")
		})
	}
}

func TestVerifyUnknownPass(t *testing.T) {
	e := newTestEnv(t)
	s, _ := newTestVisitors(e)

	_, err := s.Verify(context.Background(), e.adminActor(), "nope", true)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestVerifyAndCheckIn(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s, repo := newTestVisitors(e)
	v := e.addVisitor(repo, models.VisitorStatusExpected, e.now.Add(time.Hour))

	resp, err := s.Verify(ctx, e.adminActor(), v.QRToken, true)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, models.VisitorStatusCheckedIn, resp.Visitor.Status)
	require.NotNil(t, resp.Visitor.CheckInAt)
	assert.Equal(t, e.now, *resp.Visitor.CheckInAt)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Visitor arrived"))

	resp, err = s.Verify(ctx, e.adminActor(), v.QRToken, true)
	require.NoError(t, err)
	assert.False(t, resp.Valid, "a pass admits once")
	assert.Len(t, e.notifs.recipients("Visitor arrived"), 1)
}

func TestCheckInRejectsUnusablePass(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name       string
		status     models.VisitorStatus
		validUntil time.Time
		wantMsg    string
	}{
		{"expired", models.VisitorStatusExpected, e.now.Add(-time.Hour), "Pass has expired"},
		{"used", models.VisitorStatusCheckedOut, e.now.Add(time.Hour), "Pass is checked out"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, repo := newTestVisitors(e)
			v := e.addVisitor(repo, tc.status, tc.validUntil)

			_, err := s.CheckIn(context.Background(), e.adminActor(), v.ID)
			appErr := requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
			assert.Equal(t, tc.wantMsg, appErr.Message)
			assert.Equal(t, tc.status, repo.byID[v.ID].Status)
		})
	}
}

func TestVisitorCheckOut(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tests := []struct {
		status models.VisitorStatus
		wantOK bool
	}{
		{models.VisitorStatusCheckedIn, true},
		{models.VisitorStatusExpected, false},
		{models.VisitorStatusCheckedOut, false},
		{models.VisitorStatusCancelled, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			s, repo := newTestVisitors(e)
			v := e.addVisitor(repo, tc.status, e.now.Add(time.Hour))

			got, err := s.CheckOut(ctx, e.adminActor(), v.ID)
			if !tc.wantOK {
				requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.VisitorStatusCheckedOut, got.Status)
			require.NotNil(t, got.CheckedOutBy)
			assert.Equal(t, e.admin.ID, *got.CheckedOutBy)
		})
	}
}

func TestWalkInVisitor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s, repo := newTestVisitors(e)
	plate := " abc 123 "

	v, err := s.WalkIn(ctx, e.adminActor(), dtos.WalkInVisitorRequest{UnitID: e.unit.ID, Name: "Plumber", LicensePlate: &plate})
	require.NoError(t, err)
	assert.True(t, v.IsWalkIn)
	assert.Equal(t, models.VisitorStatusCheckedIn, v.Status)
	require.NotNil(t, v.LicensePlate)
	assert.Equal(t, "ABC 123", *v.LicensePlate)
	assert.Contains(t, repo.byID, v.ID)
	assert.Equal(t, []uuid.UUID{e.resident.ID}, e.notifs.recipients("Visitor arrived"))

	_, err = s.WalkIn(ctx, e.adminActor(), dtos.WalkInVisitorRequest{UnitID: uuid.New(), Name: "Plumber"})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}
