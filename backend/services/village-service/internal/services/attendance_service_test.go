package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func newTestAttendance(e *testEnv) (*AttendanceService, *fakeAttendance) {
	repo := newFakeAttendance()
	s := NewAttendanceService(repo, e.projects, e.audit)
	s.now = func() time.Time { return e.now }
	return s, repo
}

func (e *testEnv) staffActor() Actor {
	return Actor{UserID: e.admin.ID, Role: models.RoleStaff, ProjectID: e.project.ID}
}

// ~110 m north of the project center.
func (e *testEnv) nearby() dtos.LocationRequest {
	return dtos.LocationRequest{Latitude: e.project.Latitude + 0.001, Longitude: e.project.Longitude}
}

// ~1.1 km north of the project center.
func (e *testEnv) faraway() dtos.LocationRequest {
	return dtos.LocationRequest{Latitude: e.project.Latitude + 0.01, Longitude: e.project.Longitude}
}

func TestCheckInWithinGeofence(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestAttendance(e)

	att, err := s.CheckIn(context.Background(), e.staffActor(), e.nearby())
	require.NoError(t, err)
	assert.Equal(t, e.now, att.CheckInAt)
	assert.InDelta(t, 111, att.CheckInDistanceM, 2)
	assert.True(t, att.IsOpen())
	assert.Len(t, repo.byID, 1)
	require.Len(t, e.audits.entries, 1)
	assert.Equal(t, models.AuditCheckIn, e.audits.entries[0].Action)

	_, err = s.CheckIn(context.Background(), e.staffActor(), e.nearby())
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestCheckInOutsideGeofence(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestAttendance(e)

	_, err := s.CheckIn(context.Background(), e.staffActor(), e.faraway())
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity, utils.ErrCodeLocationInaccurate)
	details, ok := appErr.Details.(dtos.LocationErrorDetails)
	require.True(t, ok)
	assert.Equal(t, 300, details.RadiusM)
	assert.Greater(t, details.DistanceM, 1000.0)
	assert.Empty(t, repo.byID)
}

func TestCheckInFallsBackToDefaultRadius(t *testing.T) {
	e := newTestEnv(t)
	e.project.GeofenceRadiusM = 0
	s, _ := newTestAttendance(e)

	_, err := s.CheckIn(context.Background(), e.staffActor(), e.nearby())
	require.NoError(t, err)
}

func TestCheckOut(t *testing.T) {
	e := newTestEnv(t)
	s, _ := newTestAttendance(e)

	_, err := s.CheckOut(context.Background(), e.staffActor(), e.nearby())
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	_, err = s.CheckIn(context.Background(), e.staffActor(), e.nearby())
	require.NoError(t, err)

	e.now = e.now.Add(8 * time.Hour)
	_, err = s.CheckOut(context.Background(), e.staffActor(), e.faraway())
	requireAppError(t, err, http.StatusUnprocessableEntity, utils.ErrCodeLocationInaccurate)

	note := "handover to night shift"
	req := e.nearby()
	req.Note = &note
	att, err := s.CheckOut(context.Background(), e.staffActor(), req)
	require.NoError(t, err)
	require.NotNil(t, att.CheckOutAt)
	assert.Equal(t, e.now, *att.CheckOutAt)
	assert.Equal(t, note, *att.Note)

	current, err := s.Current(context.Background(), e.staffActor())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestAttendanceListScopesNonAdminsToSelf(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestAttendance(e)
	other := e.resident.ID

	_, err := s.List(context.Background(), e.staffActor(), dtos.AttendanceQuery{UserID: &other})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFlt.UserID)
	assert.Equal(t, e.admin.ID, *repo.lastFlt.UserID)

	_, err = s.List(context.Background(), e.adminActor(), dtos.AttendanceQuery{UserID: &other})
	require.NoError(t, err)
	assert.Equal(t, other, *repo.lastFlt.UserID)
	assert.Equal(t, e.project.ID, repo.lastFlt.ProjectID)
}
