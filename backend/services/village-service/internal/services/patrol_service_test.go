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

func newTestPatrol(e *testEnv) (*PatrolService, *fakePatrol) {
	repo := newFakePatrol()
	s := NewPatrolService(repo, e.audit)
	s.now = func() time.Time { return e.now }
	return s, repo
}

func TestCreateCheckpoint(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestPatrol(e)

	c, err := s.CreateCheckpoint(context.Background(), e.adminActor(), dtos.CreateCheckpointRequest{
		Name: "  North gate ", Code: "gate01", Latitude: 13.7570, Longitude: 100.5018,
	})
	require.NoError(t, err)
	assert.Equal(t, "North gate", c.Name)
	assert.Equal(t, "GATE01", c.Code)
	assert.Equal(t, defaultCheckpointRadiusM, c.RadiusM)
	assert.True(t, c.IsActive)
	assert.Contains(t, repo.checkpoints, c.ID)

	generated, err := s.CreateCheckpoint(context.Background(), e.adminActor(), dtos.CreateCheckpointRequest{
		Name: "Pool", Latitude: 13.7560, Longitude: 100.5020, RadiusM: 50,
	})
	require.NoError(t, err)
	assert.Len(t, generated.Code, checkpointCodeLength)
	assert.Regexp(t, `^[A-Z2-7]+$`, generated.Code)
	assert.Equal(t, 50, generated.RadiusM)

	repo.createErr = uniqueViolation()
	_, err = s.CreateCheckpoint(context.Background(), e.adminActor(), dtos.CreateCheckpointRequest{Name: "Dup", Code: "GATE01"})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestCheckpointFromOtherProjectIsHidden(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestPatrol(e)
	foreign := &models.PatrolCheckpoint{ID: uuid.New(), ProjectID: uuid.New(), Code: "X1", IsActive: true}
	repo.checkpoints[foreign.ID] = foreign

	_, err := s.GetCheckpoint(context.Background(), e.adminActor(), foreign.ID)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	name := "renamed"
	_, err = s.UpdateCheckpoint(context.Background(), e.adminActor(), foreign.ID, dtos.UpdateCheckpointRequest{Name: &name})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	assert.Empty(t, repo.checkpoints[foreign.ID].Name)
}

func TestPatrolScan(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestPatrol(e)
	cp := &models.PatrolCheckpoint{
		ID: uuid.New(), ProjectID: e.project.ID, Name: "North gate", Code: "GATE01",
		Latitude: 13.7570, Longitude: 100.5018, RadiusM: 30, IsActive: true,
	}
	repo.checkpoints[cp.ID] = cp

	tests := []struct {
		name   string
		lat    float64
		status models.PatrolLogStatus
	}{
		{"at the tag", 13.7570, models.PatrolLogOK},
		{"110 m away", 13.7580, models.PatrolLogOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := s.Scan(context.Background(), e.staffActor(), dtos.PatrolScanRequest{
				Code: "gate01", Latitude: tt.lat, Longitude: cp.Longitude,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, l.Status)
			assert.Equal(t, cp.ID, l.CheckpointID)
			assert.Equal(t, e.admin.ID, l.GuardID)
			assert.Equal(t, e.now, l.ScannedAt)
		})
	}
	assert.Len(t, repo.logs, 2, "out-of-range scans are still logged")
}

func TestPatrolScanInactiveCheckpoint(t *testing.T) {
	e := newTestEnv(t)
	s, repo := newTestPatrol(e)
	cp := &models.PatrolCheckpoint{ID: uuid.New(), ProjectID: e.project.ID, Code: "OLD1", IsActive: false}
	repo.checkpoints[cp.ID] = cp

	_, err := s.Scan(context.Background(), e.staffActor(), dtos.PatrolScanRequest{Code: "OLD1"})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	_, err = s.Scan(context.Background(), e.staffActor(), dtos.PatrolScanRequest{Code: "MISSING"})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	assert.Empty(t, repo.logs)
}
