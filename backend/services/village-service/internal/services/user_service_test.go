package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func newTestUsers(e *testEnv) *UserService {
	cfg := &config.Config{OrganizationName: "My Village", AppUrl: "https://village.example.com"}
	return NewUserService(cfg, e.users, e.units, e.projects, e.notifications, e.audit)
}

func (e *testEnv) addApplicant(projectID uuid.UUID, status models.UserStatus) *models.User {
	u := &models.User{
		ID:        uuid.New(),
		ProjectID: &projectID,
		UnitID:    &e.unit.ID,
		Role:      models.RoleResident,
		Status:    status,
		Email:     "applicant@example.com",
		FirstName: "Malee",
	}
	e.users.list = append(e.users.list, u)
	return u
}

func TestApproveRegistration(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	s := newTestUsers(e)
	u := e.addApplicant(e.project.ID, models.UserStatusPending)

	got, err := s.Approve(ctx, e.adminActor(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, got.Status)
	assert.Equal(t, []uuid.UUID{u.ID}, e.notifs.recipients("Registration approved"))
	require.Len(t, e.audits.entries, 1)
	assert.Equal(t, models.AuditApprove, e.audits.entries[0].Action)

	_, err = s.Approve(ctx, e.adminActor(), u.ID)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
	_, err = s.Reject(ctx, e.adminActor(), u.ID, "duplicate")
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeInvalidTransition)
}

func TestRejectRegistration(t *testing.T) {
	e := newTestEnv(t)
	s := newTestUsers(e)
	u := e.addApplicant(e.project.ID, models.UserStatusPending)

	got, err := s.Reject(context.Background(), e.adminActor(), u.ID, "Not an owner of 99/1")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusRejected, got.Status)
	require.NotNil(t, got.RejectReason)
	assert.Equal(t, "Not an owner of 99/1", *got.RejectReason)
	assert.Equal(t, []uuid.UUID{u.ID}, e.notifs.recipients("Registration rejected"))
	assert.Empty(t, e.notifs.recipients("Registration approved"))
}

func TestReviewRegistrationOutsideProject(t *testing.T) {
	e := newTestEnv(t)
	s := newTestUsers(e)
	u := e.addApplicant(uuid.New(), models.UserStatusPending)

	_, err := s.Approve(context.Background(), e.adminActor(), u.ID)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)

	_, err = s.Reject(context.Background(), e.adminActor(), uuid.New(), "unknown")
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
	assert.Empty(t, e.audits.entries)
}
