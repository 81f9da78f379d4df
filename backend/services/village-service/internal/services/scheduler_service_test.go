package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func TestSchedulerJobsHaveValidSpecs(t *testing.T) {
	e := newTestEnv(t)
	s := NewSchedulerService(e.billSvc, nil, nil, e.notifications)

	jobs := s.Jobs()
	assert.Len(t, jobs, 4)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSchedulerRunUnknownJob(t *testing.T) {
	e := newTestEnv(t)
	s := NewSchedulerService(e.billSvc, nil, nil, e.notifications)

	err := s.Run(context.Background(), "rebuild_everything")
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestSchedulerRunsOverdueAndPurge(t *testing.T) {
	e := newTestEnv(t)
	late := e.addBill(models.BillStatusPending, 1000, e.now.Add(-48*time.Hour))
	s := NewSchedulerService(e.billSvc, nil, nil, e.notifications)

	require.NoError(t, s.Run(context.Background(), JobOverdueBills))
	assert.Equal(t, models.BillStatusOverdue, e.bill(late.ID).Status)

	before := time.Now().Add(-constants.NotificationRetention)
	require.NoError(t, s.Run(context.Background(), JobNotificationPurge))
	assert.WithinDuration(t, before, e.notifs.purgeBefore, time.Minute)
}
