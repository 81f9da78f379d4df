package services

import (
	"context"
	"time"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// Job names as reported in logs and metrics.
const (
	JobOverdueBills      = "overdue_bills"
	JobParcelReminders   = "parcel_reminders"
	JobVisitorExpiry     = "visitor_expiry"
	JobNotificationPurge = "notification_purge"
)

// SchedulerService runs the periodic housekeeping jobs on a UTC cron.
type SchedulerService struct {
	cron          *cron.Cron
	bills         *BillService
	parcels       *ParcelService
	visitors      *VisitorService
	notifications *NotificationService
	timeout       time.Duration
}

func NewSchedulerService(bills *BillService, parcels *ParcelService, visitors *VisitorService, notifications *NotificationService) *SchedulerService {
	return &SchedulerService{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		bills:         bills,
		parcels:       parcels,
		visitors:      visitors,
		notifications: notifications,
		timeout:       constants.JobTimeout,
	}
}

// Jobs maps each job name to its cron spec.
func (s *SchedulerService) Jobs() map[string]string {
	return map[string]string{
		JobOverdueBills:      "0 1 * * *",
		JobParcelReminders:   "0 2 * * *",
		JobVisitorExpiry:     "@hourly",
		JobNotificationPurge: "30 3 * * *",
	}
}

// Start registers every job and starts the cron loop.
func (s *SchedulerService) Start() error {
	for name, spec := range s.Jobs() {
		if _, err := s.cron.AddFunc(spec, func() { _ = s.Run(context.Background(), name) }); err != nil {
			return err
		}
	}
	s.cron.Start()
	utils.Logger.Infof("Scheduler started with %d jobs", len(s.Jobs()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// Run executes one job by name under the job timeout and records the
// outcome. Also used by villagectl to trigger jobs by hand.
func (s *SchedulerService) Run(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var (
		n   int64
		err error
	)
	switch name {
	case JobOverdueBills:
		var c int
		c, err = s.bills.MarkOverdue(ctx)
		n = int64(c)
	case JobParcelReminders:
		var c int
		c, err = s.parcels.SendReminders(ctx)
		n = int64(c)
	case JobVisitorExpiry:
		n, err = s.visitors.ExpireStale(ctx)
	case JobNotificationPurge:
		n, err = s.notifications.PurgeRead(ctx, constants.NotificationRetention)
	default:
		return utils.NotFound("Unknown job " + name)
	}

	elapsed := time.Since(start)
	middleware.RecordJobRun(name, elapsed, err == nil)
	entry := utils.Logger.WithFields(logrus.Fields{"job": name, "affected": n, "elapsed": elapsed.String()})
	if err != nil {
		entry.WithError(err).Error("Scheduled job failed")
		return err
	}
	entry.Info("Scheduled job finished")
	return nil
}
