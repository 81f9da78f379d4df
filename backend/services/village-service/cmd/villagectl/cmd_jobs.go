package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
)

var runJobCmd = &cobra.Command{
	Use:       "run-job <name>",
	Short:     "Run one scheduled housekeeping job now",
	Args:      cobra.ExactArgs(1),
	ValidArgs: jobNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		defer cfg.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		pool, err := pgxpool.Connect(ctx, cfg.DBUrl)
		if err != nil {
			return err
		}
		defer pool.Close()

		scheduler := newScheduler(cfg, pool)
		if err := scheduler.Run(ctx, args[0]); err != nil {
			return fmt.Errorf("job %s: %w", args[0], err)
		}
		return nil
	},
}

func jobNames() []string {
	return []string{
		services.JobNotificationPurge,
		services.JobOverdueBills,
		services.JobParcelReminders,
		services.JobVisitorExpiry,
	}
}

// newScheduler wires only what the housekeeping jobs touch.
func newScheduler(cfg *config.Config, db repositories.DB) *services.SchedulerService {
	units := repositories.NewUnitRepository(db)
	users := repositories.NewUserRepository(db)
	projects := repositories.NewProjectRepository(db)

	audit := services.NewAuditService(repositories.NewAuditLogRepository(db))
	features := services.NewFeatureService(repositories.NewProjectFeatureRepository(db), cfg.LDClient, audit)
	email := services.NewEmailService(cfg, services.NewSendGridClient(cfg.SendGridAPIKey))
	sms := services.NewSMSService(services.NewTwilioSender(services.NewTwilioClient(cfg), cfg.LDFlag_TwilioFromPhone))
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(db), users, features, email, sms)

	bills := services.NewBillService(repositories.NewBillRepository(db), units, users, projects, notifications, audit)
	parcels := services.NewParcelService(repositories.NewParcelRepository(db), units, users, notifications, audit)
	visitors := services.NewVisitorService(repositories.NewVisitorRepository(db), units, users, notifications, audit)
	return services.NewSchedulerService(bills, parcels, visitors, notifications)
}
