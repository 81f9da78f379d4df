package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

var testEmailTo string

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test email through the configured SendGrid account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsEmailSyntax(testEmailTo) {
			return fmt.Errorf("invalid --to address %q", testEmailTo)
		}
		cfg := config.LoadConfig()
		defer cfg.Close()

		email := services.NewEmailService(cfg, services.NewSendGridClient(cfg.SendGridAPIKey))
		if !email.Enabled() {
			return fmt.Errorf("SENDGRID_API_KEY is not set")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		if err := email.Send(ctx, "", testEmailTo, services.EmailContent{
			Subject:   cfg.OrganizationName + " test email",
			Heading:   "It works",
			BodyHTML:  "<p>This is a test message from villagectl.</p>",
			PlainText: "This is a test message from villagectl.",
		}); err != nil {
			return err
		}
		utils.Logger.Infof("Test email sent to %s (sandbox=%t)", testEmailTo, cfg.LDFlag_SendgridSandboxMode)
		return nil
	},
}

func init() {
	testEmailCmd.Flags().StringVar(&testEmailTo, "to", "", "Recipient address")
	_ = testEmailCmd.MarkFlagRequired("to")
}
