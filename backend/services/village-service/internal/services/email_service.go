package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// EmailSender is satisfied by *sendgrid.Client.
type EmailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type EmailService struct {
	cfg    *config.Config
	client EmailSender
}

// NewEmailService builds a SendGrid-backed service. A nil client (no API
// key) turns every send into a logged no-op.
func NewEmailService(cfg *config.Config, client EmailSender) *EmailService {
	return &EmailService{cfg: cfg, client: client}
}

// NewSendGridClient returns nil when apiKey is empty.
func NewSendGridClient(apiKey string) EmailSender {
	if apiKey == "" {
		return nil
	}
	return sendgrid.NewSendClient(apiKey)
}

func (s *EmailService) Enabled() bool { return s.client != nil }

func (s *EmailService) Send(ctx context.Context, toName, toEmail string, c EmailContent) error {
	if s.client == nil {
		utils.Logger.Warnf("email: SendGrid not configured; skipping %q to %s", c.Subject, toEmail)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := mail.NewEmail(s.cfg.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, c.Subject, to, c.PlainText, c.renderHTML(s.cfg.OrganizationName))

	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid returned status %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}
	return nil
}
