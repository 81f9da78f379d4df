package services

import (
	"context"
	"fmt"

	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// SMSSender delivers one text message to an E.164 number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioClient returns nil when credentials are missing.
func NewTwilioClient(cfg *config.Config) *twilio.RestClient {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil
	}
	return twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
}

// NewTwilioSender returns nil when there is no client or no sender number.
func NewTwilioSender(client *twilio.RestClient, from string) SMSSender {
	if client == nil || from == "" {
		return nil
	}
	return &twilioSender{client: client, from: from}
}

func (t *twilioSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

type SMSService struct {
	sender SMSSender
}

func NewSMSService(sender SMSSender) *SMSService {
	return &SMSService{sender: sender}
}

func (s *SMSService) Enabled() bool { return s.sender != nil }

// Send normalizes a Thai number to E.164 before handing it to the sender.
func (s *SMSService) Send(ctx context.Context, phone, body string) error {
	if s.sender == nil {
		utils.Logger.Debugf("sms: sender not configured; skipping message to %s", phone)
		return nil
	}
	to, ok := utils.ThaiPhoneToE164(phone)
	if !ok {
		return fmt.Errorf("%w: %q", utils.ErrInvalidPhone, phone)
	}
	return s.sender.SendSMS(ctx, to, body)
}
