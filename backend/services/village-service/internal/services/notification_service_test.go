package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

func TestNotifyChannelGating(t *testing.T) {
	tests := []struct {
		name       string
		overrides  map[models.FeatureKey]bool
		withEmail  bool
		withSMS    bool
		wantEmails int
		wantSMS    []string
	}{
		{name: "defaults send email only", withEmail: true, withSMS: true, wantEmails: 2},
		{name: "sms switched on", overrides: map[models.FeatureKey]bool{models.FeatureSMSNotifications: true}, withEmail: true, withSMS: true, wantEmails: 2, wantSMS: []string{"+66812345678"}},
		{name: "email switched off", overrides: map[models.FeatureKey]bool{models.FeatureEmailNotifications: false}, withEmail: true, withSMS: true},
		{name: "notice without email or sms body", overrides: map[models.FeatureKey]bool{models.FeatureSMSNotifications: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			for k, v := range tc.overrides {
				e.features.overrides[k] = v
			}
			// The admin has no phone and is skipped for SMS.
			e.resident.Phone = "081-234-5678"

			email := &recordingEmail{}
			sms := &recordingSMS{}
			cfg := &config.Config{OrganizationName: "My Village"}
			s := NewNotificationService(e.notifs, e.users, e.featureSvc, NewEmailService(cfg, email), NewSMSService(sms))

			n := Notice{
				ProjectID:  e.project.ID,
				Recipients: []*models.User{e.admin, e.resident},
				Type:       models.NotificationGeneral,
				Title:      "Water outage",
				Message:    "Saturday 09:00-12:00",
			}
			if tc.withEmail {
				n.Email = &EmailContent{Subject: "Water outage", PlainText: "Saturday 09:00-12:00"}
			}
			if tc.withSMS {
				n.SMS = "Water outage Saturday 09:00-12:00"
			}
			s.Notify(context.Background(), n)

			assert.Len(t, e.notifs.recipients("Water outage"), 2, "in-app rows are always written")
			require.Len(t, email.sent, tc.wantEmails)
			for _, m := range email.sent {
				assert.Equal(t, "Water outage", m.Subject)
			}
			assert.Equal(t, tc.wantSMS, sms.to)
		})
	}
}

func TestNotifyWithoutRecipientsWritesNothing(t *testing.T) {
	e := newTestEnv(t)
	e.notifications.Notify(context.Background(), Notice{ProjectID: e.project.ID, Title: "Nobody"})
	assert.Empty(t, e.notifs.recipients("Nobody"))
}
