package services

import (
	"context"
	"errors"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

func TestFeatureIsEnabledPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		key      models.FeatureKey
		override *bool
		flags    *fakeFlags
		want     bool
	}{
		{name: "built-in default without LaunchDarkly", key: models.FeatureOnlinePayment, want: false},
		{name: "LaunchDarkly beats the default", key: models.FeatureOnlinePayment, flags: &fakeFlags{values: map[string]bool{"online_payment": true}}, want: true},
		{name: "LaunchDarkly default passthrough", key: models.FeatureBills, flags: &fakeFlags{}, want: true},
		{name: "override beats LaunchDarkly", key: models.FeatureOnlinePayment, override: boolPtr(false), flags: &fakeFlags{values: map[string]bool{"online_payment": true}}, want: false},
		{name: "override beats the default", key: models.FeatureSMSNotifications, override: boolPtr(true), want: true},
		{name: "LaunchDarkly failure falls back", key: models.FeaturePatrol, flags: &fakeFlags{err: errors.New("offline"), values: map[string]bool{"patrol": false}}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			if tc.override != nil {
				e.features.overrides[tc.key] = *tc.override
			}
			var flags FlagEvaluator
			if tc.flags != nil {
				flags = tc.flags
			}
			s := NewFeatureService(e.features, flags, e.audit)

			got, err := s.IsEnabled(context.Background(), e.project.ID, tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			if tc.flags == nil {
				return
			}
			if tc.override != nil {
				assert.Empty(t, tc.flags.contexts, "an override skips LaunchDarkly")
				return
			}
			require.Len(t, tc.flags.contexts, 1)
			assert.Equal(t, ldcontext.Kind("project"), tc.flags.contexts[0].Kind())
			assert.Equal(t, e.project.ID.String(), tc.flags.contexts[0].Key())
		})
	}
}

func TestFeatureIsEnabledUnknownKey(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.featureSvc.IsEnabled(context.Background(), e.project.ID, models.FeatureKey("teleport"))
	require.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
