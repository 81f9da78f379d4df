package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const testWebhookSecret = "whsec_controller_test"

func newTestWebhookController() *StripeWebhookController {
	cfg := &config.Config{StripeSecretKey: "sk_test_123", StripeWebhookSecret: testWebhookSecret}
	return NewStripeWebhookController(services.NewStripeService(cfg, nil, nil, nil, nil, nil, nil))
}

func stripeEvent(t *testing.T, eventType string, object map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	return raw
}

func signStripe(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.", ts)
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(c *StripeWebhookController, payload []byte, signature string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", bytes.NewReader(payload))
	if signature != "" {
		r.Header.Set("Stripe-Signature", signature)
	}
	rr := httptest.NewRecorder()
	c.WebhookHandler(rr, r)
	return rr
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	rr := postWebhook(newTestWebhookController(), []byte(`{}`), "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, utils.ErrCodeInvalidPayload, decodeError(t, rr).Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	payload := stripeEvent(t, "customer.created", map[string]any{"id": "cus_1"})
	rr := postWebhook(newTestWebhookController(), payload, signStripe(payload, "whsec_someone_else"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookAcknowledgesUnhandledEvents(t *testing.T) {
	payload := stripeEvent(t, "customer.created", map[string]any{"id": "cus_1", "object": "customer"})
	rr := postWebhook(newTestWebhookController(), payload, signStripe(payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRetryableWebhookError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"database outage", errors.New("connection refused"), true},
		{"internal app error", utils.Internal("Failed to update Bill", errors.New("timeout")), true},
		{"row version conflict", utils.NewAppError(http.StatusConflict, utils.ErrCodeRowVersionConflict, "retry", utils.ErrRowVersionConflict), true},
		{"invalid transition", utils.NewAppError(http.StatusConflict, utils.ErrCodeInvalidTransition, "Bill cannot move from cancelled to paid", utils.ErrInvalidTransition), false},
		{"wrapped not found", fmt.Errorf("settle: %w", utils.NotFound("Bill not found")), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retryableWebhookError(tc.err))
		})
	}
}
