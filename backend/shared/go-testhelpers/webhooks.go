package testhelpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// PostStripeWebhook signs and posts a mock Stripe event to the webhook endpoint.
func (h *TestHelper) PostStripeWebhook(path string, payload []byte) {
	req, err := http.NewRequest(http.MethodPost, h.BaseURL+path, strings.NewReader(string(payload)))
	require.NoError(h.T, err, "failed to create webhook POST request")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", h.SignStripePayload(payload))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.T, err, "failed to POST webhook payload")
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.T.Fatalf("Webhook POST failed, status=%d, body=%s", resp.StatusCode, h.ReadBody(resp))
	}
}

// SignStripePayload constructs the "Stripe-Signature" header value.
func (h *TestHelper) SignStripePayload(payload []byte) string {
	require.NotEmpty(h.T, h.StripeWebhookSecret, "StripeWebhookSecret is not configured in TestHelper")
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(h.StripeWebhookSecret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.", timestamp)))
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// MockStripeWebhookPayload creates a JSON event envelope around data.
func (h *TestHelper) MockStripeWebhookPayload(eventType string, data map[string]any) []byte {
	payload := map[string]any{
		"id":          "evt_test_" + utils.RandomString(10),
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data": map[string]any{
			"object": data,
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(h.T, err, "Failed to marshal mock Stripe webhook payload")
	return raw
}
