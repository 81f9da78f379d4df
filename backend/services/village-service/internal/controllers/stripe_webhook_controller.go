package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const maxWebhookBodyBytes = 65536

type StripeWebhookController struct {
	stripeService *services.StripeService
}

func NewStripeWebhookController(s *services.StripeService) *StripeWebhookController {
	return &StripeWebhookController{stripeService: s}
}

// WebhookHandler -> POST /api/v1/stripe/webhook
func (c *StripeWebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing Stripe-Signature header", nil)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read webhook body", nil, err)
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, c.stripeService.WebhookSecret())
	if err != nil {
		utils.Logger.WithError(err).Error("Stripe webhook signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			utils.Logger.WithError(err).Errorf("Could not parse stripe.PaymentIntent object for event type %s", event.Type)
			break
		}
		if event.Type == stripe.EventTypePaymentIntentSucceeded {
			err = c.stripeService.HandlePaymentIntentSucceeded(r.Context(), &pi)
		} else {
			err = c.stripeService.HandlePaymentIntentFailed(r.Context(), &pi)
		}
		if err != nil {
			if !retryableWebhookError(err) {
				utils.Logger.WithError(err).Errorf("Dropping %s for %s; redelivery cannot succeed", event.Type, pi.ID)
				break
			}
			// Non-2xx makes Stripe retry the delivery.
			utils.Logger.WithError(err).Errorf("Failed to process %s for %s", event.Type, pi.ID)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		utils.Logger.Infof("Unhandled Stripe event type received: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// retryableWebhookError reports whether a handler failure may clear up on a
// later delivery. Client-class app errors other than a version conflict
// are permanent.
func retryableWebhookError(err error) bool {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode >= http.StatusInternalServerError || appErr.Code == utils.ErrCodeRowVersionConflict
	}
	return true
}
