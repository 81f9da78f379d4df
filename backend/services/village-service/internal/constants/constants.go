package constants

import "time"

const (
	// Login lockout
	MaxFailedLogins     = 5
	LoginLockoutMinutes = 15

	// Rate limits (requests per minute, burst)
	LoginRatePerMinute         = 10
	LoginRateBurst             = 5
	VisitorVerifyRatePerMinute = 60
	VisitorVerifyRateBurst     = 20
	RateLimiterIdleTTL         = 10 * time.Minute

	// Visitors
	VisitorPassDefaultValidity = 24 * time.Hour
	VisitorPassMaxValidity     = 7 * 24 * time.Hour
	VisitorQRPixelSize         = 320

	// Bookings
	BookingMaxDaysAhead = 60

	// Parcels
	ParcelReminderAfter = 72 * time.Hour

	// Notifications
	NotificationRetention = 90 * 24 * time.Hour

	// Slip check
	SlipImageMaxBytes = 5 << 20

	// Scheduler
	JobTimeout = 5 * time.Minute

	// Stripe
	StripeCurrencyTHB               = "thb"
	WebhookMetadataBillIDKey        = "bill_id"
	WebhookMetadataProjectIDKey     = "project_id"
	WebhookMetadataGeneratedByKey   = "generated_by"
	WebhookMetadataUserIDKey        = "user_id"
	PaymentIntentSucceededEvent     = "payment_intent.succeeded"
	PaymentIntentPaymentFailedEvent = "payment_intent.payment_failed"
)
