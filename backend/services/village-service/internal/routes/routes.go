package routes

const (
	// Health & metrics
	Health  = "/health"
	Metrics = "/metrics"

	Base = "/api/v1"

	// Auth
	AuthRegister = "/api/v1/auth/register"
	AuthLogin    = "/api/v1/auth/login"
	AuthLogout   = "/api/v1/auth/logout"
	AuthMe       = "/api/v1/auth/me"
	AuthPassword = "/api/v1/auth/password"

	// Projects (super admin) and per-project features
	Projects        = "/api/v1/admin/projects"
	ProjectByID     = "/api/v1/admin/projects/{id}"
	ProjectFeatures = "/api/v1/admin/projects/{id}/features"
	Features        = "/api/v1/features"

	// Units
	Units    = "/api/v1/units"
	UnitByID = "/api/v1/units/{id}"

	// Users / onboarding
	Users       = "/api/v1/users"
	UserByID    = "/api/v1/users/{id}"
	UserApprove = "/api/v1/users/{id}/approve"
	UserReject  = "/api/v1/users/{id}/reject"

	// Maintenance
	Maintenance     = "/api/v1/maintenance"
	MaintenanceByID = "/api/v1/maintenance/{id}"

	// Facilities & bookings
	Facilities           = "/api/v1/facilities"
	FacilityByID         = "/api/v1/facilities/{id}"
	FacilityAvailability = "/api/v1/facilities/{id}/availability"
	Bookings             = "/api/v1/bookings"
	BookingByID          = "/api/v1/bookings/{id}"
	BookingApprove       = "/api/v1/bookings/{id}/approve"
	BookingReject        = "/api/v1/bookings/{id}/reject"
	BookingCancel        = "/api/v1/bookings/{id}/cancel"

	// Parcels
	Parcels      = "/api/v1/parcels"
	ParcelByID   = "/api/v1/parcels/{id}"
	ParcelPickup = "/api/v1/parcels/{id}/pickup"
	ParcelReturn = "/api/v1/parcels/{id}/return"

	// Visitors
	Visitors        = "/api/v1/visitors"
	VisitorWalkIn   = "/api/v1/visitors/walk-in"
	VisitorVerify   = "/api/v1/visitors/verify"
	VisitorByID     = "/api/v1/visitors/{id}"
	VisitorQR       = "/api/v1/visitors/{id}/qr"
	VisitorCheckIn  = "/api/v1/visitors/{id}/checkin"
	VisitorCheckOut = "/api/v1/visitors/{id}/checkout"
	VisitorCancel   = "/api/v1/visitors/{id}/cancel"

	// Bills & payments
	Bills         = "/api/v1/bills"
	BillsSummary  = "/api/v1/bills/summary"
	BillByID      = "/api/v1/bills/{id}"
	BillCancel    = "/api/v1/bills/{id}/cancel"
	BillPayments  = "/api/v1/bills/{id}/payments"
	BillPromptPay = "/api/v1/bills/{id}/promptpay"
	Payments      = "/api/v1/payments"
	PaymentByID   = "/api/v1/payments/{id}"
	PaymentVerify = "/api/v1/payments/{id}/verify"
	PaymentReject = "/api/v1/payments/{id}/reject"
	StripeWebhook = "/api/v1/stripe/webhook"

	// Attendance & patrol
	AttendanceCheckIn  = "/api/v1/attendance/check-in"
	AttendanceCheckOut = "/api/v1/attendance/check-out"
	AttendanceCurrent  = "/api/v1/attendance/current"
	Attendance         = "/api/v1/attendance"
	PatrolCheckpoints  = "/api/v1/patrol/checkpoints"
	PatrolCheckpoint   = "/api/v1/patrol/checkpoints/{id}"
	PatrolScan         = "/api/v1/patrol/scan"
	PatrolLogs         = "/api/v1/patrol/logs"

	// Notifications
	Notifications            = "/api/v1/notifications"
	NotificationsUnreadCount = "/api/v1/notifications/unread-count"
	NotificationsReadAll     = "/api/v1/notifications/read-all"
	NotificationRead         = "/api/v1/notifications/{id}/read"
	NotificationByID         = "/api/v1/notifications/{id}"

	// Audit
	AuditLogs = "/api/v1/audit-logs"
)
