package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata" // Load timezone data

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/app"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/controllers"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/routes"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize village-service:", err)
	}
	defer application.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := application.Migrate(ctx)
		cancel()
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), application.DB, cfg.SeedPassword); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	// Repositories
	projectRepo := repositories.NewProjectRepository(application.DB)
	featureRepo := repositories.NewProjectFeatureRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)
	maintenanceRepo := repositories.NewMaintenanceRepository(application.DB)
	facilityRepo := repositories.NewFacilityRepository(application.DB)
	bookingRepo := repositories.NewBookingRepository(application.DB)
	parcelRepo := repositories.NewParcelRepository(application.DB)
	visitorRepo := repositories.NewVisitorRepository(application.DB)
	billRepo := repositories.NewBillRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	attendanceRepo := repositories.NewAttendanceRepository(application.DB)
	patrolRepo := repositories.NewPatrolRepository(application.DB)
	notificationRepo := repositories.NewNotificationRepository(application.DB)
	auditRepo := repositories.NewAuditLogRepository(application.DB)

	// External clients; each is nil when unconfigured.
	twClient := services.NewTwilioClient(cfg)
	sgClient := services.NewSendGridClient(cfg.SendGridAPIKey)

	// Services
	auditService := services.NewAuditService(auditRepo)
	featureService := services.NewFeatureService(featureRepo, cfg.LDClient, auditService)
	emailService := services.NewEmailService(cfg, sgClient)
	smsService := services.NewSMSService(services.NewTwilioSender(twClient, cfg.LDFlag_TwilioFromPhone))
	notificationService := services.NewNotificationService(notificationRepo, userRepo, featureService, emailService, smsService)

	jwtService := services.NewJWTService(cfg)
	authService := services.NewAuthService(cfg, userRepo, projectRepo, unitRepo, jwtService, notificationService, auditService, twClient)
	projectService := services.NewProjectService(projectRepo, auditService)
	unitService := services.NewUnitService(unitRepo, auditService)
	userService := services.NewUserService(cfg, userRepo, unitRepo, projectRepo, notificationService, auditService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, userRepo, notificationService, auditService)
	facilityService := services.NewFacilityService(facilityRepo, bookingRepo, projectRepo, auditService)
	bookingService := services.NewBookingService(bookingRepo, facilityRepo, projectRepo, userRepo, notificationService, auditService)
	parcelService := services.NewParcelService(parcelRepo, unitRepo, userRepo, notificationService, auditService)
	visitorService := services.NewVisitorService(visitorRepo, unitRepo, userRepo, notificationService, auditService)
	billService := services.NewBillService(billRepo, unitRepo, userRepo, projectRepo, notificationService, auditService)
	slipCheckService := services.NewSlipCheckService(cfg.OpenAIAPIKey)
	paymentService := services.NewPaymentService(paymentRepo, billService, featureService, slipCheckService, notificationService, auditService)
	stripeService := services.NewStripeService(cfg, billService, billRepo, paymentRepo, userRepo, notificationService, auditService)
	attendanceService := services.NewAttendanceService(attendanceRepo, projectRepo, auditService)
	patrolService := services.NewPatrolService(patrolRepo, auditService)

	scheduler := services.NewSchedulerService(billService, parcelService, visitorService, notificationService)
	if err := scheduler.Start(); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule housekeeping jobs")
	}
	defer scheduler.Stop()

	// Controllers
	healthController := controllers.NewHealthController(application.DB)
	authController := controllers.NewAuthController(authService)
	projectController := controllers.NewProjectController(projectService, featureService)
	unitController := controllers.NewUnitController(unitService)
	userController := controllers.NewUserController(userService)
	maintenanceController := controllers.NewMaintenanceController(maintenanceService)
	facilityController := controllers.NewFacilityController(facilityService)
	bookingController := controllers.NewBookingController(bookingService)
	parcelController := controllers.NewParcelController(parcelService)
	visitorController := controllers.NewVisitorController(visitorService)
	billController := controllers.NewBillController(billService, paymentService, stripeService)
	paymentController := controllers.NewPaymentController(paymentService)
	stripeWebhookController := controllers.NewStripeWebhookController(stripeService)
	attendanceController := controllers.NewAttendanceController(attendanceService)
	patrolController := controllers.NewPatrolController(patrolService)
	notificationController := controllers.NewNotificationController(notificationService)
	auditController := controllers.NewAuditController(auditService)

	// Rate limiters
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	loginLimiter := middleware.NewRateLimiter("login", constants.LoginRatePerMinute, constants.LoginRateBurst)
	verifyLimiter := middleware.NewRateLimiter("visitor_verify", constants.VisitorVerifyRatePerMinute, constants.VisitorVerifyRateBurst)
	loginLimiter.StartCleanup(constants.RateLimiterIdleTTL, stopCleanup)
	verifyLimiter.StartCleanup(constants.RateLimiterIdleTTL, stopCleanup)

	// Router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger, middleware.InstrumentHandler)

	// Health & metrics
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, middleware.MetricsHandler()).Methods(http.MethodGet)

	// Public
	router.HandleFunc(routes.AuthRegister, authController.RegisterHandler).Methods(http.MethodPost)
	router.Handle(routes.AuthLogin, loginLimiter.Handler(http.HandlerFunc(authController.LoginHandler))).Methods(http.MethodPost)
	router.Handle(routes.AuthLogout, middleware.OptionalAuthMiddleware(cfg.RSAPublicKey)(http.HandlerFunc(authController.LogoutHandler))).Methods(http.MethodPost)

	// Stripe webhook
	router.HandleFunc(routes.StripeWebhook, stripeWebhookController.WebhookHandler).Methods(http.MethodPost)

	// Protected routes (JWT middleware)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	superAdmin := middleware.RequireRoles(models.RoleSuperAdmin)
	office := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	officeOrStaff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff)
	staff := middleware.RequireRoles(models.RoleStaff)
	resident := middleware.RequireRoles(models.RoleResident)
	guarded := func(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler { return mw(h) }

	secured.HandleFunc(routes.AuthMe, authController.MeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AuthPassword, authController.ChangePasswordHandler).Methods(http.MethodPut)

	// Projects & features
	secured.Handle(routes.Projects, guarded(superAdmin, projectController.ListHandler)).Methods(http.MethodGet)
	secured.Handle(routes.Projects, guarded(superAdmin, projectController.CreateHandler)).Methods(http.MethodPost)
	secured.Handle(routes.ProjectByID, guarded(office, projectController.GetHandler)).Methods(http.MethodGet)
	secured.Handle(routes.ProjectByID, guarded(office, projectController.UpdateHandler)).Methods(http.MethodPatch)
	secured.Handle(routes.ProjectByID, guarded(superAdmin, projectController.DeleteHandler)).Methods(http.MethodDelete)
	secured.Handle(routes.ProjectFeatures, guarded(office, projectController.GetFeaturesHandler)).Methods(http.MethodGet)
	secured.Handle(routes.ProjectFeatures, guarded(office, projectController.UpdateFeaturesHandler)).Methods(http.MethodPut)
	secured.HandleFunc(routes.Features, projectController.MyFeaturesHandler).Methods(http.MethodGet)

	// Units
	secured.HandleFunc(routes.Units, unitController.ListHandler).Methods(http.MethodGet)
	secured.Handle(routes.Units, guarded(office, unitController.CreateHandler)).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitByID, unitController.GetHandler).Methods(http.MethodGet)
	secured.Handle(routes.UnitByID, guarded(office, unitController.UpdateHandler)).Methods(http.MethodPatch)
	secured.Handle(routes.UnitByID, guarded(office, unitController.DeleteHandler)).Methods(http.MethodDelete)

	// Users
	secured.Handle(routes.Users, guarded(office, userController.ListHandler)).Methods(http.MethodGet)
	secured.Handle(routes.Users, guarded(office, userController.CreateHandler)).Methods(http.MethodPost)
	secured.HandleFunc(routes.UserByID, userController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserByID, userController.UpdateHandler).Methods(http.MethodPatch)
	secured.Handle(routes.UserByID, guarded(office, userController.DeleteHandler)).Methods(http.MethodDelete)
	secured.Handle(routes.UserApprove, guarded(office, userController.ApproveHandler)).Methods(http.MethodPost)
	secured.Handle(routes.UserReject, guarded(office, userController.RejectHandler)).Methods(http.MethodPost)

	// Notifications
	secured.HandleFunc(routes.Notifications, notificationController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationsUnreadCount, notificationController.UnreadCountHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationsReadAll, notificationController.MarkAllReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NotificationRead, notificationController.MarkReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NotificationByID, notificationController.DeleteHandler).Methods(http.MethodDelete)

	// Audit
	secured.Handle(routes.AuditLogs, guarded(office, auditController.ListHandler)).Methods(http.MethodGet)

	// Maintenance
	maintenance := secured.NewRoute().Subrouter()
	maintenance.Use(middleware.RequireFeature(featureService, models.FeatureMaintenance))
	maintenance.HandleFunc(routes.Maintenance, maintenanceController.ListHandler).Methods(http.MethodGet)
	maintenance.Handle(routes.Maintenance, guarded(resident, maintenanceController.CreateHandler)).Methods(http.MethodPost)
	maintenance.HandleFunc(routes.MaintenanceByID, maintenanceController.GetHandler).Methods(http.MethodGet)
	maintenance.HandleFunc(routes.MaintenanceByID, maintenanceController.UpdateHandler).Methods(http.MethodPatch)
	maintenance.Handle(routes.MaintenanceByID, guarded(office, maintenanceController.DeleteHandler)).Methods(http.MethodDelete)

	// Facilities & bookings
	booking := secured.NewRoute().Subrouter()
	booking.Use(middleware.RequireFeature(featureService, models.FeatureFacilityBooking))
	booking.HandleFunc(routes.Facilities, facilityController.ListHandler).Methods(http.MethodGet)
	booking.Handle(routes.Facilities, guarded(office, facilityController.CreateHandler)).Methods(http.MethodPost)
	booking.HandleFunc(routes.FacilityByID, facilityController.GetHandler).Methods(http.MethodGet)
	booking.Handle(routes.FacilityByID, guarded(office, facilityController.UpdateHandler)).Methods(http.MethodPatch)
	booking.Handle(routes.FacilityByID, guarded(office, facilityController.DeleteHandler)).Methods(http.MethodDelete)
	booking.HandleFunc(routes.FacilityAvailability, facilityController.AvailabilityHandler).Methods(http.MethodGet)
	booking.HandleFunc(routes.Bookings, bookingController.ListHandler).Methods(http.MethodGet)
	booking.Handle(routes.Bookings, guarded(resident, bookingController.CreateHandler)).Methods(http.MethodPost)
	booking.HandleFunc(routes.BookingByID, bookingController.GetHandler).Methods(http.MethodGet)
	booking.Handle(routes.BookingApprove, guarded(office, bookingController.ApproveHandler)).Methods(http.MethodPost)
	booking.Handle(routes.BookingReject, guarded(office, bookingController.RejectHandler)).Methods(http.MethodPost)
	booking.HandleFunc(routes.BookingCancel, bookingController.CancelHandler).Methods(http.MethodPost)

	// Parcels
	parcels := secured.NewRoute().Subrouter()
	parcels.Use(middleware.RequireFeature(featureService, models.FeatureParcels))
	parcels.HandleFunc(routes.Parcels, parcelController.ListHandler).Methods(http.MethodGet)
	parcels.Handle(routes.Parcels, guarded(officeOrStaff, parcelController.CreateHandler)).Methods(http.MethodPost)
	parcels.HandleFunc(routes.ParcelByID, parcelController.GetHandler).Methods(http.MethodGet)
	parcels.Handle(routes.ParcelPickup, guarded(officeOrStaff, parcelController.PickupHandler)).Methods(http.MethodPost)
	parcels.Handle(routes.ParcelReturn, guarded(officeOrStaff, parcelController.ReturnHandler)).Methods(http.MethodPost)

	// Visitors; walk-in and verify are registered before {id}.
	visitors := secured.NewRoute().Subrouter()
	visitors.Use(middleware.RequireFeature(featureService, models.FeatureVisitors))
	visitors.HandleFunc(routes.Visitors, visitorController.ListHandler).Methods(http.MethodGet)
	visitors.Handle(routes.Visitors, guarded(resident, visitorController.CreateHandler)).Methods(http.MethodPost)
	visitors.Handle(routes.VisitorWalkIn, guarded(officeOrStaff, visitorController.WalkInHandler)).Methods(http.MethodPost)
	visitors.Handle(routes.VisitorVerify, officeOrStaff(verifyLimiter.Handler(http.HandlerFunc(visitorController.VerifyHandler)))).Methods(http.MethodPost)
	visitors.HandleFunc(routes.VisitorByID, visitorController.GetHandler).Methods(http.MethodGet)
	visitors.HandleFunc(routes.VisitorQR, visitorController.QRCodeHandler).Methods(http.MethodGet)
	visitors.Handle(routes.VisitorCheckIn, guarded(officeOrStaff, visitorController.CheckInHandler)).Methods(http.MethodPost)
	visitors.Handle(routes.VisitorCheckOut, guarded(officeOrStaff, visitorController.CheckOutHandler)).Methods(http.MethodPost)
	visitors.HandleFunc(routes.VisitorCancel, visitorController.CancelHandler).Methods(http.MethodPost)

	// Bills & payments; summary is registered before {id}.
	bills := secured.NewRoute().Subrouter()
	bills.Use(middleware.RequireFeature(featureService, models.FeatureBills))
	bills.HandleFunc(routes.Bills, billController.ListHandler).Methods(http.MethodGet)
	bills.Handle(routes.Bills, guarded(office, billController.IssueHandler)).Methods(http.MethodPost)
	bills.HandleFunc(routes.BillsSummary, billController.SummaryHandler).Methods(http.MethodGet)
	bills.HandleFunc(routes.BillByID, billController.GetHandler).Methods(http.MethodGet)
	bills.Handle(routes.BillCancel, guarded(office, billController.CancelHandler)).Methods(http.MethodPost)
	bills.Handle(routes.BillPayments, guarded(resident, billController.SubmitPaymentHandler)).Methods(http.MethodPost)
	bills.Handle(routes.BillPromptPay, middleware.RequireFeature(featureService, models.FeatureOnlinePayment)(
		guarded(resident, billController.PromptPayHandler))).Methods(http.MethodPost)
	bills.HandleFunc(routes.Payments, paymentController.ListHandler).Methods(http.MethodGet)
	bills.HandleFunc(routes.PaymentByID, paymentController.GetHandler).Methods(http.MethodGet)
	bills.Handle(routes.PaymentVerify, guarded(office, paymentController.VerifyHandler)).Methods(http.MethodPost)
	bills.Handle(routes.PaymentReject, guarded(office, paymentController.RejectHandler)).Methods(http.MethodPost)

	// Attendance & patrol share the patrol toggle.
	patrol := secured.NewRoute().Subrouter()
	patrol.Use(middleware.RequireFeature(featureService, models.FeaturePatrol))
	patrol.Handle(routes.AttendanceCheckIn, guarded(staff, attendanceController.CheckInHandler)).Methods(http.MethodPost)
	patrol.Handle(routes.AttendanceCheckOut, guarded(staff, attendanceController.CheckOutHandler)).Methods(http.MethodPost)
	patrol.Handle(routes.AttendanceCurrent, guarded(staff, attendanceController.CurrentHandler)).Methods(http.MethodGet)
	patrol.Handle(routes.Attendance, guarded(officeOrStaff, attendanceController.ListHandler)).Methods(http.MethodGet)
	patrol.Handle(routes.PatrolCheckpoints, guarded(officeOrStaff, patrolController.ListCheckpointsHandler)).Methods(http.MethodGet)
	patrol.Handle(routes.PatrolCheckpoints, guarded(office, patrolController.CreateCheckpointHandler)).Methods(http.MethodPost)
	patrol.Handle(routes.PatrolCheckpoint, guarded(officeOrStaff, patrolController.GetCheckpointHandler)).Methods(http.MethodGet)
	patrol.Handle(routes.PatrolCheckpoint, guarded(office, patrolController.UpdateCheckpointHandler)).Methods(http.MethodPatch)
	patrol.Handle(routes.PatrolCheckpoint, guarded(office, patrolController.DeleteCheckpointHandler)).Methods(http.MethodDelete)
	patrol.Handle(routes.PatrolScan, guarded(staff, patrolController.ScanHandler)).Methods(http.MethodPost)
	patrol.Handle(routes.PatrolLogs, guarded(officeOrStaff, patrolController.ListLogsHandler)).Methods(http.MethodGet)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	// CORS config
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           co.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
}
