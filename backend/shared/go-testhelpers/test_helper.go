package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
)

// TestHelper encapsulates the components integration tests need: the
// running service's URL, a direct DB pool for fixtures and the signing key
// so tests can mint tokens without going through login.
type TestHelper struct {
	T                   *testing.T
	Ctx                 context.Context
	BaseURL             string
	DB                  *pgxpool.Pool
	PrivateKey          *rsa.PrivateKey
	DBEncryptionKey     []byte
	StripeWebhookSecret string
	AppName             string

	ProjectRepo  repositories.ProjectRepository
	UnitRepo     repositories.UnitRepository
	UserRepo     repositories.UserRepository
	FacilityRepo repositories.FacilityRepository
	BookingRepo  repositories.BookingRepository
	ParcelRepo   repositories.ParcelRepository
	VisitorRepo  repositories.VisitorRepository
	BillRepo     repositories.BillRepository
	PaymentRepo  repositories.PaymentRepository
	FeatureRepo  repositories.ProjectFeatureRepository
	NotifRepo    repositories.NotificationRepository
	AuditRepo    repositories.AuditLogRepository
}

// NewTestHelper loads the environment (a .env file is honored), connects to
// the database and builds the repositories. Call it once from TestMain or
// at the top of each test.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	_ = godotenv.Load()

	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	require.NotEmpty(t, baseURL, "APP_URL_FROM_ANYWHERE env var is missing")
	dbURL := os.Getenv("DB_URL")
	require.NotEmpty(t, dbURL, "DB_URL env var is missing")

	privateKeyB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privateKeyB64, "RSA_PRIVATE_KEY_BASE64 env var is missing")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	dbEncryptionKey, err := base64.StdEncoding.DecodeString(os.Getenv("DB_ENCRYPTION_KEY_BASE64"))
	require.NoError(t, err)
	require.Len(t, dbEncryptionKey, 32, "DB encryption key must be 32 bytes")

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:                   t,
		Ctx:                 ctx,
		BaseURL:             baseURL,
		DB:                  dbPool,
		PrivateKey:          privateKey,
		DBEncryptionKey:     dbEncryptionKey,
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AppName:             appName,
		ProjectRepo:         repositories.NewProjectRepository(dbPool),
		UnitRepo:            repositories.NewUnitRepository(dbPool),
		UserRepo:            repositories.NewUserRepository(dbPool),
		FacilityRepo:        repositories.NewFacilityRepository(dbPool),
		BookingRepo:         repositories.NewBookingRepository(dbPool),
		ParcelRepo:          repositories.NewParcelRepository(dbPool),
		VisitorRepo:         repositories.NewVisitorRepository(dbPool),
		BillRepo:            repositories.NewBillRepository(dbPool),
		PaymentRepo:         repositories.NewPaymentRepository(dbPool),
		FeatureRepo:         repositories.NewProjectFeatureRepository(dbPool),
		NotifRepo:           repositories.NewNotificationRepository(dbPool),
		AuditRepo:           repositories.NewAuditLogRepository(dbPool),
	}
}
