package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string

	// Database
	DBUrl           string
	DBEncryptionKey []byte
	AutoMigrate     bool

	// Auth
	RSAPrivateKey  *rsa.PrivateKey
	RSAPublicKey   *rsa.PublicKey
	AccessTokenTTL time.Duration

	// External services; empty keys disable the integration.
	SendGridAPIKey      string
	TwilioAccountSID    string
	TwilioAuthToken     string
	StripeSecretKey     string
	StripeWebhookSecret string
	OpenAIAPIKey        string
	TeamEmail           string

	// Seed credentials used when LDFlag_SeedDbWithTestData is on.
	SeedPassword string

	// LaunchDarkly client stays open for per-project feature evaluation.
	LDClient *ld.LDClient

	// LaunchDarkly service-wide flags
	LDFlag_SendgridFromEmail         string
	LDFlag_SendgridSandboxMode       bool
	LDFlag_TwilioFromPhone           string
	LDFlag_CORSHighSecurity          bool
	LDFlag_SeedDbWithTestData        bool
	LDFlag_ValidateEmailWithSendGrid bool
	LDFlag_ValidatePhoneWithTwilio   bool
}

const (
	OrganizationName      = utils.OrganizationName
	LDConnectionTimeout   = 5 * time.Second
	DefaultAppName        = "village-service"
	DefaultAccessTokenTTL = 12 * time.Hour
)

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads the environment (and .env when present), parses the
// signing key and takes a snapshot of the service-wide LaunchDarkly flags.
// Missing required values are fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		utils.Logger.Debug("Loaded .env file")
	}

	if AppName == "" {
		utils.Logger.Warnf("AppName ldflag missing, defaulting to %s", DefaultAppName)
		AppName = DefaultAppName
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	if LDServerContextKind == "" {
		LDServerContextKind = "service"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := requireEnv("ENV")
	appUrl := requireEnv("APP_URL_FROM_ANYWHERE")
	appPort := requireEnv("APP_PORT")
	dbURL := requireEnv("DB_URL")

	dbEncKey, err := base64.StdEncoding.DecodeString(requireEnv("DB_ENCRYPTION_KEY_BASE64"))
	if err != nil || len(dbEncKey) != 32 {
		utils.Logger.Fatal("DB_ENCRYPTION_KEY_BASE64 invalid, expect 32-byte key")
	}

	privKey, pubKey := parseRSAKey(requireEnv("RSA_PRIVATE_KEY_BASE64"))

	ttl := DefaultAccessTokenTTL
	if raw := os.Getenv("ACCESS_TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			utils.Logger.Fatalf("ACCESS_TOKEN_TTL invalid: %q", raw)
		}
		ttl = parsed
	}

	teamEmail := os.Getenv("TEAM_EMAIL")
	if teamEmail == "" {
		teamEmail = utils.DefaultTeamEmail
	}

	cfg := &Config{
		OrganizationName:    OrganizationName,
		AppName:             AppName,
		AppPort:             appPort,
		AppUrl:              appUrl,
		Env:                 env,
		DBUrl:               dbURL,
		DBEncryptionKey:     dbEncKey,
		AutoMigrate:         strings.EqualFold(os.Getenv("AUTO_MIGRATE"), "true"),
		RSAPrivateKey:       privKey,
		RSAPublicKey:        pubKey,
		AccessTokenTTL:      ttl,
		SendGridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		TeamEmail:           teamEmail,
		SeedPassword:        os.Getenv("SEED_PASSWORD"),
	}

	cfg.LDClient = makeLDClient(os.Getenv("LD_SDK_KEY"))
	cfg.loadFlags()

	if cfg.LDFlag_SeedDbWithTestData && cfg.SeedPassword == "" {
		utils.Logger.Fatal("SEED_PASSWORD env var is required when seed_db_with_test_data is on")
	}
	return cfg
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return val
}

func parseRSAKey(privB64 string) (*rsa.PrivateKey, *rsa.PublicKey) {
	privPEM, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PRIVATE_KEY_BASE64 is not valid base64")
	}
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}
	return privKey, &privKey.PublicKey
}

// makeLDClient returns an offline client when no SDK key is configured so
// every variation falls back to its default.
func makeLDClient(sdkKey string) *ld.LDClient {
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set; LaunchDarkly running offline with flag defaults")
		client, _ := ld.MakeCustomClient("", ld.Config{Offline: true}, 0)
		return client
	}

	client, err := ld.MakeCustomClient(sdkKey, ld.Config{
		Events: ldcomponents.NoEvents(),
	}, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !client.Initialized() {
		client.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	return client
}

func (c *Config) loadFlags() {
	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	sgFrom, err := c.LDClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Warn("Error retrieving sendgrid_from_email flag")
	}
	if sgFrom == "" {
		sgFrom = os.Getenv("SENDGRID_FROM_EMAIL")
	}
	if sgFrom == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@myvillage.app")
		sgFrom = "no-reply@myvillage.app"
	}
	c.LDFlag_SendgridFromEmail = sgFrom

	c.LDFlag_SendgridSandboxMode = c.boolFlag(ctx, "sendgrid_sandbox_mode", c.Env != "prod")

	twFrom, err := c.LDClient.StringVariation("twilio_from_phone", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Warn("Error retrieving twilio_from_phone flag")
	}
	if twFrom == "" {
		twFrom = os.Getenv("TWILIO_FROM_PHONE")
	}
	c.LDFlag_TwilioFromPhone = twFrom

	c.LDFlag_CORSHighSecurity = c.boolFlag(ctx, "cors_high_security", c.Env == "prod")
	c.LDFlag_SeedDbWithTestData = c.boolFlag(ctx, "seed_db_with_test_data", c.Env == "dev")
	c.LDFlag_ValidateEmailWithSendGrid = c.boolFlag(ctx, "validate_email_with_sendgrid", false)
	c.LDFlag_ValidatePhoneWithTwilio = c.boolFlag(ctx, "validate_phone_with_twilio", false)
}

func (c *Config) boolFlag(ctx ldcontext.Context, key string, fallback bool) bool {
	val, err := c.LDClient.BoolVariation(key, ctx, fallback)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using %t", key, fallback)
		return fallback
	}
	utils.Logger.Debugf("%s flag: %t", key, val)
	return val
}

func (c *Config) Close() {
	if c.LDClient != nil {
		_ = c.LDClient.Close()
	}
}
