package services

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

type JWTService interface {
	// GenerateAccessToken signs an RS256 token for u that go-middleware
	// can validate with the matching public key.
	GenerateAccessToken(u *models.User) (token string, expiresAt time.Time, err error)
	TokenTTL() time.Duration
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	privateKey *rsa.PrivateKey
	ttl        time.Duration
	now        func() time.Time
}

func NewJWTService(cfg *config.Config) JWTService {
	return &jwtService{
		privateKey: cfg.RSAPrivateKey,
		ttl:        cfg.AccessTokenTTL,
		now:        time.Now,
	}
}

func (j *jwtService) TokenTTL() time.Duration { return j.ttl }

func (j *jwtService) GenerateAccessToken(u *models.User) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)

	claims := jwt.MapClaims{
		"iss":  middleware.TokenIssuer,
		"sub":  u.ID.String(),
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
		"jti":  uuid.NewString(),
	}
	if u.ProjectID != nil {
		claims["project_id"] = u.ProjectID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(j.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
