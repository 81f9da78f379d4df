package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

// TokenIssuer identifies the service that issues all access tokens.
const TokenIssuer = "MyVillage"

// Principal is the authenticated caller extracted from a valid token.
type Principal struct {
	UserID    uuid.UUID
	Role      models.UserRole
	ProjectID *uuid.UUID
}

// IsStaffOrAdmin covers everyone who works for the juristic office.
func (p Principal) IsStaffOrAdmin() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleStaff || p.Role == models.RoleSuperAdmin
}

// ValidateToken checks the token's signature and standard claims and
// returns the caller it describes. Any deviation returns a descriptive error.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing expiration claim")
	}
	if exp.Before(time.Now()) {
		return nil, jwt.ErrTokenExpired
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("missing subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("malformed subject")
	}

	roleStr, _ := claims["role"].(string)
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return nil, errors.New("missing or unknown role claim")
	}

	p := &Principal{UserID: userID, Role: role}
	if pid, ok := claims["project_id"].(string); ok && pid != "" {
		projectID, err := uuid.Parse(pid)
		if err != nil {
			return nil, errors.New("malformed project_id claim")
		}
		p.ProjectID = &projectID
	}
	if p.ProjectID == nil && role != models.RoleSuperAdmin {
		return nil, errors.New("project_id claim required for role " + roleStr)
	}
	return p, nil
}
