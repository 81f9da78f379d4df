package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func baseClaims(role models.UserRole, projectID *uuid.UUID) jwt.MapClaims {
	c := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": string(role),
		"iss":  TokenIssuer,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"jti":  uuid.NewString(),
	}
	if projectID != nil {
		c["project_id"] = projectID.String()
	}
	return c
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	w.Header().Set("X-Role", string(p.Role))
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	key := newKey(t)
	pid := uuid.New()
	h := AuthMiddleware(&key.PublicKey)(okHandler)

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, baseClaims(models.RoleResident, &pid)))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "resident", rr.Header().Get("X-Role"))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: signToken(t, key, baseClaims(models.RoleAdmin, &pid))})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		c := baseClaims(models.RoleResident, &pid)
		c["exp"] = time.Now().Add(-time.Minute).Unix()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, c))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "token_expired")
	})

	t.Run("foreign key", func(t *testing.T) {
		other := newKey(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, other, baseClaims(models.RoleResident, &pid)))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("resident without project", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, baseClaims(models.RoleResident, nil)))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := baseClaims(models.RoleAdmin, &pid)
		c["iss"] = "someone-else"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, c))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	key := newKey(t)
	h := OptionalAuthMiddleware(&key.PublicKey)(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "", rr.Header().Get("X-Role"))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, baseClaims(models.RoleSuperAdmin, nil)))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "super_admin", rr.Header().Get("X-Role"))
}

func TestRequireRoles(t *testing.T) {
	pid := uuid.New()
	h := RequireRoles(models.RoleAdmin, models.RoleStaff)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{UserID: uuid.New(), Role: models.RoleResident, ProjectID: &pid}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = req.WithContext(WithPrincipal(context.Background(), Principal{UserID: uuid.New(), Role: models.RoleStaff, ProjectID: &pid}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

type fakeFeatures struct {
	enabled map[models.FeatureKey]bool
	err     error
}

func (f fakeFeatures) IsEnabled(_ context.Context, _ uuid.UUID, key models.FeatureKey) (bool, error) {
	return f.enabled[key], f.err
}

func TestRequireFeature(t *testing.T) {
	pid := uuid.New()
	withProject := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(WithPrincipal(req.Context(), Principal{UserID: uuid.New(), Role: models.RoleResident, ProjectID: &pid}))
	}

	checker := fakeFeatures{enabled: map[models.FeatureKey]bool{models.FeatureParcels: true}}

	rr := httptest.NewRecorder()
	RequireFeature(checker, models.FeatureParcels)(okHandler).ServeHTTP(rr, withProject())
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	RequireFeature(checker, models.FeaturePatrol)(okHandler).ServeHTTP(rr, withProject())
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "feature_disabled")

	rr = httptest.NewRecorder()
	RequireFeature(fakeFeatures{err: errors.New("ld down")}, models.FeaturePatrol)(okHandler).ServeHTTP(rr, withProject())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	// super admin has no project and is never gated
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{UserID: uuid.New(), Role: models.RoleSuperAdmin}))
	rr = httptest.NewRecorder()
	RequireFeature(checker, models.FeaturePatrol)(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter("test", 1, 2)
	h := rl.Handler(okHandler)

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rl.Cleanup(-time.Second)
	assert.Empty(t, rl.limiters)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	RequestLogger(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	RequestLogger(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get("X-Request-ID"))
}
