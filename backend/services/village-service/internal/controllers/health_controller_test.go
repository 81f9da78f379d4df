package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	t.Run("db reachable", func(t *testing.T) {
		c := NewHealthController(pingFunc(func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return nil
		}))
		rr := httptest.NewRecorder()
		c.HealthCheckHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body dtos.HealthCheckResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "OK", body.Status)
	})

	t.Run("db down", func(t *testing.T) {
		c := NewHealthController(pingFunc(func(context.Context) error { return errors.New("connection refused") }))
		rr := httptest.NewRecorder()
		c.HealthCheckHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
