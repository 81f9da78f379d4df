//go:build (dev_test || staging_test)

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var client = &http.Client{Timeout: 10 * time.Second}

// TestSmokeDeployment checks that a freshly deployed stack answers on its
// public surface: health, metrics, and the auth endpoints' error paths.
func TestSmokeDeployment(t *testing.T) {
	appURL := os.Getenv("APP_URL_FROM_COMPOSE_NETWORK")
	require.NotEmpty(t, appURL, "APP_URL_FROM_COMPOSE_NETWORK environment variable must be set")

	t.Run("health", func(t *testing.T) {
		resp, err := client.Get(appURL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "OK", body.Status)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := client.Get(appURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("login rejects unknown user", func(t *testing.T) {
		email := fmt.Sprintf("smoke-%d-testing@myvillage.app", rand.Intn(1e9))
		code := postJSON(t, appURL+"/api/v1/auth/login", map[string]string{"email": email, "password": "Nope#12345"})
		require.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("register validates payload", func(t *testing.T) {
		code := postJSON(t, appURL+"/api/v1/auth/register", map[string]string{"email": "not-an-email"})
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("protected route needs token", func(t *testing.T) {
		resp, err := client.Get(appURL + "/api/v1/bills")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func postJSON(t *testing.T, url string, body any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}
