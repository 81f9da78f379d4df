package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stretchr/testify/require"
)

// BuildAuthRequest sets standard headers for authenticated test requests.
// An empty token produces an anonymous request.
func (h *TestHelper) BuildAuthRequest(method, path, token string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			var err error
			raw, err = json.Marshal(body)
			require.NoError(h.T, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.BaseURL+path, reader)
	require.NoError(h.T, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewHTTPClient returns a client with a sane timeout for integration runs.
func (h *TestHelper) NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}

// DoJSON sends the request, asserts the status and decodes the body into out
// (which may be nil).
func (h *TestHelper) DoJSON(req *http.Request, wantStatus int, out any) {
	resp := h.DoRequest(req, h.NewHTTPClient())
	defer resp.Body.Close()
	body := h.ReadBody(resp)
	require.Equal(h.T, wantStatus, resp.StatusCode, "%s %s: %s", req.Method, req.URL.Path, body)
	if out != nil {
		require.NoError(h.T, json.Unmarshal([]byte(body), out), "decode %s", body)
	}
}
