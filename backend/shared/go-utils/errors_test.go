package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsCopies(t *testing.T) {
	base := Conflict("Slot already booked")
	withDetails := base.WithDetails(map[string]string{"booking_id": "b-1"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"booking_id": "b-1"}, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}

func TestHandleAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error", NotFound("Bill not found"), http.StatusNotFound, ErrCodeNotFound},
		{"wrapped app error", fmt.Errorf("load: %w", Forbidden("nope")), http.StatusForbidden, ErrCodeForbidden},
		{"row version", fmt.Errorf("update: %w", ErrRowVersionConflict), http.StatusConflict, ErrCodeRowVersionConflict},
		{"transition", ErrInvalidTransition, http.StatusConflict, ErrCodeInvalidTransition},
		{"feature", ErrFeatureDisabled, http.StatusForbidden, ErrCodeFeatureDisabled},
		{"anything else", fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HandleAppError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestHandleAppErrorKeepsDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleAppError(rr, BadRequest(ErrCodeValidation, "Validation failed").WithDetails([]string{"amount"}))

	var body struct {
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"amount"}, body.Details)
}
