package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func asPrincipal(r *http.Request, p middleware.Principal) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestDateRangeUsesBangkokDays(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?from=2025-03-01&to=2025-03-31", nil)
	q := newQueryReader(r)
	dr := q.dateRange()
	require.NoError(t, q.err)

	bkk := utils.LoadLocation(utils.DefaultTimeZone)
	require.NotNil(t, dr.From)
	require.NotNil(t, dr.To)
	assert.True(t, dr.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, bkk)))
	assert.True(t, dr.To.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, bkk)), "to is exclusive of the next day")
}

func TestDateRangeAcceptsRFC3339(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?to=2025-03-31T12:00:00Z", nil)
	q := newQueryReader(r)
	dr := q.dateRange()
	require.NoError(t, q.err)
	assert.Nil(t, dr.From)
	assert.True(t, dr.To.Equal(time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)))
}

func TestQueryReaderKeepsFirstError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=two&unit_id=nope&from=yesterday", nil)
	q := newQueryReader(r)
	_ = q.page()
	assert.Nil(t, q.id("unit_id"))
	_ = q.dateRange()

	var appErr *utils.AppError
	require.True(t, errors.As(q.err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "'page'")
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		code   string
		fields []string
	}{
		{"valid", `{"latitude":13.75,"longitude":100.5}`, true, "", nil},
		{"malformed", `{"latitude":`, false, utils.ErrCodeInvalidPayload, nil},
		{"out of range", `{"latitude":91,"longitude":181}`, false, utils.ErrCodeValidation, []string{"latitude", "longitude"}},
		{"markup in note", `{"latitude":1,"longitude":1,"note":"<script>alert(1)</script>"}`, false, utils.ErrCodeValidation, []string{"note"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			var req dtos.LocationRequest

			require.Equal(t, tt.ok, decodeAndValidate(rr, r, &req))
			if tt.ok {
				return
			}
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var body struct {
				Code    string `json:"code"`
				Details []struct {
					Field string `json:"field"`
				} `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			var fields []string
			for _, d := range body.Details {
				fields = append(fields, d.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestDecodeOptionalAllowsEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	rr := httptest.NewRecorder()
	var req dtos.ReasonRequest
	assert.False(t, decodeAndValidate(rr, r, &req))

	r = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	var opt struct {
		Note *string `json:"note,omitempty"`
	}
	assert.True(t, decodeOptional(httptest.NewRecorder(), r, &opt))
}

func TestActorFrom(t *testing.T) {
	projectID := uuid.New()

	_, err := actorFrom(httptest.NewRequest(http.MethodGet, "/", nil))
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)

	resident := middleware.Principal{UserID: uuid.New(), Role: models.RoleResident, ProjectID: &projectID}
	r := asPrincipal(httptest.NewRequest(http.MethodGet, "/?project_id="+uuid.NewString(), nil), resident)
	a, err := actorFrom(r)
	require.NoError(t, err)
	assert.Equal(t, projectID, a.ProjectID, "project_id is only honoured for the super admin")

	root := middleware.Principal{UserID: uuid.New(), Role: models.RoleSuperAdmin}
	r = asPrincipal(httptest.NewRequest(http.MethodGet, "/?project_id="+projectID.String(), nil), root)
	a, err = projectActor(r)
	require.NoError(t, err)
	assert.Equal(t, projectID, a.ProjectID)

	r = asPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), root)
	_, err = projectActor(r)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.ErrCodeValidation, appErr.Code)

	r = asPrincipal(httptest.NewRequest(http.MethodGet, "/?project_id=bogus", nil), root)
	_, err = actorFrom(r)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.ErrCodeInvalidPayload, appErr.Code)
}
