//go:build (dev_test || staging_test) && integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/routes"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-testhelpers"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func TestRegisterApproveLogin(t *testing.T) {
	th := withT(t)
	email := testhelpers.UniqueEmail("register")

	var reg dtos.RegisterResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.AuthRegister, "", dtos.RegisterRequest{
		ProjectCode: project.Code,
		HouseNumber: unit.HouseNumber,
		FirstName:   "Somchai",
		LastName:    "Jaidee",
		Email:       email,
		Phone:       testhelpers.UniquePhone(),
		Password:    testPassword,
	}), http.StatusCreated, &reg)
	assert.Equal(t, string(models.UserStatusPending), string(reg.User.Status))

	login := dtos.LoginRequest{Email: email, Password: testPassword}
	var errBody utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.AuthLogin, "", login), http.StatusForbidden, &errBody)

	th.DoJSON(th.BuildAuthRequest(http.MethodPost, path(routes.UserApprove, uuid.MustParse(reg.User.ID)), th.CreateJWT(admin), nil), http.StatusOK, nil)

	var resp dtos.LoginResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.AuthLogin, "", login), http.StatusOK, &resp)
	require.NotEmpty(t, resp.AccessToken)

	var me shared_dtos.User
	th.DoJSON(th.BuildAuthRequest(http.MethodGet, routes.AuthMe, resp.AccessToken, nil), http.StatusOK, &me)
	assert.Equal(t, email, me.Email)
	require.NotNil(t, me.UnitID)
	assert.Equal(t, unit.ID.String(), *me.UnitID)
}

func TestLoginWrongPassword(t *testing.T) {
	th := withT(t)
	var errBody utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.AuthLogin, "", dtos.LoginRequest{
		Email: resident.Email, Password: "not-the-password",
	}), http.StatusUnauthorized, &errBody)
	assert.Equal(t, utils.ErrCodeInvalidCredentials, errBody.Code)
}

func TestResidentCannotReachOfficeRoutes(t *testing.T) {
	th := withT(t)
	var errBody utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodGet, routes.AuditLogs, th.CreateJWT(resident), nil), http.StatusForbidden, &errBody)
	assert.Equal(t, utils.ErrCodeForbidden, errBody.Code)
}
