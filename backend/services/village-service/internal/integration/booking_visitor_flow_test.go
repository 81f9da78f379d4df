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
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-testhelpers"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

func TestOverlappingBookingIsRejected(t *testing.T) {
	th := withT(t)
	facility := th.CreateTestFacility(project.ID, false)
	token := th.CreateJWT(resident)
	day := testhelpers.NextBookableDay(utils.LoadLocation(project.TimeZone), 3)

	var first models.Booking
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Bookings, token, dtos.CreateBookingRequest{
		FacilityID: facility.ID,
		StartTime:  testhelpers.At(day, 18, 0),
		EndTime:    testhelpers.At(day, 19, 0),
		Attendees:  4,
	}), http.StatusCreated, &first)
	assert.Equal(t, models.BookingStatusApproved, first.Status)

	var conflict struct {
		Code    string                `json:"code"`
		Details *dtos.BookingConflict `json:"details"`
	}
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Bookings, token, dtos.CreateBookingRequest{
		FacilityID: facility.ID,
		StartTime:  testhelpers.At(day, 18, 30),
		EndTime:    testhelpers.At(day, 20, 0),
		Attendees:  2,
	}), http.StatusConflict, &conflict)
	assert.Equal(t, utils.ErrCodeConflict, conflict.Code)
	require.NotNil(t, conflict.Details)
	assert.Equal(t, first.ID.String(), conflict.Details.BookingID)

	// Back-to-back is fine.
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Bookings, token, dtos.CreateBookingRequest{
		FacilityID: facility.ID,
		StartTime:  testhelpers.At(day, 19, 0),
		EndTime:    testhelpers.At(day, 20, 0),
		Attendees:  2,
	}), http.StatusCreated, nil)
}

func TestVisitorPassCheckIn(t *testing.T) {
	th := withT(t)

	var visitor models.Visitor
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Visitors, th.CreateJWT(resident), dtos.CreateVisitorRequest{
		Name:    "Khun Malee",
		Purpose: "Family visit",
	}), http.StatusCreated, &visitor)
	require.NotEmpty(t, visitor.QRToken)
	assert.Equal(t, models.VisitorStatusExpected, visitor.Status)

	guardToken := th.CreateJWT(staff)
	var verified dtos.VerifyVisitorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.VisitorVerify, guardToken, dtos.VerifyVisitorRequest{
		QRToken: visitor.QRToken, CheckIn: true,
	}), http.StatusOK, &verified)
	assert.True(t, verified.Valid)
	assert.Equal(t, unit.HouseNumber, verified.HouseNumber)
	assert.Equal(t, models.VisitorStatusCheckedIn, verified.Visitor.Status)

	var again dtos.VerifyVisitorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.VisitorVerify, guardToken, dtos.VerifyVisitorRequest{
		QRToken: visitor.QRToken, CheckIn: true,
	}), http.StatusOK, &again)
	assert.False(t, again.Valid)
	assert.NotEmpty(t, again.Reason)
}

func TestDisabledFeatureBlocksModule(t *testing.T) {
	th := withT(t)
	other := th.CreateTestProject()
	officer := th.CreateTestUser(models.RoleAdmin, &other.ID, nil, testPassword)
	th.SetFeature(other.ID, models.FeatureParcels, false)

	var errBody utils.ErrorResponse
	th.DoJSON(th.BuildAuthRequest(http.MethodPost, routes.Parcels, th.CreateJWT(officer), dtos.CreateParcelRequest{
		UnitID: uuid.New(), RecipientName: "Nobody", Carrier: "Kerry",
	}), http.StatusForbidden, &errBody)
	assert.Equal(t, utils.ErrCodeFeatureDisabled, errBody.Code)

	th.SetFeature(other.ID, models.FeatureParcels, true)
	th.DoJSON(th.BuildAuthRequest(http.MethodGet, routes.Parcels, th.CreateJWT(officer), nil), http.StatusOK, nil)
}
