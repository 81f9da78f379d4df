// backend/shared/go-testhelpers/data.go

package testhelpers

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// UniquePhone generates a unique-enough Thai mobile number for testing.
func UniquePhone() string {
	return fmt.Sprintf("08%08d", rand.New(rand.NewSource(time.Now().UnixNano())).Int31n(1e8))
}

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), utils.TestEmailSuffix)
}

// CreateTestProject persists a project centered on Bangkok.
func (h *TestHelper) CreateTestProject() *models.Project {
	p := &models.Project{
		ID:              uuid.New(),
		Name:            "Integration Village",
		Code:            "IT" + utils.RandomNumericString(8),
		Address:         "1 Test Rd, Bangkok",
		Latitude:        13.7563,
		Longitude:       100.5018,
		TimeZone:        utils.DefaultTimeZone,
		GeofenceRadiusM: utils.DefaultGeofenceRadiusM,
	}
	require.NoError(h.T, h.ProjectRepo.Create(h.Ctx, p), "Failed to create test project")
	return p
}

// CreateTestUnit persists a unit in projectID.
func (h *TestHelper) CreateTestUnit(projectID uuid.UUID) *models.Unit {
	u := &models.Unit{
		ID:          uuid.New(),
		ProjectID:   projectID,
		HouseNumber: "T/" + utils.RandomNumericString(6),
		Zone:        "T",
		OwnerName:   "Test Owner",
		AreaSqm:     150,
	}
	require.NoError(h.T, h.UnitRepo.Create(h.Ctx, u), "Failed to create test unit")
	return u
}

// CreateTestUser persists an active user. projectID and unitID may be nil.
func (h *TestHelper) CreateTestUser(role models.UserRole, projectID, unitID *uuid.UUID, password string) *models.User {
	hash, err := utils.HashPassword(password)
	require.NoError(h.T, err)

	u := &models.User{
		ID:           uuid.New(),
		ProjectID:    projectID,
		UnitID:       unitID,
		Email:        UniqueEmail(string(role)),
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     string(role),
		Phone:        UniquePhone(),
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(h.T, h.UserRepo.Create(h.Ctx, u), "Failed to create test user")
	return u
}

// CreateTestFacility persists an active facility open 06:00-22:00.
func (h *TestHelper) CreateTestFacility(projectID uuid.UUID, requiresApproval bool) *models.Facility {
	f := &models.Facility{
		ID:               uuid.New(),
		ProjectID:        projectID,
		Name:             "Test Court " + utils.RandomString(4),
		Capacity:         10,
		OpenTime:         "06:00",
		CloseTime:        "22:00",
		MaxHours:         3,
		RequiresApproval: requiresApproval,
		IsActive:         true,
	}
	require.NoError(h.T, h.FacilityRepo.Create(h.Ctx, f), "Failed to create test facility")
	return f
}

// CreateTestBill persists a pending bill for unitID.
func (h *TestHelper) CreateTestBill(projectID, unitID, issuedBy uuid.UUID, amountSatang int64) *models.Bill {
	now := time.Now().UTC()
	b := &models.Bill{
		ID:            uuid.New(),
		ProjectID:     projectID,
		UnitID:        unitID,
		Type:          models.BillTypeCommonFee,
		Description:   "Common fee",
		AmountSatang:  amountSatang,
		BillingPeriod: now.Format("2006-01"),
		DueDate:       now.AddDate(0, 0, 14),
		Status:        models.BillStatusPending,
		IssuedBy:      issuedBy,
	}
	require.NoError(h.T, h.BillRepo.Create(h.Ctx, b), "Failed to create test bill")
	return b
}

// SetFeature writes a per-project override.
func (h *TestHelper) SetFeature(projectID uuid.UUID, key models.FeatureKey, enabled bool) {
	require.NoError(h.T, h.FeatureRepo.Upsert(h.Ctx, &models.ProjectFeature{
		ProjectID: projectID,
		Key:       key,
		Enabled:   enabled,
	}))
}

// WaitForBillStatus polls the DB until the bill reaches target.
func (h *TestHelper) WaitForBillStatus(billID uuid.UUID, target models.BillStatus, maxWait time.Duration) {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		b, err := h.BillRepo.GetByID(h.Ctx, billID)
		require.NoError(h.T, err)
		if b != nil && b.Status == target {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	h.T.Fatalf("Bill %s did not reach status=%s within %v", billID, target, maxWait)
}
