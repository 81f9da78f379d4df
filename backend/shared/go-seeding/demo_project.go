package seeding

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const (
	DemoProjectID   = "2b0c6f1e-9a43-4c55-8d1f-000000000001"
	DemoProjectCode = "DEMO"

	DemoAdminID    = "2b0c6f1e-9a43-4c55-8d1f-0000000000a1"
	DemoStaffID    = "2b0c6f1e-9a43-4c55-8d1f-0000000000b1"
	DemoResidentID = "2b0c6f1e-9a43-4c55-8d1f-0000000000c1"

	DemoAdminEmail    = "admin@demo.myvillage.app"
	DemoStaffEmail    = "guard@demo.myvillage.app"
	DemoResidentEmail = "resident@demo.myvillage.app"
)

// Repos groups the repositories the demo seed writes to.
type Repos struct {
	Projects   repositories.ProjectRepository
	Units      repositories.UnitRepository
	Users      repositories.UserRepository
	Facilities repositories.FacilityRepository
}

var demoUnits = []struct {
	house string
	zone  string
	owner string
	area  float64
}{
	{"99/1", "A", "Somchai Jaidee", 180},
	{"99/2", "A", "Suda Rakdee", 180},
	{"99/3", "B", "Anan Meesuk", 220},
	{"99/4", "B", "Malee Srisuk", 220},
}

// SeedDemoProject creates a small project with units, one user per
// operational role and two facilities. Rows keyed by fixed IDs are left
// alone when already present.
func SeedDemoProject(ctx context.Context, repos Repos, password string) error {
	projectID := uuid.MustParse(DemoProjectID)

	project, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("check demo project: %w", err)
	}
	if project == nil {
		project = &models.Project{
			ID:              projectID,
			Name:            "My Village Demo",
			Code:            DemoProjectCode,
			Address:         "99 Sukhumvit Rd, Bangkok",
			Latitude:        13.7367,
			Longitude:       100.5608,
			TimeZone:        utils.DefaultTimeZone,
			GeofenceRadiusM: utils.DefaultGeofenceRadiusM,
		}
		if err := repos.Projects.Create(ctx, project); err != nil {
			if !repositories.IsUniqueViolation(err) {
				return fmt.Errorf("insert demo project: %w", err)
			}
			utils.Logger.Infof("seeding: project code %s already taken; skipping demo project", DemoProjectCode)
			return nil
		}
		utils.Logger.Infof("seeding: created demo project (ID=%s)", projectID)
	} else {
		utils.Logger.Info("seeding: demo project already present; skipping project row")
	}

	var firstUnit *models.Unit
	for _, du := range demoUnits {
		unit, err := repos.Units.GetByHouseNumber(ctx, projectID, du.house)
		if err != nil {
			return fmt.Errorf("check demo unit %s: %w", du.house, err)
		}
		if unit == nil {
			unit = &models.Unit{
				ID:          uuid.New(),
				ProjectID:   projectID,
				HouseNumber: du.house,
				Zone:        du.zone,
				OwnerName:   du.owner,
				AreaSqm:     du.area,
			}
			if err := repos.Units.Create(ctx, unit); err != nil {
				return fmt.Errorf("insert demo unit %s: %w", du.house, err)
			}
		}
		if firstUnit == nil {
			firstUnit = unit
		}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := []*models.User{
		{
			ID: uuid.MustParse(DemoAdminID), ProjectID: &projectID,
			Email: DemoAdminEmail, FirstName: "Juristic", LastName: "Office",
			Phone: "0811111111", Role: models.RoleAdmin,
		},
		{
			ID: uuid.MustParse(DemoStaffID), ProjectID: &projectID,
			Email: DemoStaffEmail, FirstName: "Prasit", LastName: "Guard",
			Phone: "0822222222", Role: models.RoleStaff,
		},
		{
			ID: uuid.MustParse(DemoResidentID), ProjectID: &projectID, UnitID: &firstUnit.ID,
			Email: DemoResidentEmail, FirstName: "Somchai", LastName: "Jaidee",
			Phone: "0833333333", Role: models.RoleResident,
		},
	}
	for _, u := range users {
		if err := seedUser(ctx, repos.Users, u, hash); err != nil {
			return err
		}
	}

	existing, err := repos.Facilities.ListByProject(ctx, projectID, false)
	if err != nil {
		return fmt.Errorf("list demo facilities: %w", err)
	}
	if len(existing) > 0 {
		utils.Logger.Info("seeding: demo facilities already present; skipping")
		return nil
	}
	facilities := []*models.Facility{
		{
			ID: uuid.New(), ProjectID: projectID, Name: "Swimming Pool",
			Description: "Outdoor pool, lifeguard on duty", Capacity: 20,
			OpenTime: "06:00", CloseTime: "20:00", MaxHours: 2,
			ClosedOnHolidays: false, IsActive: true,
		},
		{
			ID: uuid.New(), ProjectID: projectID, Name: "Club House",
			Description: "Meeting room with projector", Capacity: 30,
			OpenTime: "09:00", CloseTime: "21:00", MaxHours: 4,
			RequiresApproval: true, ClosedOnHolidays: true, IsActive: true,
		},
	}
	for _, f := range facilities {
		if err := repos.Facilities.Create(ctx, f); err != nil {
			return fmt.Errorf("insert demo facility %s: %w", f.Name, err)
		}
	}
	utils.Logger.Infof("seeding: created %d demo facilities", len(facilities))
	return nil
}

func seedUser(ctx context.Context, repo repositories.UserRepository, u *models.User, hash string) error {
	existing, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("check demo user %s: %w", u.Email, err)
	}
	if existing != nil {
		utils.Logger.Infof("seeding: demo %s already present; skipping", u.Role)
		return nil
	}
	u.PasswordHash = hash
	u.Status = models.UserStatusActive
	if err := repo.Create(ctx, u); err != nil {
		if repositories.IsUniqueViolation(err) {
			utils.Logger.Infof("seeding: email %s already taken; skipping", u.Email)
			return nil
		}
		return fmt.Errorf("insert demo user %s: %w", u.Email, err)
	}
	utils.Logger.Infof("seeding: created demo %s (ID=%s)", u.Role, u.ID)
	return nil
}
