package app

import (
	"context"
	"fmt"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-seeding"
)

// SeedAllTestData seeds the super admin and the demo project. Every step
// is idempotent so it is safe on each boot.
func SeedAllTestData(ctx context.Context, db repositories.DB, password string) error {
	users := repositories.NewUserRepository(db)
	if err := seeding.SeedSuperAdmin(ctx, users, password); err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	if err := seeding.SeedDemoProject(ctx, seeding.Repos{
		Projects:   repositories.NewProjectRepository(db),
		Units:      repositories.NewUnitRepository(db),
		Users:      users,
		Facilities: repositories.NewFacilityRepository(db),
	}, password); err != nil {
		return fmt.Errorf("seed demo project: %w", err)
	}
	return nil
}
