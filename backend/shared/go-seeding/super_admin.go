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
	DefaultSuperAdminID    = "11111111-2222-3333-4444-555555555555"
	DefaultSuperAdminEmail = "superadmin@myvillage.app"
)

// SeedSuperAdmin ensures the platform super admin exists. The password is
// only used when the row is first created.
func SeedSuperAdmin(ctx context.Context, userRepo repositories.UserRepository, password string) error {
	id := uuid.MustParse(DefaultSuperAdminID)

	existing, err := userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking for existing super admin by ID: %w", err)
	}
	if existing != nil {
		utils.Logger.Infof("Default super admin already exists (ID=%s); skipping seed.", existing.ID)
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	u := &models.User{
		ID:           id,
		Email:        DefaultSuperAdminEmail,
		PasswordHash: hash,
		FirstName:    "Super",
		LastName:     "Admin",
		Phone:        "0800000000",
		Role:         models.RoleSuperAdmin,
		Status:       models.UserStatusActive,
	}
	if err := userRepo.Create(ctx, u); err != nil {
		if repositories.IsUniqueViolation(err) {
			utils.Logger.Infof("seeding: super admin email %s already taken; skipping", u.Email)
			return nil
		}
		return fmt.Errorf("failed to insert super admin: %w", err)
	}

	utils.Logger.Infof("Successfully seeded super admin (ID=%s, email=%s).", u.ID, u.Email)
	return nil
}
