package seeding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type fakeUsers struct {
	repositories.UserRepository
	byID      map[uuid.UUID]*models.User
	createErr error
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = map[uuid.UUID]*models.User{}
	}
	f.byID[u.ID] = u
	return nil
}

func TestSeedSuperAdminIsIdempotent(t *testing.T) {
	repo := &fakeUsers{}
	ctx := context.Background()

	require.NoError(t, SeedSuperAdmin(ctx, repo, "Secret123"))
	require.Len(t, repo.byID, 1)

	u := repo.byID[uuid.MustParse(DefaultSuperAdminID)]
	require.NotNil(t, u)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.Equal(t, models.UserStatusActive, u.Status)
	assert.Nil(t, u.ProjectID)
	assert.True(t, utils.CheckPasswordHash("Secret123", u.PasswordHash))

	hash := u.PasswordHash
	require.NoError(t, SeedSuperAdmin(ctx, repo, "Other456"))
	assert.Equal(t, hash, repo.byID[u.ID].PasswordHash)
}

func TestSeedSuperAdminToleratesEmailClash(t *testing.T) {
	repo := &fakeUsers{createErr: &pgconn.PgError{Code: "23505"}}
	assert.NoError(t, SeedSuperAdmin(context.Background(), repo, "Secret123"))
}
