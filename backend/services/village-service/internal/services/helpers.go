package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// Actor is the caller a service acts for, already resolved to the project
// the request targets.
type Actor struct {
	UserID    uuid.UUID
	Role      models.UserRole
	ProjectID uuid.UUID
}

func (a Actor) IsResident() bool { return a.Role == models.RoleResident }

// IsOffice covers the juristic office: admins, staff and the super admin.
func (a Actor) IsOffice() bool { return !a.IsResident() }

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleSuperAdmin
}

func (a Actor) userRef() *uuid.UUID {
	id := a.UserID
	return &id
}

func (a Actor) projectRef() *uuid.UUID {
	id := a.ProjectID
	return &id
}

// residentUnit returns the unit the resident is attached to, or a 403 when
// the account has none.
func residentUnit(ctx context.Context, users repositories.UserRepository, a Actor) (uuid.UUID, error) {
	u, err := users.GetByID(ctx, a.UserID)
	if err != nil {
		return uuid.Nil, utils.Internal("Failed to load account", err)
	}
	if u == nil || u.UnitID == nil {
		return uuid.Nil, utils.Forbidden("Account is not linked to a unit")
	}
	return *u.UnitID, nil
}

// mapUpdateErr converts repository update errors into API errors. App
// errors raised inside the mutate callback pass through untouched.
func mapUpdateErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NotFound(what + " not found")
	case errors.Is(err, utils.ErrRowVersionConflict):
		return utils.NewAppError(http.StatusConflict, utils.ErrCodeRowVersionConflict, what+" was modified concurrently, please retry", err)
	}
	return utils.Internal("Failed to update "+what, err)
}

func invalidTransition[S ~string](what string, from, to S) error {
	return utils.NewAppError(http.StatusConflict, utils.ErrCodeInvalidTransition,
		what+" cannot move from "+string(from)+" to "+string(to), utils.ErrInvalidTransition)
}
