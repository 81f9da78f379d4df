package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type UserService struct {
	cfg           *config.Config
	users         repositories.UserRepository
	units         repositories.UnitRepository
	projects      repositories.ProjectRepository
	notifications *NotificationService
	audit         *AuditService
}

func NewUserService(
	cfg *config.Config,
	users repositories.UserRepository,
	units repositories.UnitRepository,
	projects repositories.ProjectRepository,
	notifications *NotificationService,
	audit *AuditService,
) *UserService {
	return &UserService{cfg: cfg, users: users, units: units, projects: projects, notifications: notifications, audit: audit}
}

// toUserDTO masks the decrypted national ID. A value that fails to decrypt
// is logged and left out rather than failing the request.
func toUserDTO(key []byte, u *models.User) shared_dtos.User {
	masked := ""
	if u.IDCardEncrypted != nil {
		plain, err := utils.DecryptOptional(key, *u.IDCardEncrypted)
		if err != nil {
			utils.Logger.WithError(err).Warnf("users: cannot decrypt id card of %s", u.ID)
		} else if plain != "" {
			masked = utils.MaskThaiIDCard(plain)
		}
	}
	return shared_dtos.NewUserFromModel(u, masked)
}

func encryptIDCard(key []byte, idCard string) (*string, error) {
	digits := strings.NewReplacer("-", "", " ", "").Replace(idCard)
	if digits == "" {
		return nil, nil
	}
	enc, err := utils.Encrypt(key, digits)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// loadInProject fetches a user and hides users of other projects from
// everyone but the super admin.
func (s *UserService) loadInProject(ctx context.Context, a Actor, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load user", err)
	}
	if u == nil {
		return nil, utils.NotFound("User not found")
	}
	if a.Role != models.RoleSuperAdmin && (u.ProjectID == nil || *u.ProjectID != a.ProjectID) {
		return nil, utils.NotFound("User not found")
	}
	return u, nil
}

func (s *UserService) checkUnit(ctx context.Context, projectID, unitID uuid.UUID) error {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return utils.Internal("Failed to load unit", err)
	}
	if unit == nil || unit.ProjectID != projectID {
		return utils.BadRequest(utils.ErrCodeValidation, "Unit does not belong to this project")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, a Actor, q dtos.UserQuery) (shared_dtos.Page[shared_dtos.User], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.UserFilter{
		ProjectID: q.ProjectID,
		UnitID:    q.UnitID,
		Role:      q.Role,
		Status:    q.Status,
		Search:    q.Search,
		Limit:     limit,
		Offset:    offset,
	}
	if a.Role != models.RoleSuperAdmin {
		f.ProjectID = a.projectRef()
	}

	list, total, err := s.users.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[shared_dtos.User]{}, utils.Internal("Failed to list users", err)
	}
	out := make([]shared_dtos.User, 0, len(list))
	for _, u := range list {
		out = append(out, toUserDTO(s.cfg.DBEncryptionKey, u))
	}
	return shared_dtos.NewPage(out, total, page, size), nil
}

func (s *UserService) Get(ctx context.Context, a Actor, id uuid.UUID) (*shared_dtos.User, error) {
	if a.IsResident() && id != a.UserID {
		return nil, utils.NotFound("User not found")
	}
	u, err := s.loadInProject(ctx, a, id)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(s.cfg.DBEncryptionKey, u)
	return &dto, nil
}

// Create adds an active account on behalf of the office.
func (s *UserService) Create(ctx context.Context, a Actor, req dtos.CreateUserRequest) (*shared_dtos.User, error) {
	projectID := a.ProjectID
	if a.Role == models.RoleSuperAdmin {
		if req.ProjectID == nil {
			return nil, utils.BadRequest(utils.ErrCodeValidation, "project_id is required")
		}
		projectID = *req.ProjectID
		p, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			return nil, utils.Internal("Failed to load project", err)
		}
		if p == nil {
			return nil, utils.NotFound("Project not found")
		}
	}
	if req.Role == models.RoleAdmin && !a.IsAdmin() {
		return nil, utils.Forbidden("Only admins can create admin accounts")
	}
	if req.Role == models.RoleResident && req.UnitID == nil {
		return nil, utils.BadRequest(utils.ErrCodeValidation, "unit_id is required for residents")
	}
	if req.UnitID != nil {
		if err := s.checkUnit(ctx, projectID, *req.UnitID); err != nil {
			return nil, err
		}
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, utils.BadRequest(utils.ErrCodeValidation, err.Error())
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.Internal("Failed to hash password", err)
	}
	idCard, err := encryptIDCard(s.cfg.DBEncryptionKey, req.IDCard)
	if err != nil {
		return nil, utils.Internal("Failed to secure id card", err)
	}

	u := &models.User{
		ID:              uuid.New(),
		ProjectID:       &projectID,
		UnitID:          req.UnitID,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           utils.NormalizeThaiPhone(req.Phone),
		IDCardEncrypted: idCard,
		Role:            req.Role,
		Status:          models.UserStatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered", utils.ErrEmailExists)
		}
		return nil, utils.Internal("Failed to create user", err)
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &projectID,
		ActorID:    a.userRef(),
		Action:     models.AuditCreate,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
		Details:    map[string]any{"email": u.Email, "role": u.Role},
	})
	dto := toUserDTO(s.cfg.DBEncryptionKey, u)
	return &dto, nil
}

// Update applies a partial update. Non-office callers may only edit their
// own profile fields.
func (s *UserService) Update(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateUserRequest) (*shared_dtos.User, error) {
	self := id == a.UserID
	if !a.IsOffice() && !self {
		return nil, utils.NotFound("User not found")
	}
	if (req.Role != nil || req.Status != nil || req.UnitID != nil) && !a.IsAdmin() {
		return nil, utils.Forbidden("Only admins can change role, status or unit")
	}

	target, err := s.loadInProject(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if req.UnitID != nil && target.ProjectID != nil {
		if err := s.checkUnit(ctx, *target.ProjectID, *req.UnitID); err != nil {
			return nil, err
		}
	}
	var idCard *string
	if req.IDCard != nil {
		if idCard, err = encryptIDCard(s.cfg.DBEncryptionKey, *req.IDCard); err != nil {
			return nil, utils.Internal("Failed to secure id card", err)
		}
	}

	var updated *models.User
	err = s.users.UpdateWithRetry(ctx, id, func(u *models.User) error {
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Phone != nil {
			u.Phone = utils.NormalizeThaiPhone(*req.Phone)
		}
		if req.IDCard != nil {
			u.IDCardEncrypted = idCard
		}
		if req.UnitID != nil {
			u.UnitID = req.UnitID
		}
		if req.Role != nil {
			if u.Role == models.RoleSuperAdmin {
				return utils.Forbidden("Cannot change the super admin's role")
			}
			u.Role = *req.Role
		}
		if req.Status != nil {
			if u.Status == models.UserStatusPending || u.Status == models.UserStatusRejected {
				return invalidTransition("User", u.Status, *req.Status)
			}
			u.Status = *req.Status
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "User")
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  target.ProjectID,
		ActorID:    a.userRef(),
		Action:     models.AuditUpdate,
		TargetType: models.TargetUser,
		TargetID:   id,
		Details:    req,
	})
	dto := toUserDTO(s.cfg.DBEncryptionKey, updated)
	return &dto, nil
}

// Approve activates a pending registration and tells the resident.
func (s *UserService) Approve(ctx context.Context, a Actor, id uuid.UUID) (*shared_dtos.User, error) {
	return s.review(ctx, a, id, models.UserStatusActive, "")
}

func (s *UserService) Reject(ctx context.Context, a Actor, id uuid.UUID, reason string) (*shared_dtos.User, error) {
	return s.review(ctx, a, id, models.UserStatusRejected, reason)
}

func (s *UserService) review(ctx context.Context, a Actor, id uuid.UUID, next models.UserStatus, reason string) (*shared_dtos.User, error) {
	if _, err := s.loadInProject(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.users.UpdateWithRetry(ctx, id, func(u *models.User) error {
		if u.Status != models.UserStatusPending {
			return invalidTransition("User", u.Status, next)
		}
		u.Status = next
		if reason != "" {
			r := reason
			u.RejectReason = &r
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "User")
	}

	action := models.AuditApprove
	if next == models.UserStatusRejected {
		action = models.AuditReject
	}
	s.audit.Log(ctx, AuditEntry{
		ProjectID:  updated.ProjectID,
		ActorID:    a.userRef(),
		Action:     action,
		TargetType: models.TargetUser,
		TargetID:   id,
		Details:    map[string]any{"status": next, "reason": reason},
	})

	s.notifyReviewed(ctx, updated, reason)
	dto := toUserDTO(s.cfg.DBEncryptionKey, updated)
	return &dto, nil
}

func (s *UserService) notifyReviewed(ctx context.Context, u *models.User, reason string) {
	projectName := s.cfg.OrganizationName
	var projectID uuid.UUID
	if u.ProjectID != nil {
		projectID = *u.ProjectID
		if p, err := s.projects.GetByID(ctx, projectID); err == nil && p != nil {
			projectName = p.Name
		}
	}

	n := Notice{
		ProjectID:  projectID,
		Recipients: []*models.User{u},
		Type:       models.NotificationRegistration,
	}
	if u.Status == models.UserStatusActive {
		email := RegistrationApprovedEmail(projectName, u.FirstName, s.cfg.AppUrl+"/login")
		n.Title = "Registration approved"
		n.Message = "Welcome to " + projectName + ". Your account is now active."
		n.Email = &email
	} else {
		email := RegistrationRejectedEmail(projectName, u.FirstName, reason)
		n.Title = "Registration rejected"
		n.Message = "Your registration was not approved: " + reason
		n.Email = &email
	}
	s.notifications.Notify(ctx, n)
}

// Delete soft-deletes the account. Nobody may delete themselves.
func (s *UserService) Delete(ctx context.Context, a Actor, id uuid.UUID) error {
	if id == a.UserID {
		return utils.BadRequest(utils.ErrCodeValidation, "You cannot delete your own account")
	}
	target, err := s.loadInProject(ctx, a, id)
	if err != nil {
		return err
	}
	if target.Role == models.RoleSuperAdmin {
		return utils.Forbidden("The super admin cannot be deleted")
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return mapUpdateErr(err, "User")
	}
	s.audit.Log(ctx, AuditEntry{
		ProjectID:  target.ProjectID,
		ActorID:    a.userRef(),
		Action:     models.AuditDelete,
		TargetType: models.TargetUser,
		TargetID:   id,
	})
	return nil
}
