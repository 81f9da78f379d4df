package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	twilio "github.com/twilio/twilio-go"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

var errInvalidCredentials = utils.NewAppError(http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid email or password", nil)

type AuthService struct {
	cfg           *config.Config
	users         repositories.UserRepository
	projects      repositories.ProjectRepository
	units         repositories.UnitRepository
	jwt           JWTService
	notifications *NotificationService
	audit         *AuditService
	twilioClient  *twilio.RestClient
	now           func() time.Time
}

func NewAuthService(
	cfg *config.Config,
	users repositories.UserRepository,
	projects repositories.ProjectRepository,
	units repositories.UnitRepository,
	jwt JWTService,
	notifications *NotificationService,
	audit *AuditService,
	twilioClient *twilio.RestClient,
) *AuthService {
	return &AuthService{
		cfg:           cfg,
		users:         users,
		projects:      projects,
		units:         units,
		jwt:           jwt,
		notifications: notifications,
		audit:         audit,
		twilioClient:  twilioClient,
		now:           time.Now,
	}
}

// Register creates a pending resident account attached to the unit named by
// project code and house number, then alerts the project's admins.
func (s *AuthService) Register(ctx context.Context, req dtos.RegisterRequest) (*shared_dtos.User, error) {
	project, err := s.projects.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(req.ProjectCode)))
	if err != nil {
		return nil, utils.Internal("Failed to load project", err)
	}
	if project == nil {
		return nil, utils.NotFound("Unknown project code")
	}
	unit, err := s.units.GetByHouseNumber(ctx, project.ID, strings.TrimSpace(req.HouseNumber))
	if err != nil {
		return nil, utils.Internal("Failed to load unit", err)
	}
	if unit == nil {
		return nil, utils.NotFound("House number not found in this project")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, utils.Internal("Failed to check email", err)
	} else if existing != nil {
		return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered", utils.ErrEmailExists)
	}

	if err := s.checkContact(ctx, email, req.Phone); err != nil {
		return nil, err
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
		ProjectID:       &project.ID,
		UnitID:          &unit.ID,
		Email:           email,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           utils.NormalizeThaiPhone(req.Phone),
		IDCardEncrypted: idCard,
		Role:            models.RoleResident,
		Status:          models.UserStatusPending,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, utils.NewAppError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered", utils.ErrEmailExists)
		}
		return nil, utils.Internal("Failed to create account", err)
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  &project.ID,
		ActorID:    &u.ID,
		Action:     models.AuditCreate,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
		Details:    map[string]any{"self_registration": true, "house_number": unit.HouseNumber},
	})

	s.notifications.NotifyProjectRoles(ctx, Notice{
		ProjectID: project.ID,
		Type:      models.NotificationRegistration,
		Title:     "New resident registration",
		Message:   u.FullName() + " registered for house " + unit.HouseNumber + " and is awaiting approval.",
		Link:      "/admin/users?status=pending",
	}, models.RoleAdmin)

	dto := toUserDTO(s.cfg.DBEncryptionKey, u)
	return &dto, nil
}

// checkContact runs the optional SendGrid and Twilio lookups. Syntax has
// already been checked by request validation.
func (s *AuthService) checkContact(ctx context.Context, email, phone string) error {
	if s.cfg.LDFlag_ValidateEmailWithSendGrid {
		ok, err := utils.ValidateEmail(ctx, s.cfg.SendGridAPIKey, email, true)
		if err != nil {
			utils.Logger.WithError(err).Warn("register: email validation unavailable")
		} else if !ok {
			return utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "Email address is not deliverable", utils.ErrInvalidEmail)
		}
	}

	ok, err := utils.ValidatePhoneNumber(ctx, phone, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
	if err != nil {
		utils.Logger.WithError(err).Warn("register: phone validation unavailable")
	} else if !ok {
		return utils.NewAppError(http.StatusBadRequest, utils.ErrCodeValidation, "Phone number is not valid", utils.ErrInvalidPhone)
	}
	return nil
}

// Login checks the password and account state and returns an access token.
// Repeated failures lock the account for a while.
func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.Internal("Failed to load account", err)
	}
	if u == nil {
		return nil, errInvalidCredentials
	}

	if u.LockedUntil != nil && u.LockedUntil.After(s.now()) {
		return nil, utils.NewAppError(http.StatusLocked, utils.ErrCodeLockedAccount,
			"Too many failed attempts, try again after "+u.LockedUntil.Format(time.RFC3339), nil)
	}

	if !utils.CheckPasswordHash(req.Password, u.PasswordHash) {
		if err := s.users.RecordFailedLogin(ctx, u.ID, constants.MaxFailedLogins, constants.LoginLockoutMinutes); err != nil {
			utils.Logger.WithError(err).Error("Failed to record failed login")
		}
		return nil, errInvalidCredentials
	}

	switch u.Status {
	case models.UserStatusPending:
		return nil, utils.Forbidden("Your registration is awaiting approval")
	case models.UserStatusRejected:
		return nil, utils.Forbidden("Your registration was rejected")
	case models.UserStatusSuspended:
		return nil, utils.Forbidden("Your account is suspended")
	}

	if err := s.users.RecordLogin(ctx, u.ID); err != nil {
		utils.Logger.WithError(err).Warn("Failed to record login")
	}

	token, exp, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, utils.Internal("Token generation failed", err)
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  u.ProjectID,
		ActorID:    &u.ID,
		Action:     models.AuditLogin,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
	})

	return &dtos.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(exp.Sub(s.now()).Seconds()),
		User:        toUserDTO(s.cfg.DBEncryptionKey, u),
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*shared_dtos.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.Internal("Failed to load account", err)
	}
	if u == nil {
		return nil, utils.NotFound("Account not found")
	}
	dto := toUserDTO(s.cfg.DBEncryptionKey, u)
	return &dto, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req dtos.ChangePasswordRequest) error {
	if err := utils.ValidatePasswordStrength(req.NewPassword); err != nil {
		return utils.BadRequest(utils.ErrCodeValidation, err.Error())
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return utils.Internal("Failed to hash password", err)
	}

	var projectID *uuid.UUID
	err = s.users.UpdateWithRetry(ctx, userID, func(u *models.User) error {
		if !utils.CheckPasswordHash(req.CurrentPassword, u.PasswordHash) {
			return errInvalidCredentials
		}
		u.PasswordHash = hash
		projectID = u.ProjectID
		return nil
	})
	if err != nil {
		return mapUpdateErr(err, "Account")
	}

	s.audit.Log(ctx, AuditEntry{
		ProjectID:  projectID,
		ActorID:    &userID,
		Action:     models.AuditUpdate,
		TargetType: models.TargetUser,
		TargetID:   userID,
		Details:    map[string]string{"field": "password"},
	})
	return nil
}
