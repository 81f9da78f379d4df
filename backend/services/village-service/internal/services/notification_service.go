package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// Notice is one message fanned out to several users. In-app rows are always
// written; Email and SMS go out only when set and enabled for the project.
type Notice struct {
	ProjectID  uuid.UUID
	Recipients []*models.User
	Type       models.NotificationType
	Title      string
	Message    string
	Link       string
	Email      *EmailContent
	SMS        string
}

type NotificationService struct {
	repo     repositories.NotificationRepository
	users    repositories.UserRepository
	features *FeatureService
	email    *EmailService
	sms      *SMSService
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	users repositories.UserRepository,
	features *FeatureService,
	email *EmailService,
	sms *SMSService,
) *NotificationService {
	return &NotificationService{repo: repo, users: users, features: features, email: email, sms: sms}
}

// Notify delivers n. Channel failures are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, n Notice) {
	if len(n.Recipients) == 0 {
		return
	}

	rows := make([]*models.Notification, 0, len(n.Recipients))
	for _, u := range n.Recipients {
		row := &models.Notification{
			ID:      uuid.New(),
			UserID:  u.ID,
			Type:    n.Type,
			Title:   n.Title,
			Message: n.Message,
		}
		if n.ProjectID != uuid.Nil {
			pid := n.ProjectID
			row.ProjectID = &pid
		}
		if n.Link != "" {
			link := n.Link
			row.Link = &link
		}
		rows = append(rows, row)
	}
	if err := s.repo.CreateMany(ctx, rows); err != nil {
		utils.Logger.WithError(err).Errorf("notify: failed to store %d %s notifications", len(rows), n.Type)
	}

	if n.Email != nil && s.email.Enabled() && s.channelOn(ctx, n.ProjectID, models.FeatureEmailNotifications) {
		for _, u := range n.Recipients {
			if err := s.email.Send(ctx, u.FullName(), u.Email, *n.Email); err != nil {
				utils.Logger.WithError(err).Warnf("notify: email to %s failed", u.Email)
			}
		}
	}

	if n.SMS != "" && s.sms.Enabled() && s.channelOn(ctx, n.ProjectID, models.FeatureSMSNotifications) {
		for _, u := range n.Recipients {
			if u.Phone == "" {
				continue
			}
			if err := s.sms.Send(ctx, u.Phone, n.SMS); err != nil {
				utils.Logger.WithError(err).Warnf("notify: sms to user %s failed", u.ID)
			}
		}
	}
}

func (s *NotificationService) channelOn(ctx context.Context, projectID uuid.UUID, key models.FeatureKey) bool {
	if projectID == uuid.Nil {
		return models.FeatureDefaults[key]
	}
	on, err := s.features.IsEnabled(ctx, projectID, key)
	if err != nil {
		utils.Logger.WithError(err).Warnf("notify: could not resolve %s; skipping channel", key)
		return false
	}
	return on
}

// NotifyProjectRoles resolves every active user holding one of roles in
// the project and notifies them.
func (s *NotificationService) NotifyProjectRoles(ctx context.Context, n Notice, roles ...models.UserRole) {
	users, err := s.users.ListByRoles(ctx, n.ProjectID, roles...)
	if err != nil {
		utils.Logger.WithError(err).Errorf("notify: failed to resolve %v recipients", roles)
		return
	}
	n.Recipients = users
	s.Notify(ctx, n)
}

// NotifyUnit notifies every active resident of a unit.
func (s *NotificationService) NotifyUnit(ctx context.Context, unitID uuid.UUID, n Notice) {
	users, err := s.users.ListActiveByUnit(ctx, unitID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("notify: failed to resolve residents of unit %s", unitID)
		return
	}
	n.Recipients = users
	s.Notify(ctx, n)
}

// NotifyUser notifies a single user by ID.
func (s *NotificationService) NotifyUser(ctx context.Context, userID uuid.UUID, n Notice) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil {
		utils.Logger.WithError(err).Warnf("notify: user %s not found", userID)
		return
	}
	n.Recipients = []*models.User{u}
	s.Notify(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, q dtos.NotificationQuery) (shared_dtos.Page[*models.Notification], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	list, total, err := s.repo.ListByUser(ctx, userID, q.UnreadOnly, limit, offset)
	if err != nil {
		return shared_dtos.Page[*models.Notification]{}, utils.Internal("Failed to list notifications", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.Internal("Failed to count notifications", err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return mapUpdateErr(s.repo.MarkRead(ctx, userID, id), "Notification")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.Internal("Failed to mark notifications read", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return mapUpdateErr(s.repo.Delete(ctx, userID, id), "Notification")
}

// PurgeRead deletes read notifications older than retention.
func (s *NotificationService) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.PurgeReadBefore(ctx, time.Now().Add(-retention))
}
