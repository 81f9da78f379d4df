package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/constants"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type BookingService struct {
	repo          repositories.BookingRepository
	facilities    repositories.FacilityRepository
	projects      repositories.ProjectRepository
	users         repositories.UserRepository
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewBookingService(
	repo repositories.BookingRepository,
	facilities repositories.FacilityRepository,
	projects repositories.ProjectRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
) *BookingService {
	return &BookingService{
		repo:          repo,
		facilities:    facilities,
		projects:      projects,
		users:         users,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

func bookingRuleErr(msg string) error {
	return utils.BadRequest(utils.ErrCodeValidation, msg)
}

// validateSlot applies the facility's booking rules to [start, end) as seen
// in the project's time zone.
func validateSlot(f *models.Facility, loc *time.Location, start, end, now time.Time, attendees int) error {
	if !f.IsActive {
		return bookingRuleErr("Facility is not in service")
	}
	if !end.After(start) {
		return bookingRuleErr("end_time must be after start_time")
	}
	if start.Before(now) {
		return bookingRuleErr("Cannot book a time in the past")
	}
	if start.After(now.AddDate(0, 0, constants.BookingMaxDaysAhead)) {
		return bookingRuleErr(fmt.Sprintf("Bookings open at most %d days ahead", constants.BookingMaxDaysAhead))
	}
	if f.MaxHours > 0 && end.Sub(start) > time.Duration(f.MaxHours)*time.Hour {
		return bookingRuleErr(fmt.Sprintf("A booking may last at most %d hours", f.MaxHours))
	}
	if attendees > f.Capacity {
		return bookingRuleErr(fmt.Sprintf("Facility holds at most %d people", f.Capacity))
	}

	localStart := start.In(loc)
	opensAt, closesAt, err := openingHours(f, localStart)
	if err != nil {
		return utils.Internal("Facility hours are invalid", err)
	}
	if localStart.Before(opensAt) || end.After(closesAt) {
		return bookingRuleErr(fmt.Sprintf("Facility is open %s-%s", f.OpenTime, f.CloseTime))
	}
	if f.ClosedOnHolidays {
		if holiday, name := utils.IsThaiHoliday(localStart); holiday {
			return bookingRuleErr("Facility is closed for " + name)
		}
	}
	return nil
}

// Create books a slot. Facilities without approval confirm immediately;
// overlapping pending or approved bookings answer 409 with the clash.
func (s *BookingService) Create(ctx context.Context, a Actor, req dtos.CreateBookingRequest) (*models.Booking, error) {
	f, err := s.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, utils.Internal("Failed to load facility", err)
	}
	if f == nil || f.ProjectID != a.ProjectID {
		return nil, utils.NotFound("Facility not found")
	}
	loc, err := projectLocation(ctx, s.projects, a.ProjectID)
	if err != nil {
		return nil, err
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if err := validateSlot(f, loc, start, end, s.now(), req.Attendees); err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:         uuid.New(),
		ProjectID:  a.ProjectID,
		FacilityID: f.ID,
		UserID:     a.UserID,
		StartTime:  start,
		EndTime:    end,
		Attendees:  req.Attendees,
		Note:       strings.TrimSpace(req.Note),
		Status:     models.BookingStatusPending,
	}
	if !f.RequiresApproval {
		b.Status = models.BookingStatusApproved
	}
	if a.IsResident() {
		unitID, err := residentUnit(ctx, s.users, a)
		if err != nil {
			return nil, err
		}
		b.UnitID = &unitID
	}

	conflict, err := s.repo.CreateIfFree(ctx, b)
	if err != nil {
		return nil, utils.Internal("Failed to create booking", err)
	}
	if conflict != nil {
		return nil, utils.Conflict("The facility is already booked for part of that time").WithDetails(dtos.BookingConflict{
			BookingID: conflict.ID.String(),
			StartTime: conflict.StartTime,
			EndTime:   conflict.EndTime,
			Status:    conflict.Status,
		})
	}

	s.audit.record(ctx, a, models.AuditCreate, models.TargetBooking, b.ID, map[string]any{
		"facility_id": f.ID, "start_time": b.StartTime, "end_time": b.EndTime, "status": b.Status,
	})
	if b.Status == models.BookingStatusPending {
		s.notifications.NotifyProjectRoles(ctx, Notice{
			ProjectID: a.ProjectID,
			Type:      models.NotificationBooking,
			Title:     "Booking awaiting approval",
			Message:   f.Name + " on " + b.StartTime.In(loc).Format("2 Jan 15:04"),
			Link:      "/bookings/" + b.ID.String(),
		}, models.RoleAdmin)
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, a Actor, q dtos.BookingQuery) (shared_dtos.Page[*models.Booking], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.BookingFilter{
		ProjectID:  a.ProjectID,
		FacilityID: q.FacilityID,
		Status:     q.Status,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     offset,
	}
	if a.IsResident() {
		f.UserID = a.userRef()
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Booking]{}, utils.Internal("Failed to list bookings", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}

func (s *BookingService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load booking", err)
	}
	if b == nil || b.ProjectID != a.ProjectID || (a.IsResident() && b.UserID != a.UserID) {
		return nil, utils.NotFound("Booking not found")
	}
	return b, nil
}

func (s *BookingService) Approve(ctx context.Context, a Actor, id uuid.UUID, note string) (*models.Booking, error) {
	return s.review(ctx, a, id, models.BookingStatusApproved, note)
}

func (s *BookingService) Reject(ctx context.Context, a Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	return s.review(ctx, a, id, models.BookingStatusRejected, reason)
}

func (s *BookingService) review(ctx context.Context, a Actor, id uuid.UUID, next models.BookingStatus, note string) (*models.Booking, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.Booking
	err := s.repo.UpdateWithRetry(ctx, id, func(b *models.Booking) error {
		if b.Status != models.BookingStatusPending || !b.Status.CanTransitionTo(next) {
			return invalidTransition("Booking", b.Status, next)
		}
		now := s.now()
		b.Status = next
		b.ReviewedBy = a.userRef()
		b.ReviewedAt = &now
		if note = strings.TrimSpace(note); note != "" {
			b.ReviewNote = &note
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Booking")
	}

	action := models.AuditApprove
	if next == models.BookingStatusRejected {
		action = models.AuditReject
	}
	s.audit.record(ctx, a, action, models.TargetBooking, id, map[string]string{"note": note})
	s.notifyBooker(ctx, updated)
	return updated, nil
}

func (s *BookingService) notifyBooker(ctx context.Context, b *models.Booking) {
	name := "facility"
	if f, err := s.facilities.GetByID(ctx, b.FacilityID); err == nil && f != nil {
		name = f.Name
	}
	loc, err := projectLocation(ctx, s.projects, b.ProjectID)
	if err != nil {
		loc = utils.LoadLocation("")
	}
	email := BookingReviewedEmail(b, name, loc)
	s.notifications.NotifyUser(ctx, b.UserID, Notice{
		ProjectID: b.ProjectID,
		Type:      models.NotificationBooking,
		Title:     "Booking " + string(b.Status),
		Message:   name + " on " + b.StartTime.In(loc).Format("2 Jan 15:04") + " was " + string(b.Status),
		Link:      "/bookings/" + b.ID.String(),
		Email:     &email,
	})
}

// Cancel frees the slot. Residents may only cancel their own bookings that
// have not started yet.
func (s *BookingService) Cancel(ctx context.Context, a Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.Booking
	err := s.repo.UpdateWithRetry(ctx, id, func(b *models.Booking) error {
		if !b.Status.CanTransitionTo(models.BookingStatusCancelled) {
			return invalidTransition("Booking", b.Status, models.BookingStatusCancelled)
		}
		if a.IsResident() && !b.StartTime.After(s.now()) {
			return utils.NewAppError(http.StatusConflict, utils.ErrCodeInvalidTransition, "Booking has already started", utils.ErrInvalidTransition)
		}
		b.Status = models.BookingStatusCancelled
		if reason = strings.TrimSpace(reason); reason != "" {
			b.CancelReason = &reason
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Booking")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetBooking, id, map[string]string{"status": string(models.BookingStatusCancelled), "reason": reason})
	if updated.UserID != a.UserID {
		s.notifyBooker(ctx, updated)
	}
	return updated, nil
}
