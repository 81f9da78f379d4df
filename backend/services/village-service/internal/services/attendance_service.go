package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

var errAlreadyCheckedIn = utils.Conflict("Already checked in; check out first")

type AttendanceService struct {
	repo     repositories.AttendanceRepository
	projects repositories.ProjectRepository
	audit    *AuditService
	now      func() time.Time
}

func NewAttendanceService(repo repositories.AttendanceRepository, projects repositories.ProjectRepository, audit *AuditService) *AttendanceService {
	return &AttendanceService{repo: repo, projects: projects, audit: audit, now: time.Now}
}

// locationErr is the 422 returned when a GPS fix is outside the allowed radius.
func locationErr(distance float64, radius int) error {
	return utils.NewAppError(http.StatusUnprocessableEntity, utils.ErrCodeLocationInaccurate,
		"You are too far from the required location", nil).
		WithDetails(dtos.LocationErrorDetails{DistanceM: distance, RadiusM: radius})
}

// checkGeofence returns the distance to the project center or a
// location_inaccurate error when it exceeds the geofence radius.
func (s *AttendanceService) checkGeofence(ctx context.Context, projectID uuid.UUID, lat, lng float64) (float64, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return 0, utils.Internal("Failed to load project", err)
	}
	if p == nil {
		return 0, utils.NotFound("Project not found")
	}
	radius := p.GeofenceRadiusM
	if radius <= 0 {
		radius = utils.DefaultGeofenceRadiusM
	}
	d, ok := utils.WithinRadius(p.Latitude, p.Longitude, lat, lng, radius)
	if !ok {
		return d, locationErr(d, radius)
	}
	return d, nil
}

func (s *AttendanceService) CheckIn(ctx context.Context, a Actor, req dtos.LocationRequest) (*models.Attendance, error) {
	open, err := s.repo.GetOpenByUser(ctx, a.UserID)
	if err != nil {
		return nil, utils.Internal("Failed to load attendance", err)
	}
	if open != nil {
		return nil, errAlreadyCheckedIn
	}
	d, err := s.checkGeofence(ctx, a.ProjectID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	att := &models.Attendance{
		ID:               uuid.New(),
		ProjectID:        a.ProjectID,
		UserID:           a.UserID,
		CheckInAt:        s.now().UTC(),
		CheckInLat:       req.Latitude,
		CheckInLng:       req.Longitude,
		CheckInDistanceM: d,
		Note:             req.Note,
	}
	if err := s.repo.Create(ctx, att); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, errAlreadyCheckedIn
		}
		return nil, utils.Internal("Failed to check in", err)
	}
	s.audit.record(ctx, a, models.AuditCheckIn, models.TargetAttendance, att.ID, map[string]float64{"distance_m": d})
	return att, nil
}

// CheckOut closes the caller's open attendance.
func (s *AttendanceService) CheckOut(ctx context.Context, a Actor, req dtos.LocationRequest) (*models.Attendance, error) {
	open, err := s.repo.GetOpenByUser(ctx, a.UserID)
	if err != nil {
		return nil, utils.Internal("Failed to load attendance", err)
	}
	if open == nil {
		return nil, utils.Conflict("Not checked in")
	}
	d, err := s.checkGeofence(ctx, open.ProjectID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var updated *models.Attendance
	err = s.repo.UpdateWithRetry(ctx, open.ID, func(att *models.Attendance) error {
		if !att.IsOpen() {
			return utils.Conflict("Not checked in")
		}
		att.CheckOutAt = &now
		att.CheckOutLat = &req.Latitude
		att.CheckOutLng = &req.Longitude
		att.CheckOutDistanceM = &d
		if req.Note != nil {
			att.Note = req.Note
		}
		updated = att
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Attendance")
	}
	s.audit.record(ctx, a, models.AuditCheckOut, models.TargetAttendance, open.ID, map[string]float64{"distance_m": d})
	return updated, nil
}

// Current returns the caller's open attendance or nil.
func (s *AttendanceService) Current(ctx context.Context, a Actor) (*models.Attendance, error) {
	open, err := s.repo.GetOpenByUser(ctx, a.UserID)
	if err != nil {
		return nil, utils.Internal("Failed to load attendance", err)
	}
	return open, nil
}

// List shows admins the whole project and everyone else their own records.
func (s *AttendanceService) List(ctx context.Context, a Actor, q dtos.AttendanceQuery) (shared_dtos.Page[*models.Attendance], error) {
	page, size, limit, offset := utils.NormalizePage(q.Page, q.PageSize)
	f := repositories.AttendanceFilter{
		ProjectID: a.ProjectID,
		UserID:    q.UserID,
		From:      q.From,
		To:        q.To,
		Limit:     limit,
		Offset:    offset,
	}
	if !a.IsAdmin() {
		f.UserID = a.userRef()
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return shared_dtos.Page[*models.Attendance]{}, utils.Internal("Failed to list attendance", err)
	}
	return shared_dtos.NewPage(list, total, page, size), nil
}
