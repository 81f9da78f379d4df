package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

type FacilityService struct {
	repo     repositories.FacilityRepository
	bookings repositories.BookingRepository
	projects repositories.ProjectRepository
	audit    *AuditService
}

func NewFacilityService(
	repo repositories.FacilityRepository,
	bookings repositories.BookingRepository,
	projects repositories.ProjectRepository,
	audit *AuditService,
) *FacilityService {
	return &FacilityService{repo: repo, bookings: bookings, projects: projects, audit: audit}
}

// parseClock reads "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// openingHours returns the facility's open and close instants on the local
// calendar day of day.
func openingHours(f *models.Facility, day time.Time) (time.Time, time.Time, error) {
	open, err := parseClock(f.OpenTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	closeAt, err := parseClock(f.CloseTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(open) * time.Minute), midnight.Add(time.Duration(closeAt) * time.Minute), nil
}

func checkHours(openTime, closeTime string) error {
	open, err := parseClock(openTime)
	if err != nil {
		return utils.BadRequest(utils.ErrCodeValidation, err.Error())
	}
	closeAt, err := parseClock(closeTime)
	if err != nil {
		return utils.BadRequest(utils.ErrCodeValidation, err.Error())
	}
	if closeAt <= open {
		return utils.BadRequest(utils.ErrCodeValidation, "close_time must be after open_time")
	}
	return nil
}

func (s *FacilityService) load(ctx context.Context, a Actor, id uuid.UUID) (*models.Facility, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load facility", err)
	}
	if f == nil || f.ProjectID != a.ProjectID || (a.IsResident() && !f.IsActive) {
		return nil, utils.NotFound("Facility not found")
	}
	return f, nil
}

func (s *FacilityService) List(ctx context.Context, a Actor) ([]*models.Facility, error) {
	list, err := s.repo.ListByProject(ctx, a.ProjectID, a.IsResident())
	if err != nil {
		return nil, utils.Internal("Failed to list facilities", err)
	}
	if list == nil {
		list = []*models.Facility{}
	}
	return list, nil
}

func (s *FacilityService) Get(ctx context.Context, a Actor, id uuid.UUID) (*models.Facility, error) {
	return s.load(ctx, a, id)
}

func (s *FacilityService) Create(ctx context.Context, a Actor, req dtos.CreateFacilityRequest) (*models.Facility, error) {
	if err := checkHours(req.OpenTime, req.CloseTime); err != nil {
		return nil, err
	}
	f := &models.Facility{
		ID:               uuid.New(),
		ProjectID:        a.ProjectID,
		Name:             strings.TrimSpace(req.Name),
		Description:      utils.SanitizeHTML(req.Description),
		Capacity:         req.Capacity,
		OpenTime:         req.OpenTime,
		CloseTime:        req.CloseTime,
		MaxHours:         req.MaxHours,
		RequiresApproval: req.RequiresApproval,
		ClosedOnHolidays: req.ClosedOnHolidays,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, utils.Internal("Failed to create facility", err)
	}
	s.audit.record(ctx, a, models.AuditCreate, models.TargetFacility, f.ID, map[string]string{"name": f.Name})
	return f, nil
}

func (s *FacilityService) Update(ctx context.Context, a Actor, id uuid.UUID, req dtos.UpdateFacilityRequest) (*models.Facility, error) {
	if _, err := s.load(ctx, a, id); err != nil {
		return nil, err
	}

	var updated *models.Facility
	err := s.repo.UpdateWithRetry(ctx, id, func(f *models.Facility) error {
		if req.Name != nil {
			f.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			f.Description = utils.SanitizeHTML(*req.Description)
		}
		if req.Capacity != nil {
			f.Capacity = *req.Capacity
		}
		if req.OpenTime != nil {
			f.OpenTime = *req.OpenTime
		}
		if req.CloseTime != nil {
			f.CloseTime = *req.CloseTime
		}
		if err := checkHours(f.OpenTime, f.CloseTime); err != nil {
			return err
		}
		if req.MaxHours != nil {
			f.MaxHours = *req.MaxHours
		}
		if req.RequiresApproval != nil {
			f.RequiresApproval = *req.RequiresApproval
		}
		if req.ClosedOnHolidays != nil {
			f.ClosedOnHolidays = *req.ClosedOnHolidays
		}
		if req.IsActive != nil {
			f.IsActive = *req.IsActive
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err, "Facility")
	}
	s.audit.record(ctx, a, models.AuditUpdate, models.TargetFacility, id, req)
	return updated, nil
}

// Delete removes the facility together with its bookings.
func (s *FacilityService) Delete(ctx context.Context, a Actor, id uuid.UUID) error {
	if _, err := s.load(ctx, a, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUpdateErr(err, "Facility")
	}
	s.audit.record(ctx, a, models.AuditDelete, models.TargetFacility, id, nil)
	return nil
}

// Availability lists the held slots of one local day. date is YYYY-MM-DD
// in the project's time zone.
func (s *FacilityService) Availability(ctx context.Context, a Actor, id uuid.UUID, date string) (*dtos.AvailabilityResponse, error) {
	f, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	loc, err := projectLocation(ctx, s.projects, f.ProjectID)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, utils.BadRequest(utils.ErrCodeValidation, "date must be YYYY-MM-DD")
	}
	opensAt, closesAt, err := openingHours(f, day)
	if err != nil {
		return nil, utils.Internal("Facility hours are invalid", err)
	}

	resp := &dtos.AvailabilityResponse{
		FacilityID: f.ID.String(),
		Date:       date,
		TimeZone:   loc.String(),
		OpensAt:    opensAt,
		ClosesAt:   closesAt,
		Busy:       []dtos.TimeSlot{},
	}
	if !f.IsActive {
		resp.Closed, resp.ClosedReason = true, "Facility is not in service"
		return resp, nil
	}
	if f.ClosedOnHolidays {
		if holiday, name := utils.IsThaiHoliday(day); holiday {
			resp.Closed, resp.ClosedReason = true, "Closed for "+name
			return resp, nil
		}
	}

	held, err := s.bookings.ListHolding(ctx, f.ID, opensAt, closesAt)
	if err != nil {
		return nil, utils.Internal("Failed to load bookings", err)
	}
	for _, b := range held {
		resp.Busy = append(resp.Busy, dtos.TimeSlot{Start: b.StartTime, End: b.EndTime, Status: b.Status})
	}
	return resp, nil
}

func projectLocation(ctx context.Context, projects repositories.ProjectRepository, id uuid.UUID) (*time.Location, error) {
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, utils.Internal("Failed to load project", err)
	}
	if p == nil {
		return nil, utils.NotFound("Project not found")
	}
	return utils.LoadLocation(p.TimeZone), nil
}
