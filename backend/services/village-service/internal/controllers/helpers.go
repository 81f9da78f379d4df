package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/dtos"
	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/services"
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-middleware"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// projectQueryParam lets the super admin act inside a project.
const projectQueryParam = "project_id"

var validate = utils.NewValidator()

// formatValidationErrors converts validator errors into a user-friendly format.
func formatValidationErrors(errs validator.ValidationErrors) []shared_dtos.ValidationErrorDetail {
	details := make([]shared_dtos.ValidationErrorDetail, 0, len(errs))
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required", "required_without":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		case "thai_id":
			message = fmt.Sprintf("Field '%s' must be a valid Thai national ID", err.Field())
		case "thai_phone":
			message = fmt.Sprintf("Field '%s' must be a valid Thai phone number", err.Field())
		case "no_xss":
			message = fmt.Sprintf("Field '%s' contains disallowed markup", err.Field())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, shared_dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// decodeAndValidate reads the JSON body into dst and validates it. On
// failure the error response is already written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptional is decodeAndValidate for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !(optional && errors.Is(err, io.EOF)) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed",
				formatValidationErrors(validationErrs))
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}

// actorFrom builds the service actor from the token. The super admin has
// no project in the token and may pass ?project_id= instead.
func actorFrom(r *http.Request) (services.Actor, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return services.Actor{}, &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Authentication required"}
	}
	a := services.Actor{UserID: p.UserID, Role: p.Role}
	if p.ProjectID != nil {
		a.ProjectID = *p.ProjectID
		return a, nil
	}
	if p.Role == models.RoleSuperAdmin {
		if raw := r.URL.Query().Get(projectQueryParam); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return services.Actor{}, utils.BadRequest(utils.ErrCodeInvalidPayload, "Invalid project_id")
			}
			a.ProjectID = id
		}
	}
	return a, nil
}

// projectActor is actorFrom for endpoints that only make sense inside a project.
func projectActor(r *http.Request) (services.Actor, error) {
	a, err := actorFrom(r)
	if err != nil {
		return a, err
	}
	if a.ProjectID == uuid.Nil {
		return a, utils.BadRequest(utils.ErrCodeValidation, "project_id is required")
	}
	return a, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid " + name, Err: err}
	}
	return id, nil
}

// queryReader parses list filters, keeping the first error.
type queryReader struct {
	values url.Values
	err    error
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{values: r.URL.Query()}
}

func (q *queryReader) fail(name string, err error) {
	if q.err == nil {
		q.err = &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid query parameter '" + name + "'", Err: err}
	}
}

func (q *queryReader) str(name string) string {
	return q.values.Get(name)
}

func (q *queryReader) integer(name string) int {
	raw := q.values.Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, err)
	}
	return n
}

func (q *queryReader) boolean(name string) bool {
	raw := q.values.Get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, err)
	}
	return b
}

func (q *queryReader) id(name string) *uuid.UUID {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		q.fail(name, err)
		return nil
	}
	return &id
}

func (q *queryReader) page() dtos.PageQuery {
	return dtos.PageQuery{Page: q.integer("page"), PageSize: q.integer("page_size")}
}

// dateRange reads ?from=&to=. A date-only "to" includes that whole day.
func (q *queryReader) dateRange() dtos.DateRange {
	var dr dtos.DateRange
	dr.From = q.date("from", false)
	dr.To = q.date("to", true)
	return dr
}

func (q *queryReader) date(name string, endOfDay bool) *time.Time {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.ParseInLocation("2006-01-02", raw, utils.LoadLocation(utils.DefaultTimeZone))
	if err != nil {
		q.fail(name, err)
		return nil
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t
}
