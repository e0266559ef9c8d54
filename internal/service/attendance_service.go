package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/events"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// imagePreviewLength caps base64 image payloads in list responses.
const imagePreviewLength = 100

// statisticsDateLayout is the YYYY-MM-DD format accepted by the statistics
// endpoint.
const statisticsDateLayout = "2006-01-02"

// CreateAttendanceInput collects the fields for a new visit record.
type CreateAttendanceInput struct {
	HealthUnitID     string
	ModelUsed        domain.ModelKind
	ModelResult      string
	ExpectedResult   string
	CorrectDiagnosis bool
	ImageBase64      string
	Observation      string
	BoundingBoxes    []domain.BoundingBox
}

// UpdateAttendanceInput collects the mutable visit fields. Nil pointers leave
// the current value untouched.
type UpdateAttendanceInput struct {
	HealthUnitID     *string
	ModelResult      *string
	ExpectedResult   *string
	CorrectDiagnosis *bool
	Observation      *string
	BoundingBoxes    []domain.BoundingBox
}

// ListAttendancesInput carries listing parameters from the handler.
type ListAttendancesInput struct {
	HealthUnitID   string
	ProfessionalID string
	ModelUsed      string
	Page           int
	PerPage        int
}

// AttendancePage is one page of truncated attendance records.
type AttendancePage struct {
	Items   []domain.Attendance
	Total   int
	Page    int
	PerPage int
}

// ModelUsage aggregates per-model statistics for administrators.
type ModelUsage struct {
	Model           domain.ModelKind `json:"model"`
	Total           int              `json:"total"`
	Correct         int              `json:"correct"`
	AccuracyPercent float64          `json:"accuracy_percent"`
}

// StatisticsSummary is the payload of the statistics endpoint.
type StatisticsSummary struct {
	Total  int          `json:"total"`
	Models []ModelUsage `json:"models"`
}

// AttendanceService manages visit records under the tenant scope and the
// attendance mutation rules.
type AttendanceService struct {
	attendances repository.AttendanceRepository
	units       repository.HealthUnitRepository
	dispatcher  events.Dispatcher
}

// NewAttendanceService builds the service.
func NewAttendanceService(
	attendances repository.AttendanceRepository,
	units repository.HealthUnitRepository,
	dispatcher events.Dispatcher,
) *AttendanceService {
	return &AttendanceService{attendances: attendances, units: units, dispatcher: dispatcher}
}

// Create records a visit for the acting professional. The target health unit
// must belong to the professional's administrator.
func (s *AttendanceService) Create(ctx context.Context, p auth.Principal, input CreateAttendanceInput) (*domain.Attendance, error) {
	if !input.ModelUsed.Valid() {
		return nil, util.NewValidationError("Invalid model_used")
	}
	if input.ModelResult == "" {
		return nil, util.NewValidationError("model_result is required")
	}
	if input.ImageBase64 == "" {
		return nil, util.NewValidationError("Image is required")
	}
	if len(input.BoundingBoxes) > 0 && input.ModelUsed != domain.ModelBreast {
		return nil, util.NewValidationError("Bounding boxes are only supported by the breast model")
	}

	unit, err := s.units.GetByID(ctx, input.HealthUnitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Health unit not found")
		}
		return nil, err
	}
	if unit.AdminID != p.TenantAdminID {
		return nil, util.NewForbidden("Health unit belongs to a different administrator")
	}

	attendance := &domain.Attendance{
		ProfessionalID:   p.ID,
		HealthUnitID:     unit.ID,
		AdminID:          unit.AdminID,
		ModelUsed:        input.ModelUsed,
		ModelResult:      input.ModelResult,
		ExpectedResult:   input.ExpectedResult,
		CorrectDiagnosis: input.CorrectDiagnosis,
		ImageBase64:      input.ImageBase64,
		Observation:      input.Observation,
		BoundingBoxes:    input.BoundingBoxes,
	}
	if err := s.attendances.Create(ctx, attendance); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAttendanceCreated, attendance.ID, actorForPrincipal(p), events.AttendancePayload{
		ModelUsed:      attendance.ModelUsed,
		HealthUnitID:   attendance.HealthUnitID,
		ProfessionalID: attendance.ProfessionalID,
	})
	return attendance, nil
}

// Get fetches one record visible in the caller's scope. When includeImage is
// false the image payload is truncated for the response.
func (s *AttendanceService) Get(ctx context.Context, scope auth.TenantScope, id string, includeImage bool) (*domain.Attendance, error) {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Attendance not found")
		}
		return nil, err
	}
	if !scope.Allows(attendance.AdminID) {
		return nil, util.NewForbidden("You do not have permission to view this attendance")
	}
	if scope.Kind == auth.ScopeAdminProfessional && attendance.ProfessionalID != scope.ProfessionalID {
		return nil, util.NewForbidden("You do not have permission to view this attendance")
	}
	if !includeImage {
		attendance.ImageBase64 = truncateImage(attendance.ImageBase64)
	}
	return attendance, nil
}

// List returns a page of records in the caller's scope with truncated images.
func (s *AttendanceService) List(ctx context.Context, scope auth.TenantScope, input ListAttendancesInput) (*AttendancePage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	filter := repository.AttendanceFilter{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if adminID := scope.AdminFilter(); adminID != "" {
		filter.AdminID = &adminID
	}
	if scope.Kind == auth.ScopeAdminProfessional {
		professionalID := scope.ProfessionalID
		filter.ProfessionalID = &professionalID
	}
	if input.HealthUnitID != "" {
		filter.HealthUnitID = &input.HealthUnitID
	}
	if input.ProfessionalID != "" {
		filter.ProfessionalID = &input.ProfessionalID
	}
	if input.ModelUsed != "" {
		model := domain.ModelKind(input.ModelUsed)
		if !model.Valid() {
			return nil, util.NewValidationError("Invalid model_used")
		}
		filter.ModelUsed = &model
	}

	total, err := s.attendances.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.attendances.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ImageBase64 = truncateImage(items[i].ImageBase64)
	}

	return &AttendancePage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Update applies the attendance mutation rule, then persists the changes.
func (s *AttendanceService) Update(ctx context.Context, p auth.Principal, id string, input UpdateAttendanceInput) (*domain.Attendance, error) {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Attendance not found")
		}
		return nil, err
	}
	if authzErr := auth.VerifyAttendanceMutation(p, attendance, auth.OpUpdate); authzErr != nil {
		return nil, authzErr
	}

	if input.HealthUnitID != nil {
		unit, unitErr := s.units.GetByID(ctx, *input.HealthUnitID)
		if unitErr != nil {
			if errors.Is(unitErr, pgx.ErrNoRows) {
				return nil, util.NewNotFound("Health unit not found")
			}
			return nil, unitErr
		}
		if unit.AdminID != attendance.AdminID {
			return nil, util.NewForbidden("Health unit belongs to a different administrator")
		}
		attendance.HealthUnitID = unit.ID
	}
	if input.ModelResult != nil {
		attendance.ModelResult = *input.ModelResult
	}
	if input.ExpectedResult != nil {
		attendance.ExpectedResult = *input.ExpectedResult
	}
	if input.CorrectDiagnosis != nil {
		attendance.CorrectDiagnosis = *input.CorrectDiagnosis
	}
	if input.Observation != nil {
		attendance.Observation = *input.Observation
	}
	if input.BoundingBoxes != nil {
		if attendance.ModelUsed != domain.ModelBreast {
			return nil, util.NewValidationError("Bounding boxes are only supported by the breast model")
		}
		attendance.BoundingBoxes = input.BoundingBoxes
	}

	if err := s.attendances.Update(ctx, attendance); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventAttendanceUpdated, attendance.ID, actorForPrincipal(p), events.AttendancePayload{
		ModelUsed:      attendance.ModelUsed,
		HealthUnitID:   attendance.HealthUnitID,
		ProfessionalID: attendance.ProfessionalID,
	})
	return attendance, nil
}

// Delete removes a record after the attendance mutation rule passes.
func (s *AttendanceService) Delete(ctx context.Context, p auth.Principal, id string) error {
	attendance, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("Attendance not found")
		}
		return err
	}
	if authzErr := auth.VerifyAttendanceMutation(p, attendance, auth.OpDelete); authzErr != nil {
		return authzErr
	}
	if err := s.attendances.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventAttendanceDeleted, id, actorForPrincipal(p), events.AttendancePayload{
		ModelUsed:      attendance.ModelUsed,
		HealthUnitID:   attendance.HealthUnitID,
		ProfessionalID: attendance.ProfessionalID,
	})
	return nil
}

// Statistics aggregates model usage and accuracy for the caller's scope,
// optionally bounded by YYYY-MM-DD dates.
func (s *AttendanceService) Statistics(ctx context.Context, scope auth.TenantScope, fromStr, toStr string) (*StatisticsSummary, error) {
	filter := repository.AttendanceFilter{}
	if adminID := scope.AdminFilter(); adminID != "" {
		filter.AdminID = &adminID
	}
	if fromStr != "" {
		from, err := time.Parse(statisticsDateLayout, fromStr)
		if err != nil {
			return nil, util.NewValidationError("Invalid start_date. Use YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if toStr != "" {
		to, err := time.Parse(statisticsDateLayout, toStr)
		if err != nil {
			return nil, util.NewValidationError("Invalid end_date. Use YYYY-MM-DD")
		}
		// inclusive upper bound
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}

	rows, err := s.attendances.AccuracyByModel(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &StatisticsSummary{Models: make([]ModelUsage, 0, len(rows))}
	for _, row := range rows {
		usage := ModelUsage{Model: row.Model, Total: row.Total, Correct: row.Correct}
		if row.Total > 0 {
			usage.AccuracyPercent = float64(row.Correct) / float64(row.Total) * 100
		}
		summary.Total += row.Total
		summary.Models = append(summary.Models, usage)
	}
	return summary, nil
}

func (s *AttendanceService) publish(ctx context.Context, eventType events.EventType, subjectID string, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func truncateImage(image string) string {
	if len(image) <= imagePreviewLength {
		return image
	}
	return image[:imagePreviewLength] + "..."
}
