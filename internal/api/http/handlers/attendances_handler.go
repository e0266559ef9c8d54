package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/DiogoBrazil/medimage-api/internal/api/dto"
	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/service"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// AttendancesHandler exposes the visit-record endpoints.
type AttendancesHandler struct {
	attendances *service.AttendanceService
}

// NewAttendancesHandler constructs handler.
func NewAttendancesHandler(attendances *service.AttendanceService) *AttendancesHandler {
	return &AttendancesHandler{attendances: attendances}
}

// Create handles POST /api/attendances/add.
func (h *AttendancesHandler) Create(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.CreateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	boxes, err := toBoundingBoxes(req.BoundingBoxes)
	if err != nil {
		return err
	}

	attendance, err := h.attendances.Create(c.UserContext(), p, service.CreateAttendanceInput{
		HealthUnitID:     req.HealthUnitID,
		ModelUsed:        domain.ModelKind(req.ModelUsed),
		ModelResult:      req.ModelResult,
		ExpectedResult:   req.ExpectedResult,
		CorrectDiagnosis: req.CorrectDiagnosis,
		ImageBase64:      req.ImageBase64,
		Observation:      req.Observation,
		BoundingBoxes:    boxes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(detail("Attendance created successfully", http.StatusCreated, fiber.Map{
		"attendance": dto.FromAttendance(attendance),
	}))
}

// List handles GET /api/attendances.
func (h *AttendancesHandler) List(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}
	if authzErr := auth.RequireAdministrative(p, "Unauthorized. This request can only be made by administrators."); authzErr != nil {
		return authzErr
	}
	scope, _ := auth.ScopeFromContext(c)

	page, err := h.attendances.List(c.UserContext(), scope, service.ListAttendancesInput{
		HealthUnitID:   c.Query("health_unit_id"),
		ProfessionalID: c.Query("professional_id"),
		ModelUsed:      c.Query("model_used"),
		Page:           c.QueryInt("page", 1),
		PerPage:        c.QueryInt("per_page", 10),
	})
	if err != nil {
		return err
	}
	return c.JSON(detail("Attendances retrieved successfully", http.StatusOK, fiber.Map{
		"attendances": dto.FromAttendances(page.Items),
		"total":       page.Total,
		"page":        page.Page,
		"per_page":    page.PerPage,
	}))
}

// Get handles GET /api/attendances/:id.
func (h *AttendancesHandler) Get(c *fiber.Ctx) error {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	includeImage := c.QueryBool("include_image", false)
	attendance, err := h.attendances.Get(c.UserContext(), scope, c.Params("id"), includeImage)
	if err != nil {
		return err
	}
	return c.JSON(detail("Attendance retrieved successfully", http.StatusOK, fiber.Map{
		"attendance": dto.FromAttendance(attendance),
	}))
}

// Update handles PUT /api/attendances/:id.
func (h *AttendancesHandler) Update(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.UpdateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	input := service.UpdateAttendanceInput{
		HealthUnitID:     req.HealthUnitID,
		ModelResult:      req.ModelResult,
		ExpectedResult:   req.ExpectedResult,
		CorrectDiagnosis: req.CorrectDiagnosis,
		Observation:      req.Observation,
	}
	if req.BoundingBoxes != nil {
		boxes, err := toBoundingBoxes(req.BoundingBoxes)
		if err != nil {
			return err
		}
		input.BoundingBoxes = boxes
	}

	attendance, err := h.attendances.Update(c.UserContext(), p, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(detail("Attendance updated successfully", http.StatusOK, fiber.Map{
		"attendance": dto.FromAttendance(attendance),
	}))
}

// Delete handles DELETE /api/attendances/:id.
func (h *AttendancesHandler) Delete(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	if err := h.attendances.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(detail("Attendance deleted successfully", http.StatusOK, nil))
}

// Statistics handles GET /api/attendances/statistics.
func (h *AttendancesHandler) Statistics(c *fiber.Ctx) error {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	summary, err := h.attendances.Statistics(c.UserContext(), scope, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(detail("Statistics retrieved successfully", http.StatusOK, fiber.Map{
		"statistics": summary,
	}))
}

func toBoundingBoxes(payloads []dto.BoundingBoxPayload) ([]domain.BoundingBox, error) {
	boxes := make([]domain.BoundingBox, 0, len(payloads))
	for _, payload := range payloads {
		if !payload.Complete() {
			return nil, util.NewValidationError("Bounding boxes require x, y, width and height")
		}
		boxes = append(boxes, payload.ToDomain())
	}
	return boxes, nil
}
