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

// HealthUnitsHandler exposes the clinic endpoints.
type HealthUnitsHandler struct {
	units *service.HealthUnitService
}

// NewHealthUnitsHandler constructs handler.
func NewHealthUnitsHandler(units *service.HealthUnitService) *HealthUnitsHandler {
	return &HealthUnitsHandler{units: units}
}

// Create handles POST /api/health-units/add.
func (h *HealthUnitsHandler) Create(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.HealthUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	unit, err := h.units.Create(c.UserContext(), p, service.HealthUnitInput{
		AdminID: req.AdminID,
		Name:    req.Name,
		CNPJ:    req.CNPJ,
		Status:  domain.UnitStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(detail("Health unit created successfully", http.StatusCreated, fiber.Map{
		"health_unit": dto.FromHealthUnit(unit),
	}))
}

// List handles GET /api/health-units.
func (h *HealthUnitsHandler) List(c *fiber.Ctx) error {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	units, err := h.units.List(c.UserContext(), scope, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(detail("Health units retrieved successfully", http.StatusOK, fiber.Map{
		"health_units": dto.FromHealthUnits(units),
	}))
}

// Get handles GET /api/health-units/:id.
func (h *HealthUnitsHandler) Get(c *fiber.Ctx) error {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	unit, err := h.units.Get(c.UserContext(), scope, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(detail("Health unit retrieved successfully", http.StatusOK, fiber.Map{
		"health_unit": dto.FromHealthUnit(unit),
	}))
}

// Update handles PUT /api/health-units/:id.
func (h *HealthUnitsHandler) Update(c *fiber.Ctx) error {
	scope, ok := auth.ScopeFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.HealthUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	unit, err := h.units.Update(c.UserContext(), scope, c.Params("id"), service.HealthUnitInput{
		Name:   req.Name,
		CNPJ:   req.CNPJ,
		Status: domain.UnitStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(detail("Health unit updated successfully", http.StatusOK, fiber.Map{
		"health_unit": dto.FromHealthUnit(unit),
	}))
}

// Delete handles DELETE /api/health-units/:id.
func (h *HealthUnitsHandler) Delete(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}
	scope, _ := auth.ScopeFromContext(c)

	if err := h.units.Delete(c.UserContext(), p, scope, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(detail("Health unit deleted successfully", http.StatusOK, nil))
}
