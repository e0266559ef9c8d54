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

// PredictionsHandler exposes the model inference endpoints for professionals.
type PredictionsHandler struct {
	predictions *service.PredictionService
}

// NewPredictionsHandler constructs handler.
func NewPredictionsHandler(predictions *service.PredictionService) *PredictionsHandler {
	return &PredictionsHandler{predictions: predictions}
}

// Classes handles GET /api/predictions/classes.
func (h *PredictionsHandler) Classes(c *fiber.Ctx) error {
	classes := fiber.Map{}
	for _, model := range domain.ModelKinds {
		classes[string(model)] = service.ModelClasses(model)
	}
	return c.JSON(detail("Classes retrieved successfully", http.StatusOK, fiber.Map{
		"classes": classes,
	}))
}

// Respiratory handles POST /api/predictions/respiratory.
func (h *PredictionsHandler) Respiratory(c *fiber.Ctx) error {
	return h.predict(c, domain.ModelRespiratory)
}

// Tuberculosis handles POST /api/predictions/tuberculosis.
func (h *PredictionsHandler) Tuberculosis(c *fiber.Ctx) error {
	return h.predict(c, domain.ModelTuberculosis)
}

// Osteoporosis handles POST /api/predictions/osteoporosis.
func (h *PredictionsHandler) Osteoporosis(c *fiber.Ctx) error {
	return h.predict(c, domain.ModelOsteoporosis)
}

// Breast handles POST /api/predictions/breast.
func (h *PredictionsHandler) Breast(c *fiber.Ctx) error {
	return h.predict(c, domain.ModelBreast)
}

func (h *PredictionsHandler) predict(c *fiber.Ctx, model domain.ModelKind) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	result, err := h.predictions.Predict(c.UserContext(), p, model, req.Image)
	if err != nil {
		return err
	}
	return c.JSON(detail("Prediction completed successfully", http.StatusOK, fiber.Map{
		"prediction": result,
	}))
}
