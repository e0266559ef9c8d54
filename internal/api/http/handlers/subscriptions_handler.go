package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/DiogoBrazil/medimage-api/internal/api/dto"
	"github.com/DiogoBrazil/medimage-api/internal/service"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// SubscriptionsHandler exposes the general-administrator-only plan endpoints.
// The route classification already restricts access; these handlers only
// translate payloads.
type SubscriptionsHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subscriptions *service.SubscriptionService) *SubscriptionsHandler {
	return &SubscriptionsHandler{subscriptions: subscriptions}
}

// Create handles POST /api/users/subscriptions.
func (h *SubscriptionsHandler) Create(c *fiber.Ctx) error {
	var req dto.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}
	if req.AdminID == "" {
		return util.NewValidationError("admin_id is required")
	}

	sub, err := h.subscriptions.Create(c.UserContext(), service.SubscriptionInput{
		AdminID:   req.AdminID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(detail("Subscription created successfully", http.StatusCreated, fiber.Map{
		"subscription": dto.FromSubscription(sub),
	}))
}

// List handles GET /api/users/subscriptions.
func (h *SubscriptionsHandler) List(c *fiber.Ctx) error {
	subs, err := h.subscriptions.List(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(detail("Subscriptions retrieved successfully", http.StatusOK, fiber.Map{
		"subscriptions": dto.FromSubscriptions(subs),
	}))
}

// Get handles GET /api/users/subscriptions/:id.
func (h *SubscriptionsHandler) Get(c *fiber.Ctx) error {
	sub, err := h.subscriptions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(detail("Subscription retrieved successfully", http.StatusOK, fiber.Map{
		"subscription": dto.FromSubscription(sub),
	}))
}

// Update handles PUT /api/users/subscriptions/:id.
func (h *SubscriptionsHandler) Update(c *fiber.Ctx) error {
	var req dto.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	sub, err := h.subscriptions.Update(c.UserContext(), c.Params("id"), service.SubscriptionInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(detail("Subscription updated successfully", http.StatusOK, fiber.Map{
		"subscription": dto.FromSubscription(sub),
	}))
}

// Delete handles DELETE /api/users/subscriptions/:id.
func (h *SubscriptionsHandler) Delete(c *fiber.Ctx) error {
	if err := h.subscriptions.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(detail("Subscription deleted successfully", http.StatusOK, nil))
}
