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

// UsersHandler exposes login, bootstrap, and account CRUD endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return util.NewValidationError("Email and password are required")
	}

	result, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(detail("Login successful", http.StatusOK, fiber.Map{
		"token":     result.Token,
		"user_id":   result.User.ID,
		"user_name": result.User.FullName,
		"profile":   string(result.User.Profile),
	}))
}

// EnsureRoot handles POST /api/ensure-root.
func (h *UsersHandler) EnsureRoot(c *fiber.Ctx) error {
	result, created, err := h.users.EnsureRoot(c.UserContext())
	if err != nil {
		return err
	}

	status := http.StatusOK
	message := "Root user already exists"
	if created {
		status = http.StatusCreated
		message = "Root user created"
	}
	return c.Status(status).JSON(detail(message, status, fiber.Map{
		"token":   result.Token,
		"user_id": result.User.ID,
	}))
}

// Create handles POST /api/users/add.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}
	if authzErr := auth.RequireAdministrative(p, "Unauthorized. This request can only be made by administrators."); authzErr != nil {
		return authzErr
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	user, err := h.users.Create(c.UserContext(), p, service.CreateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Profile:  domain.Role(req.Profile),
		AdminID:  req.AdminID,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(detail("User created successfully", http.StatusCreated, fiber.Map{
		"user": dto.FromUser(user),
	}))
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}
	scope, _ := auth.ScopeFromContext(c)

	user, err := h.users.Get(c.UserContext(), p, scope, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(detail("User retrieved successfully", http.StatusOK, fiber.Map{
		"user": dto.FromUser(user),
	}))
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Invalid payload")
	}

	user, err := h.users.Update(c.UserContext(), p, c.Params("id"), service.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Status:   domain.UserStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(detail("User updated successfully", http.StatusOK, fiber.Map{
		"user": dto.FromUser(user),
	}))
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}

	if err := h.users.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(detail("User deleted successfully", http.StatusOK, nil))
}

// ListAdministrators handles GET /api/users/administrators.
func (h *UsersHandler) ListAdministrators(c *fiber.Ctx) error {
	users, err := h.users.ListAdministrators(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(detail("Administrators retrieved successfully", http.StatusOK, fiber.Map{
		"users": dto.FromUsers(users),
	}))
}

// ListProfessionals handles GET /api/users/professionals.
func (h *UsersHandler) ListProfessionals(c *fiber.Ctx) error {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("Authorization token is required")
	}
	if authzErr := auth.RequireAdministrative(p, "Unauthorized. This request can only be made by administrators."); authzErr != nil {
		return authzErr
	}
	scope, _ := auth.ScopeFromContext(c)

	users, err := h.users.ListProfessionals(c.UserContext(), scope, c.Query("admin_id"),
		c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(detail("Professionals retrieved successfully", http.StatusOK, fiber.Map{
		"users": dto.FromUsers(users),
	}))
}
