package handlers

import (
	"strings"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/pagination"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing users (Admin only)
// @Summary List users
// @Description Paginated user list filtered by status, role, type or search text
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "PENDING, APPROVED, REJECTED or DISABLED"
// @Param role query string false "Role"
// @Param userType query string false "ALUMNI, STAFF or NON_ALUMNI"
// @Param search query string false "Name or email"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.UserFilter{
		Status:   domain.UserStatus(strings.ToUpper(c.Query("status"))),
		Role:     domain.Role(strings.ToUpper(c.Query("role"))),
		UserType: domain.UserType(strings.ToUpper(c.Query("userType"))),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	users, total, err := h.userService.ListUsers(c.UserContext(), filter, params)
	if err != nil {
		return respondError(c, err)
	}

	return response.Paginated(c, "Users retrieved successfully", users, params, total)
}

// GetUser handles getting a user by ID (Admin only)
// @Summary Get user by ID
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

// CreateUser handles admin account creation (Admin only)
// @Summary Create user
// @Description Create an APPROVED account, for example another admin or a loan manager
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.CreateUser(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"user": user,
	})
}

// UpdateUser handles status, role and loan eligibility changes (Admin only)
// @Summary Update user
// @Description Approve, reject or disable an account, change its role or loan eligibility
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Changes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "User updated successfully", fiber.Map{
		"user": user,
	})
}
