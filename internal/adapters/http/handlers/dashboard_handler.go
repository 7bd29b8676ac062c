package handlers

import (
	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Membership, loan fund and event overview (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// GetManagerDashboard returns the caller's review overview
// @Summary Manager Dashboard
// @Description Assigned applications and the unassigned queue (Loan manager or Admin)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/manager [get]
func (h *DashboardHandler) GetManagerDashboard(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetManagerDashboard(c.UserContext(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Manager dashboard retrieved successfully", data)
}

// GetMyDashboard returns the dashboard for the caller's role
// @Summary My Dashboard
// @Description Admin, manager or member overview depending on role
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetMyDashboard(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
