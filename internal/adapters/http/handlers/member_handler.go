package handlers

import (
	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/pagination"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler serves the member directory and profile pages
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Directory lists members projected for the caller
// @Summary Member directory
// @Description Approved members with per-field privacy applied, plus filter facets
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param search query string false "Full name contains (case-insensitive)"
// @Param batchYear query string false "Batch year"
// @Param department query string false "Department"
// @Param company query string false "Current company"
// @Param country query string false "Country"
// @Param state query string false "State"
// @Param city query string false "City"
// @Param userType query string false "ALUMNI, STAFF or NON_ALUMNI"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) Directory(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var q services.DirectoryQuery
	if err := c.QueryParser(&q); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	dir, err := h.memberService.Directory(c.UserContext(), actor, q, pagination.GetParams(c))
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Members retrieved successfully", dir)
}

// GetMember returns one member projected for the caller
// @Summary Get member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.GetMember(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Member retrieved successfully", fiber.Map{"member": member})
}

// PublicProfile resolves a membership card QR token without authentication
// @Summary Public member page
// @Description Profile behind a membership card QR code; only the member's own privacy settings apply
// @Tags Public
// @Produce json
// @Param token path string true "Card public token"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /public/members/{token} [get]
func (h *MemberHandler) PublicProfile(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return response.NotFound(c, "membership card not found")
	}

	member, err := h.memberService.PublicProfile(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Member retrieved successfully", fiber.Map{"member": member})
}
