package handlers

import (
	"mime/multipart"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CardHandler handles membership card and card template endpoints
type CardHandler struct {
	cardService *services.CardService
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// GetCard returns the caller's card, issuing it on first request
// @Summary Get membership card
// @Tags Membership Card
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /membership-card [get]
func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	card, err := h.cardService.GetOrCreate(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Membership card retrieved successfully", fiber.Map{"card": card})
}

// Regenerate issues a new card number and QR code
// @Summary Regenerate membership card
// @Tags Membership Card
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /membership-card/regenerate [post]
func (h *CardHandler) Regenerate(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	card, err := h.cardService.Regenerate(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Membership card regenerated successfully", fiber.Map{"card": card})
}

// GetTemplate returns the card template image
// @Summary Get card template
// @Tags Membership Card
// @Produce json
// @Success 200 {object} response.Response
// @Router /card-template [get]
func (h *CardHandler) GetTemplate(c *fiber.Ctx) error {
	template, err := h.cardService.GetTemplate(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Card template retrieved successfully", fiber.Map{"template": template})
}

// UploadTemplate replaces the card template image (Admin only)
// @Summary Upload card template
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG or WebP, at most 2MB"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/card-template [put]
func (h *CardHandler) UploadTemplate(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided")
	}

	template, err := withUpload(fileHeader, func(file multipart.File, contentType string) (interface{}, error) {
		return h.cardService.UploadTemplate(c.UserContext(), actor, contentType, fileHeader.Size, file)
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Card template uploaded successfully", fiber.Map{"template": template})
}

// DeleteTemplate removes the card template (Admin only)
// @Summary Delete card template
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/card-template [delete]
func (h *CardHandler) DeleteTemplate(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.cardService.DeleteTemplate(c.UserContext(), actor); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Card template deleted successfully", nil)
}
