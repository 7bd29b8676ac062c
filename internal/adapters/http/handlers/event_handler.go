package handlers

import (
	"strings"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles event endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ParticipantRequest names a user to add to an event
type ParticipantRequest struct {
	UserID uint `json:"userId"`
}

// List lists events visible to the caller
// @Summary List events
// @Description Admins see all events; members see events they take part in
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param status query string false "upcoming, ongoing or completed"
// @Success 200 {object} response.Response
// @Router /events [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	events, err := h.eventService.List(c.UserContext(), actor, strings.ToLower(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Events retrieved successfully", fiber.Map{"events": events})
}

// Get returns one event
// @Summary Get event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	event, err := h.eventService.Get(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Event retrieved successfully", fiber.Map{"event": event})
}

// Create creates an event (Admin only)
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateEventInput true "Event"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /events [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateEventInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	event, err := h.eventService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Event created successfully", fiber.Map{"event": event})
}

// Update changes an event (Admin only)
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body services.UpdateEventInput true "Changes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	var req services.UpdateEventInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	event, err := h.eventService.Update(c.UserContext(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Event updated successfully", fiber.Map{"event": event})
}

// Delete removes an event (Admin only)
// @Summary Delete event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	if err := h.eventService.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Event deleted successfully", nil)
}

// ListParticipants lists the participants of an event
// @Summary List participants
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /events/{id}/participants [get]
func (h *EventHandler) ListParticipants(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	participants, err := h.eventService.ListParticipants(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Participants retrieved successfully", fiber.Map{"participants": participants})
}

// AddParticipant adds a member to an event (Admin only)
// @Summary Add participant
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body ParticipantRequest true "User"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /events/{id}/participants [post]
func (h *EventHandler) AddParticipant(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	var req ParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	participant, err := h.eventService.AddParticipant(c.UserContext(), actor, id, req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Participant added successfully", fiber.Map{"participant": participant})
}

// RemoveParticipant removes a member from an event (Admin only)
// @Summary Remove participant
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id}/participants/{userId} [delete]
func (h *EventHandler) RemoveParticipant(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.eventService.RemoveParticipant(c.UserContext(), actor, id, userID); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Participant removed successfully", nil)
}

// AddMedia attaches a media link to an event (Admin only)
// @Summary Add event media
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body services.MediaInput true "Media link"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /events/{id}/media [post]
func (h *EventHandler) AddMedia(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}

	var req services.MediaInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	media, err := h.eventService.AddMedia(c.UserContext(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Media added successfully", fiber.Map{"media": media})
}

// DeleteMedia removes a media link (Admin only)
// @Summary Delete event media
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param mediaId path int true "Media ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /events/{id}/media/{mediaId} [delete]
func (h *EventHandler) DeleteMedia(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid event ID")
	}
	mediaID, ok := paramID(c, "mediaId")
	if !ok {
		return response.BadRequest(c, "Invalid media ID")
	}

	if err := h.eventService.DeleteMedia(c.UserContext(), actor, id, mediaID); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Media deleted successfully", nil)
}
