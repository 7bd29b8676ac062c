package handlers

import (
	"mime/multipart"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles the authenticated member's own profile
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile returns the caller's full profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.profileService.GetProfile(c.UserContext(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Profile retrieved successfully", fiber.Map{"profile": profile})
}

// UpdateProfile updates the caller's profile fields
// @Summary Update my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.profileService.UpdateProfile(c.UserContext(), actor.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Profile updated successfully", fiber.Map{"profile": profile})
}

// UpdatePrivacy updates the caller's privacy settings
// @Summary Update privacy settings
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PrivacyInput true "Visibility flags"
// @Success 200 {object} response.Response
// @Router /profile/privacy [put]
func (h *ProfileHandler) UpdatePrivacy(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.PrivacyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	settings, err := h.profileService.UpdatePrivacy(c.UserContext(), actor.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Privacy settings updated successfully", fiber.Map{"privacySettings": settings})
}

// UpdateContact replaces the caller's contact details
// @Summary Update contact details
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ContactInput true "Contact details"
// @Success 200 {object} response.Response
// @Router /profile/contact [put]
func (h *ProfileHandler) UpdateContact(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ContactInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contact, err := h.profileService.UpdateContact(c.UserContext(), actor.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Contact details updated successfully", fiber.Map{"contactDetails": contact})
}

// AddEducation adds an education record
// @Summary Add education
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EducationInput true "Education record"
// @Success 201 {object} response.Response
// @Router /profile/education [post]
func (h *ProfileHandler) AddEducation(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.EducationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.profileService.AddEducation(c.UserContext(), actor.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Education added successfully", fiber.Map{"education": record})
}

// DeleteEducation removes an education record
// @Summary Delete education
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Education ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/education/{id} [delete]
func (h *ProfileHandler) DeleteEducation(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid education ID")
	}

	if err := h.profileService.DeleteEducation(c.UserContext(), actor.UserID, id); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Education deleted successfully", nil)
}

// AddJob adds a job experience
// @Summary Add job
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.JobInput true "Job experience"
// @Success 201 {object} response.Response
// @Router /profile/jobs [post]
func (h *ProfileHandler) AddJob(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.JobInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	job, err := h.profileService.AddJob(c.UserContext(), actor.UserID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Job added successfully", fiber.Map{"job": job})
}

// DeleteJob removes a job experience
// @Summary Delete job
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/jobs/{id} [delete]
func (h *ProfileHandler) DeleteJob(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid job ID")
	}

	if err := h.profileService.DeleteJob(c.UserContext(), actor.UserID, id); err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Job deleted successfully", nil)
}

// UploadPhoto stores a profile photo. Admins may pass userId to upload for
// another member.
// @Summary Upload profile photo
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG or WebP, at most 2MB"
// @Param userId formData int false "Target user (admin only)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /profile/photo [post]
func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided")
	}

	var target uint
	if raw := c.FormValue("userId"); raw != "" {
		id, err := parseUint(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid user ID")
		}
		target = id
	}

	profile, err := withUpload(fileHeader, func(file multipart.File, contentType string) (interface{}, error) {
		return h.profileService.UploadPhoto(c.UserContext(), actor, target, contentType, fileHeader.Size, file)
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Photo uploaded successfully", fiber.Map{"profile": profile})
}
