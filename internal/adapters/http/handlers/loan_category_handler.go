package handlers

import (
	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LoanCategoryHandler handles loan product endpoints
type LoanCategoryHandler struct {
	categoryService *services.LoanCategoryService
}

// NewLoanCategoryHandler creates a new loan category handler
func NewLoanCategoryHandler(categoryService *services.LoanCategoryService) *LoanCategoryHandler {
	return &LoanCategoryHandler{categoryService: categoryService}
}

// ListEnabled lists the categories members may apply for
// @Summary List loan categories
// @Tags Loan Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loan-categories [get]
func (h *LoanCategoryHandler) ListEnabled(c *fiber.Ctx) error {
	categories, err := h.categoryService.ListEnabled(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Loan categories retrieved successfully", fiber.Map{"categories": categories})
}

// Preview computes interest, total and EMI for an amount
// @Summary Preview loan figures
// @Tags Loan Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param amount query string true "Loan amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loan-categories/{id}/preview [get]
func (h *LoanCategoryHandler) Preview(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid category ID")
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return response.BadRequest(c, "Invalid amount")
	}

	calc, err := h.categoryService.Preview(c.UserContext(), id, amount)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Loan preview calculated", calc)
}

// ListAll lists every category (Admin only)
// @Summary List all loan categories
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/loan-categories [get]
func (h *LoanCategoryHandler) ListAll(c *fiber.Ctx) error {
	categories, err := h.categoryService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Loan categories retrieved successfully", fiber.Map{"categories": categories})
}

// Create creates a category (Admin only)
// @Summary Create loan category
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLoanCategoryInput true "Category"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/loan-categories [post]
func (h *LoanCategoryHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateLoanCategoryInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	category, err := h.categoryService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Loan category created successfully", fiber.Map{"category": category})
}

// Update changes a category (Admin only)
// @Summary Update loan category
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param body body services.UpdateLoanCategoryInput true "Changes"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/loan-categories/{id} [patch]
func (h *LoanCategoryHandler) Update(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req services.UpdateLoanCategoryInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	category, err := h.categoryService.Update(c.UserContext(), actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Loan category updated successfully", fiber.Map{"category": category})
}
