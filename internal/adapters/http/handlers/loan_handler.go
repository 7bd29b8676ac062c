package handlers

import (
	"strings"

	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/pagination"
	"quest-alumni/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles Quest Care loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// Eligibility reports whether the caller may apply
// @Summary Loan eligibility
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/eligibility [get]
func (h *LoanHandler) Eligibility(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.loanService.Eligibility(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Eligibility retrieved successfully", result)
}

// Guarantors lists members the caller may name as guarantors
// @Summary Eligible guarantors
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/guarantors [get]
func (h *LoanHandler) Guarantors(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	options, err := h.loanService.EligibleGuarantors(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Guarantors retrieved successfully", fiber.Map{"guarantors": options})
}

// Submit creates a loan application
// @Summary Submit loan application
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitLoanInput true "Application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Submit(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.SubmitLoanInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.Submit(c.UserContext(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Created(c, "Loan application submitted successfully", fiber.Map{"application": app})
}

// ListMine lists the caller's applications
// @Summary My loan applications
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/mine [get]
func (h *LoanHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	apps, err := h.loanService.ListMine(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Applications retrieved successfully", fiber.Map{"applications": apps})
}

// Get returns one application the caller may see
// @Summary Get loan application
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.loanService.GetByID(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Application retrieved successfully", fiber.Map{"application": app})
}

// Repayments returns the EMI schedule of an application
// @Summary Repayment schedule
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/{id}/repayments [get]
func (h *LoanHandler) Repayments(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	rows, err := h.loanService.Repayments(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Repayments retrieved successfully", fiber.Map{"repayments": rows})
}

// History returns the audit trail of an application
// @Summary Application history
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/{id}/history [get]
func (h *LoanHandler) History(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	entries, err := h.loanService.History(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "History retrieved successfully", fiber.Map{"history": entries})
}

// Queue lists applications for loan managers (Loan manager or Admin)
// @Summary Manager queue
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Loan status"
// @Param assigned query string false "me or none"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/manage [get]
func (h *LoanHandler) Queue(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := services.ManagerLoanFilter{
		Status:       domain.LoanStatus(strings.ToUpper(c.Query("status"))),
		AssignedToMe: c.Query("assigned") == "me",
		Unassigned:   c.Query("assigned") == "none",
	}

	apps, total, err := h.loanService.ListForManagers(c.UserContext(), actor, filter, params)
	if err != nil {
		return respondError(c, err)
	}
	return response.Paginated(c, "Applications retrieved successfully", apps, params, total)
}

// Manage applies a management action (Loan manager or Admin)
// @Summary Manage loan application
// @Description claim, reassign, approve, reject, transfer_funds, activate, complete or mark_emi_paid
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ManageLoanInput true "Action"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/manage [patch]
// @Router /loans/manage [post]
func (h *LoanHandler) Manage(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ManageLoanInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Action = domain.LoanAction(strings.ToLower(strings.TrimSpace(string(req.Action))))

	app, err := h.loanService.Manage(c.UserContext(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Application updated successfully", fiber.Map{"application": app})
}
