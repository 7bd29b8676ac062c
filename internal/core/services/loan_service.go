package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/metrics"
	"quest-alumni/internal/pkg/pagination"
	"quest-alumni/internal/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Audit actions written by the loan lifecycle
const (
	AuditSubmitLoan       = "SUBMIT_LOAN_APPLICATION"
	AuditLoanClaim        = "LOAN_CLAIM"
	AuditLoanReassign     = "LOAN_REASSIGN"
	AuditLoanApprove      = "LOAN_APPROVE"
	AuditLoanReject       = "LOAN_REJECT"
	AuditLoanTransfer     = "LOAN_TRANSFER_FUNDS"
	AuditLoanActivate     = "LOAN_ACTIVATE"
	AuditLoanComplete     = "LOAN_COMPLETE"
	AuditLoanMarkEMIPaid  = "LOAN_MARK_EMI_PAID"
	AuditLoanAutoComplete = "LOAN_AUTO_COMPLETE"
)

var allLoanStatuses = []domain.LoanStatus{
	domain.LoanStatusSubmitted,
	domain.LoanStatusUnderReview,
	domain.LoanStatusApproved,
	domain.LoanStatusRejected,
	domain.LoanStatusFundsTransferred,
	domain.LoanStatusActiveLoan,
	domain.LoanStatusCompleted,
}

// loanTransitions lists the statuses each action may start from
var loanTransitions = map[domain.LoanAction][]domain.LoanStatus{
	domain.LoanActionClaim:         {domain.LoanStatusSubmitted, domain.LoanStatusUnderReview},
	domain.LoanActionReassign:      allLoanStatuses,
	domain.LoanActionApprove:       {domain.LoanStatusSubmitted, domain.LoanStatusUnderReview},
	domain.LoanActionReject:        {domain.LoanStatusSubmitted, domain.LoanStatusUnderReview},
	domain.LoanActionTransferFunds: {domain.LoanStatusApproved},
	domain.LoanActionActivate:      {domain.LoanStatusFundsTransferred},
	domain.LoanActionComplete:      {domain.LoanStatusActiveLoan},
	domain.LoanActionMarkEMIPaid:   allLoanStatuses,
}

func canTransition(action domain.LoanAction, from domain.LoanStatus) bool {
	for _, s := range loanTransitions[action] {
		if s == from {
			return true
		}
	}
	return false
}

// LoanService implements the Quest Care loan lifecycle
type LoanService struct {
	db         *gorm.DB
	guarantors *GuarantorChecker
	audit      *AuditService
	now        func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB, guarantors *GuarantorChecker, audit *AuditService) *LoanService {
	return &LoanService{
		db:         db,
		guarantors: guarantors,
		audit:      audit,
		now:        time.Now,
	}
}

// SubmitLoanInput represents a loan application submission
type SubmitLoanInput struct {
	LoanCategoryID      uint            `json:"loanCategoryId" validate:"required"`
	LoanAmount          decimal.Decimal `json:"loanAmount"`
	Guarantor1ID        uint            `json:"guarantor1Id" validate:"required"`
	Guarantor2ID        uint            `json:"guarantor2Id" validate:"required"`
	Guarantor1Confirmed bool            `json:"guarantor1Confirmed"`
	Guarantor2Confirmed bool            `json:"guarantor2Confirmed"`
	Purpose             string          `json:"purpose" validate:"max=2000"`
}

// ManageLoanInput represents a management action on an application
type ManageLoanInput struct {
	ApplicationID   uint              `json:"applicationId" validate:"required"`
	Action          domain.LoanAction `json:"action" validate:"required"`
	Remarks         *string           `json:"remarks"`
	RejectionReason string            `json:"rejectionReason"`
	AssignedToID    *uint             `json:"assignedToId"`
	RepaymentID     uint              `json:"repaymentId"`
	PaidAmount      decimal.Decimal   `json:"paidAmount"`
}

// ManagerLoanFilter narrows the manager queue
type ManagerLoanFilter struct {
	Status       domain.LoanStatus
	AssignedToMe bool
	Unassigned   bool
}

// Eligibility describes whether the actor can apply for loans
type Eligibility struct {
	Eligible         bool  `json:"eligible"`
	ActiveGuarantees int64 `json:"activeGuarantees"`
}

// GuarantorOption is one selectable guarantor
type GuarantorOption struct {
	ID       uint    `json:"id"`
	FullName string  `json:"fullName"`
	AlumniID *string `json:"alumniId,omitempty"`
}

// Submit creates a new application in SUBMITTED
func (s *LoanService) Submit(ctx context.Context, actor domain.Actor, input SubmitLoanInput) (*models.LoanApplication, error) {
	app, err := s.submit(ctx, actor, input)
	metrics.LoanSubmissionsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, app.ID, false)
}

func (s *LoanService) submit(ctx context.Context, actor domain.Actor, input SubmitLoanInput) (*models.LoanApplication, error) {
	if !actor.IsLoanEligible {
		return nil, domain.ErrNotLoanEligible
	}
	if err := validator.Validate(input); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if !isWholeCents(input.LoanAmount) {
		return nil, domain.ErrLoanAmountPrecision
	}
	input.LoanAmount = input.LoanAmount.Round(2)
	if !input.LoanAmount.IsPositive() {
		return nil, domain.ErrInvalidLoanAmount
	}

	var app *models.LoanApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := repositories.NewLoanCategoryRepository(tx).GetByID(ctx, input.LoanCategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCategoryDisabled
			}
			return err
		}
		if !category.IsEnabled {
			return domain.ErrCategoryDisabled
		}
		if input.LoanAmount.GreaterThan(category.MaxLoanAmount) {
			return domain.ErrLoanAmountExceedsMax
		}

		calc, err := CalculateLoan(input.LoanAmount, category.MonthlyInterestRate, category.RepaymentDurationMonths)
		if err != nil {
			return err
		}

		if err := s.guarantors.CheckPair(ctx, tx, actor.UserID, input.Guarantor1ID, input.Guarantor2ID, category, 0); err != nil {
			return err
		}

		app = &models.LoanApplication{
			ApplicantID:         actor.UserID,
			LoanCategoryID:      category.ID,
			LoanAmount:          calc.LoanAmount,
			MonthlyInterest:     calc.MonthlyInterest,
			TotalPayable:        calc.TotalPayable,
			EMIAmount:           calc.EMIAmount,
			RepaymentMonths:     calc.RepaymentMonths,
			Guarantor1ID:        input.Guarantor1ID,
			Guarantor2ID:        input.Guarantor2ID,
			Guarantor1Confirmed: input.Guarantor1Confirmed,
			Guarantor2Confirmed: input.Guarantor2Confirmed,
			Purpose:             strings.TrimSpace(input.Purpose),
			Status:              domain.LoanStatusSubmitted,
			SubmittedAt:         s.now(),
		}
		if err := repositories.NewLoanApplicationRepository(tx).Create(ctx, app); err != nil {
			return err
		}

		return s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditSubmitLoan,
			EntityType: EntityLoanApplication,
			EntityID:   app.ID,
			NewValues:  app,
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Loan application submitted",
		zap.Uint("application_id", app.ID),
		zap.Uint("applicant_id", actor.UserID),
		zap.String("amount", app.LoanAmount.StringFixed(2)),
	)
	return app, nil
}

// Manage dispatches a management action and returns the updated application
func (s *LoanService) Manage(ctx context.Context, actor domain.Actor, input ManageLoanInput) (*models.LoanApplication, error) {
	err := s.manage(ctx, actor, input)
	metrics.LoanTransitionsTotal.WithLabelValues(string(input.Action), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, input.ApplicationID, true)
}

func (s *LoanService) manage(ctx context.Context, actor domain.Actor, input ManageLoanInput) error {
	if !actor.CanManageLoans() {
		return domain.NewForbiddenError("only loan managers and admins can manage loan applications")
	}
	if err := validator.Validate(input); err != nil {
		return domain.NewValidationError(err.Error())
	}

	id := input.ApplicationID
	switch input.Action {
	case domain.LoanActionClaim:
		return s.Claim(ctx, actor, id, input.Remarks)
	case domain.LoanActionReassign:
		return s.Reassign(ctx, actor, id, input.AssignedToID, input.Remarks)
	case domain.LoanActionApprove:
		return s.Approve(ctx, actor, id, input.Remarks)
	case domain.LoanActionReject:
		return s.Reject(ctx, actor, id, input.RejectionReason, input.Remarks)
	case domain.LoanActionTransferFunds:
		return s.TransferFunds(ctx, actor, id, input.Remarks)
	case domain.LoanActionActivate:
		return s.Activate(ctx, actor, id, input.Remarks)
	case domain.LoanActionComplete:
		return s.Complete(ctx, actor, id, input.Remarks)
	case domain.LoanActionMarkEMIPaid:
		return s.MarkEMIPaid(ctx, actor, id, input.RepaymentID, input.PaidAmount, input.Remarks)
	default:
		return domain.ErrUnknownLoanAction
	}
}

// Claim assigns an unassigned application to the acting manager. The first
// claim wins; a repeated claim by the same manager is a no-op and a claim of
// an application held by someone else is a conflict.
func (s *LoanService) Claim(ctx context.Context, actor domain.Actor, id uint, remarks *string) error {
	if !actor.CanManageLoans() {
		return domain.ErrLoanForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		apps := repositories.NewLoanApplicationRepository(tx)

		before, err := apps.GetForUpdate(ctx, id)
		if err != nil {
			return translateLoanErr(err)
		}

		now := s.now()
		claimed, err := apps.ClaimUnassigned(ctx, id, actor.UserID, now)
		if err != nil {
			return err
		}

		if !claimed {
			current, err := apps.GetForUpdate(ctx, id)
			if err != nil {
				return translateLoanErr(err)
			}
			switch {
			case current.IsAssignedTo(actor.UserID):
				return nil
			case current.AssignedToID != nil:
				return domain.ErrLoanAlreadyClaimed
			default:
				return invalidTransition(domain.LoanActionClaim, current.Status)
			}
		}

		if remarks != nil {
			if err := apps.UpdateFields(ctx, id, map[string]interface{}{"remarks": *remarks}); err != nil {
				return err
			}
		}
		return s.recordChange(ctx, tx, actor, AuditLoanClaim, before)
	})
}

// Reassign sets or clears the assigned manager. Admin only.
func (s *LoanService) Reassign(ctx context.Context, actor domain.Actor, id uint, assignedToID *uint, remarks *string) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}

	return s.withLockedApplication(ctx, actor, id, domain.LoanActionReassign, func(tx *gorm.DB, app *models.LoanApplication) error {
		fields := map[string]interface{}{
			"assigned_to_id": nil,
			"assigned_at":    nil,
		}
		if assignedToID != nil {
			assignee, err := repositories.NewUserRepository(tx).GetByID(ctx, *assignedToID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrAssigneeNotManager
				}
				return err
			}
			if assignee.Status != domain.UserStatusApproved ||
				(assignee.Role != domain.RoleLoanManager && assignee.Role != domain.RoleAdmin) {
				return domain.ErrAssigneeNotManager
			}
			fields["assigned_to_id"] = assignee.ID
			fields["assigned_at"] = s.now()
		}
		return s.applyUpdate(ctx, tx, actor, app, AuditLoanReassign, fields, remarks)
	})
}

// Approve moves a reviewed application to APPROVED after re-checking both
// guarantors against their current active guarantee counts
func (s *LoanService) Approve(ctx context.Context, actor domain.Actor, id uint, remarks *string) error {
	return s.withLockedApplication(ctx, actor, id, domain.LoanActionApprove, func(tx *gorm.DB, app *models.LoanApplication) error {
		category, err := repositories.NewLoanCategoryRepository(tx).GetByID(ctx, app.LoanCategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCategoryNotFound
			}
			return err
		}
		if err := s.guarantors.CheckPair(ctx, tx, app.ApplicantID, app.Guarantor1ID, app.Guarantor2ID, category, app.ID); err != nil {
			return err
		}

		now := s.now()
		return s.applyUpdate(ctx, tx, actor, app, AuditLoanApprove, map[string]interface{}{
			"status":         domain.LoanStatusApproved,
			"approved_by_id": actor.UserID,
			"approved_at":    now,
			"reviewed_by_id": actor.UserID,
			"reviewed_at":    now,
		}, remarks)
	})
}

// Reject moves a reviewed application to REJECTED
func (s *LoanService) Reject(ctx context.Context, actor domain.Actor, id uint, reason string, remarks *string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ErrRejectionReasonRequired
	}

	return s.withLockedApplication(ctx, actor, id, domain.LoanActionReject, func(tx *gorm.DB, app *models.LoanApplication) error {
		now := s.now()
		return s.applyUpdate(ctx, tx, actor, app, AuditLoanReject, map[string]interface{}{
			"status":           domain.LoanStatusRejected,
			"rejection_reason": reason,
			"reviewed_by_id":   actor.UserID,
			"reviewed_at":      now,
		}, remarks)
	})
}

// TransferFunds records disbursal and generates the repayment schedule in
// the same transaction
func (s *LoanService) TransferFunds(ctx context.Context, actor domain.Actor, id uint, remarks *string) error {
	return s.withLockedApplication(ctx, actor, id, domain.LoanActionTransferFunds, func(tx *gorm.DB, app *models.LoanApplication) error {
		now := s.now()
		if err := s.applyUpdate(ctx, tx, actor, app, AuditLoanTransfer, map[string]interface{}{
			"status":               domain.LoanStatusFundsTransferred,
			"funds_transferred_at": now,
		}, remarks); err != nil {
			return err
		}
		return s.ensureSchedule(ctx, tx, app, now)
	})
}

// Activate moves a disbursed loan to ACTIVE_LOAN
func (s *LoanService) Activate(ctx context.Context, actor domain.Actor, id uint, remarks *string) error {
	return s.withLockedApplication(ctx, actor, id, domain.LoanActionActivate, func(tx *gorm.DB, app *models.LoanApplication) error {
		return s.applyUpdate(ctx, tx, actor, app, AuditLoanActivate, map[string]interface{}{
			"status": domain.LoanStatusActiveLoan,
		}, remarks)
	})
}

// Complete closes an active loan
func (s *LoanService) Complete(ctx context.Context, actor domain.Actor, id uint, remarks *string) error {
	return s.withLockedApplication(ctx, actor, id, domain.LoanActionComplete, func(tx *gorm.DB, app *models.LoanApplication) error {
		return s.applyUpdate(ctx, tx, actor, app, AuditLoanComplete, map[string]interface{}{
			"status":       domain.LoanStatusCompleted,
			"completed_at": s.now(),
		}, remarks)
	})
}

// MarkEMIPaid posts a payment against one installment. When the last
// installment of an ACTIVE_LOAN becomes PAID the application completes.
// Posting to an installment that is already PAID is rejected.
func (s *LoanService) MarkEMIPaid(ctx context.Context, actor domain.Actor, id, repaymentID uint, amount decimal.Decimal, remarks *string) error {
	if repaymentID == 0 {
		return domain.ErrRepaymentIDRequired
	}
	if !amount.IsPositive() {
		return domain.ErrPaidAmountInvalid
	}
	if !isWholeCents(amount) {
		return domain.ErrPaidAmountPrecision
	}
	amount = amount.Round(2)

	return s.withLockedApplication(ctx, actor, id, domain.LoanActionMarkEMIPaid, func(tx *gorm.DB, app *models.LoanApplication) error {
		repayments := repositories.NewLoanRepaymentRepository(tx)

		row, err := repayments.GetForUpdate(ctx, app.ID, repaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRepaymentNotFound
			}
			return err
		}
		if row.PaymentStatus == domain.PaymentStatusPaid {
			return domain.ErrRepaymentAlreadyPaid
		}

		before := *row
		now := s.now()
		applyPayment(row, amount, now)
		if err := repayments.Update(ctx, row); err != nil {
			return err
		}

		if remarks != nil {
			if err := repositories.NewLoanApplicationRepository(tx).
				UpdateFields(ctx, app.ID, map[string]interface{}{"remarks": *remarks}); err != nil {
				return err
			}
		}

		if err := s.audit.Record(ctx, tx, AuditEntry{
			UserID:     actor.UserID,
			Action:     AuditLoanMarkEMIPaid,
			EntityType: EntityLoanApplication,
			EntityID:   app.ID,
			OldValues:  map[string]interface{}{"repayment": before},
			NewValues:  map[string]interface{}{"repayment": row},
		}); err != nil {
			return err
		}

		return s.completeIfFullyPaid(ctx, tx, actor, app, now)
	})
}

// applyPayment adds amount to the row and recomputes its status
func applyPayment(row *models.LoanRepayment, amount decimal.Decimal, now time.Time) {
	row.PaidAmount = row.PaidAmount.Add(amount)
	switch {
	case row.PaidAmount.GreaterThanOrEqual(row.DueAmount):
		row.PaymentStatus = domain.PaymentStatusPaid
		if row.PaidDate == nil {
			row.PaidDate = &now
		}
	case row.PaidAmount.IsPositive():
		row.PaymentStatus = domain.PaymentStatusPartial
	default:
		row.PaymentStatus = domain.PaymentStatusPending
	}
}

func (s *LoanService) completeIfFullyPaid(ctx context.Context, tx *gorm.DB, actor domain.Actor, app *models.LoanApplication, now time.Time) error {
	if app.Status != domain.LoanStatusActiveLoan {
		return nil
	}
	repayments := repositories.NewLoanRepaymentRepository(tx)
	total, err := repayments.CountByApplication(ctx, app.ID)
	if err != nil {
		return err
	}
	unpaid, err := repayments.CountUnpaid(ctx, app.ID)
	if err != nil {
		return err
	}
	if total == 0 || unpaid > 0 {
		return nil
	}

	if err := s.applyUpdate(ctx, tx, actor, app, AuditLoanAutoComplete, map[string]interface{}{
		"status":       domain.LoanStatusCompleted,
		"completed_at": now,
	}, nil); err != nil {
		return err
	}

	zap.L().Info("Loan auto-completed after final installment", zap.Uint("application_id", app.ID))
	return nil
}

// ensureSchedule creates one PENDING row per month unless a schedule exists
func (s *LoanService) ensureSchedule(ctx context.Context, tx *gorm.DB, app *models.LoanApplication, transferredAt time.Time) error {
	repayments := repositories.NewLoanRepaymentRepository(tx)
	existing, err := repayments.CountByApplication(ctx, app.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	return repayments.CreateBatch(ctx, BuildRepaymentSchedule(app.ID, app.EMIAmount, app.RepaymentMonths, transferredAt))
}

// BuildRepaymentSchedule returns the installment rows of a loan. Month n is
// due n calendar months after start, clamped to the end of shorter months.
func BuildRepaymentSchedule(appID uint, emi decimal.Decimal, months int, start time.Time) []*models.LoanRepayment {
	rows := make([]*models.LoanRepayment, 0, months)
	for month := 1; month <= months; month++ {
		rows = append(rows, &models.LoanRepayment{
			LoanApplicationID: appID,
			RepaymentMonth:    month,
			DueAmount:         emi,
			DueDate:           addMonthsClamped(start, month),
			PaidAmount:        decimal.Zero,
			PaymentStatus:     domain.PaymentStatusPending,
		})
	}
	return rows
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// withLockedApplication runs fn in a transaction holding the application
// row lock, after the authorization and transition guards pass
func (s *LoanService) withLockedApplication(ctx context.Context, actor domain.Actor, id uint, action domain.LoanAction, fn func(tx *gorm.DB, app *models.LoanApplication) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := repositories.NewLoanApplicationRepository(tx).GetForUpdate(ctx, id)
		if err != nil {
			return translateLoanErr(err)
		}
		if err := authorizeMutation(actor, app, action); err != nil {
			return err
		}
		if !canTransition(action, app.Status) {
			return invalidTransition(action, app.Status)
		}
		return fn(tx, app)
	})
}

// authorizeMutation applies the ownership rule: admins may act on anything,
// managers only on applications assigned to them, reassign is admin only
func authorizeMutation(actor domain.Actor, app *models.LoanApplication, action domain.LoanAction) error {
	if !actor.CanManageLoans() {
		return domain.ErrLoanForbidden
	}
	if actor.IsAdmin() {
		return nil
	}
	switch action {
	case domain.LoanActionReassign:
		return domain.ErrAdminOnly
	case domain.LoanActionClaim:
		return nil
	}
	if !app.IsAssignedTo(actor.UserID) {
		return domain.ErrLoanForbidden
	}
	return nil
}

// applyUpdate writes fields, refreshes app in place and records the change
func (s *LoanService) applyUpdate(ctx context.Context, tx *gorm.DB, actor domain.Actor, app *models.LoanApplication, action string, fields map[string]interface{}, remarks *string) error {
	if remarks != nil {
		fields["remarks"] = *remarks
	}
	before := *app
	apps := repositories.NewLoanApplicationRepository(tx)
	if err := apps.UpdateFields(ctx, app.ID, fields); err != nil {
		return err
	}
	after, err := apps.GetForUpdate(ctx, app.ID)
	if err != nil {
		return err
	}
	*app = *after

	return s.audit.Record(ctx, tx, AuditEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: EntityLoanApplication,
		EntityID:   app.ID,
		OldValues:  &before,
		NewValues:  after,
	})
}

// recordChange audits the difference between before and the stored row
func (s *LoanService) recordChange(ctx context.Context, tx *gorm.DB, actor domain.Actor, action string, before *models.LoanApplication) error {
	after, err := repositories.NewLoanApplicationRepository(tx).GetForUpdate(ctx, before.ID)
	if err != nil {
		return err
	}
	return s.audit.Record(ctx, tx, AuditEntry{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: EntityLoanApplication,
		EntityID:   before.ID,
		OldValues:  before,
		NewValues:  after,
	})
}

func invalidTransition(action domain.LoanAction, from domain.LoanStatus) error {
	return fmt.Errorf("%w: cannot %s an application in %s", domain.ErrInvalidLoanTransition, action, from)
}

func translateLoanErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrLoanNotFound
	}
	return err
}

// ============================================================
// Reads
// ============================================================

func (s *LoanService) load(ctx context.Context, id uint, withRepayments bool) (*models.LoanApplication, error) {
	app, err := repositories.NewLoanApplicationRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, translateLoanErr(err)
	}
	if withRepayments {
		rows, err := repositories.NewLoanRepaymentRepository(s.db).ListByApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		app.Repayments = derefRepayments(rows)
	}
	return app, nil
}

func derefRepayments(rows []*models.LoanRepayment) []models.LoanRepayment {
	out := make([]models.LoanRepayment, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}

// ListMine lists the actor's own applications
func (s *LoanService) ListMine(ctx context.Context, actor domain.Actor) ([]*models.LoanApplication, error) {
	return repositories.NewLoanApplicationRepository(s.db).ListByApplicant(ctx, actor.UserID)
}

// ListForManagers lists the application queue for loan managers and admins
func (s *LoanService) ListForManagers(ctx context.Context, actor domain.Actor, filter ManagerLoanFilter, params *pagination.Params) ([]*models.LoanApplication, int64, error) {
	if !actor.CanManageLoans() {
		return nil, 0, domain.NewForbiddenError("only loan managers and admins can view the loan queue")
	}
	repoFilter := repositories.LoanApplicationFilter{
		Status:     filter.Status,
		Unassigned: filter.Unassigned,
	}
	if filter.AssignedToMe {
		repoFilter.AssignedToID = actor.UserID
	}
	return repositories.NewLoanApplicationRepository(s.db).List(ctx, repoFilter, params.Offset, params.Limit)
}

// canViewApplication: applicant, guarantors, admin, the assigned manager,
// or any manager while unassigned
func canViewApplication(actor domain.Actor, app *models.LoanApplication) bool {
	if actor.IsAdmin() || app.ApplicantID == actor.UserID || app.IsGuarantor(actor.UserID) {
		return true
	}
	return actor.IsLoanManager() && (app.AssignedToID == nil || app.IsAssignedTo(actor.UserID))
}

// canViewRepayments: applicant, admin, the assigned manager, or any manager while unassigned
func canViewRepayments(actor domain.Actor, app *models.LoanApplication) bool {
	if actor.IsAdmin() || app.ApplicantID == actor.UserID {
		return true
	}
	return actor.IsLoanManager() && (app.AssignedToID == nil || app.IsAssignedTo(actor.UserID))
}

// GetByID returns one application the actor may see. Repayments are
// attached only for viewers allowed to see them.
func (s *LoanService) GetByID(ctx context.Context, actor domain.Actor, id uint) (*models.LoanApplication, error) {
	app, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !canViewApplication(actor, app) {
		return nil, domain.NewForbiddenError("you are not allowed to view this application")
	}
	if canViewRepayments(actor, app) {
		rows, err := repositories.NewLoanRepaymentRepository(s.db).ListByApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		app.Repayments = derefRepayments(rows)
	}
	return app, nil
}

// Repayments returns the schedule of an application
func (s *LoanService) Repayments(ctx context.Context, actor domain.Actor, id uint) ([]*models.LoanRepayment, error) {
	app, err := repositories.NewLoanApplicationRepository(s.db).GetForUpdate(ctx, id)
	if err != nil {
		return nil, translateLoanErr(err)
	}
	if !canViewRepayments(actor, app) {
		return nil, domain.NewForbiddenError("you are not allowed to view these repayments")
	}
	return repositories.NewLoanRepaymentRepository(s.db).ListByApplication(ctx, id)
}

// History returns the audit trail of an application
func (s *LoanService) History(ctx context.Context, actor domain.Actor, id uint) ([]*models.AuditLog, error) {
	if !actor.CanManageLoans() {
		return nil, domain.NewForbiddenError("only loan managers and admins can view application history")
	}
	if _, err := repositories.NewLoanApplicationRepository(s.db).GetForUpdate(ctx, id); err != nil {
		return nil, translateLoanErr(err)
	}
	return s.audit.History(ctx, EntityLoanApplication, id)
}

// Eligibility reports the actor's live loan eligibility
func (s *LoanService) Eligibility(ctx context.Context, actor domain.Actor) (*Eligibility, error) {
	count, err := s.guarantors.ActiveCount(ctx, s.db, actor.UserID, 0)
	if err != nil {
		return nil, err
	}
	return &Eligibility{
		Eligible:         actor.IsLoanEligible,
		ActiveGuarantees: count,
	}, nil
}

// EligibleGuarantors lists approved, loan-eligible members other than the actor
func (s *LoanService) EligibleGuarantors(ctx context.Context, actor domain.Actor) ([]GuarantorOption, error) {
	users, err := repositories.NewUserRepository(s.db).ListEligibleGuarantors(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	options := make([]GuarantorOption, 0, len(users))
	for _, u := range users {
		opt := GuarantorOption{ID: u.ID, FullName: u.Email}
		if u.Profile != nil {
			opt.FullName = u.Profile.FullName
			opt.AlumniID = u.Profile.AlumniID
		}
		options = append(options, opt)
	}
	return options, nil
}
