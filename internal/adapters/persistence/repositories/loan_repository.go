package repositories

import (
	"context"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ============================================================
// Loan categories
// ============================================================

// LoanCategoryRepository handles loan category data access
type LoanCategoryRepository struct {
	db *gorm.DB
}

// NewLoanCategoryRepository creates a new loan category repository
func NewLoanCategoryRepository(db *gorm.DB) *LoanCategoryRepository {
	return &LoanCategoryRepository{db: db}
}

// Create creates a new loan category
func (r *LoanCategoryRepository) Create(ctx context.Context, category *models.LoanCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID gets a loan category by ID
func (r *LoanCategoryRepository) GetByID(ctx context.Context, id uint) (*models.LoanCategory, error) {
	var category models.LoanCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List lists loan categories, optionally only the enabled ones
func (r *LoanCategoryRepository) List(ctx context.Context, enabledOnly bool) ([]*models.LoanCategory, error) {
	var categories []*models.LoanCategory
	query := r.db.WithContext(ctx)
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

// Update updates a loan category
func (r *LoanCategoryRepository) Update(ctx context.Context, category *models.LoanCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// ============================================================
// Loan applications
// ============================================================

// LoanApplicationFilter narrows manager listings
type LoanApplicationFilter struct {
	Status       domain.LoanStatus
	AssignedToID uint
	Unassigned   bool
	ApplicantID  uint
}

// LoanApplicationRepository handles loan application data access
type LoanApplicationRepository struct {
	db *gorm.DB
}

// NewLoanApplicationRepository creates a new loan application repository
func NewLoanApplicationRepository(db *gorm.DB) *LoanApplicationRepository {
	return &LoanApplicationRepository{db: db}
}

func withApplicationRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Applicant.Profile").
		Preload("LoanCategory").
		Preload("Guarantor1.Profile").
		Preload("Guarantor2.Profile").
		Preload("AssignedTo.Profile")
}

// Create creates a new loan application
func (r *LoanApplicationRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

// GetByID gets a loan application by ID with relations
func (r *LoanApplicationRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := withApplicationRelations(r.db.WithContext(ctx)).First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetForUpdate reads a loan application and locks the row until the transaction ends
func (r *LoanApplicationRepository) GetForUpdate(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateFields writes the given columns of one application
func (r *LoanApplicationRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ClaimUnassigned assigns an application to managerID only if it is still
// unassigned and claimable. A SUBMITTED application moves to UNDER_REVIEW in
// the same statement. Returns false when no row matched.
func (r *LoanApplicationRepository) ClaimUnassigned(ctx context.Context, id, managerID uint, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ? AND assigned_to_id IS NULL AND status IN ?", id,
			[]string{string(domain.LoanStatusSubmitted), string(domain.LoanStatusUnderReview)}).
		Updates(map[string]interface{}{
			"assigned_to_id": managerID,
			"assigned_at":    now,
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				string(domain.LoanStatusSubmitted), string(domain.LoanStatusUnderReview)),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountActiveGuarantees counts applications other than excludeAppID in which
// userID is a guarantor and the status is an active loan status
func (r *LoanApplicationRepository) CountActiveGuarantees(ctx context.Context, userID, excludeAppID uint) (int64, error) {
	statuses := make([]string, 0, len(domain.ActiveLoanStatuses))
	for _, s := range domain.ActiveLoanStatuses {
		statuses = append(statuses, string(s))
	}

	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("(guarantor1_id = ? OR guarantor2_id = ?)", userID, userID).
		Where("status IN ?", statuses)
	if excludeAppID != 0 {
		query = query.Where("id <> ?", excludeAppID)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListByApplicant lists the applications of one applicant, newest first
func (r *LoanApplicationRepository) ListByApplicant(ctx context.Context, applicantID uint) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := withApplicationRelations(r.db.WithContext(ctx)).
		Where("applicant_id = ?", applicantID).
		Order("submitted_at DESC").
		Find(&apps).Error
	return apps, err
}

// List lists applications with pagination
func (r *LoanApplicationRepository) List(ctx context.Context, filter LoanApplicationFilter, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.LoanApplication{})
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.AssignedToID != 0 {
			query = query.Where("assigned_to_id = ?", filter.AssignedToID)
		}
		if filter.Unassigned {
			query = query.Where("assigned_to_id IS NULL")
		}
		if filter.ApplicantID != 0 {
			query = query.Where("applicant_id = ?", filter.ApplicantID)
		}
		return query
	}

	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withApplicationRelations(scoped()).
		Order("submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

// ============================================================
// Loan repayments
// ============================================================

// LoanRepaymentRepository handles repayment schedule data access
type LoanRepaymentRepository struct {
	db *gorm.DB
}

// NewLoanRepaymentRepository creates a new loan repayment repository
func NewLoanRepaymentRepository(db *gorm.DB) *LoanRepaymentRepository {
	return &LoanRepaymentRepository{db: db}
}

// CountByApplication counts schedule rows of an application
func (r *LoanRepaymentRepository) CountByApplication(ctx context.Context, appID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanRepayment{}).
		Where("loan_application_id = ?", appID).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts a full schedule
func (r *LoanRepaymentRepository) CreateBatch(ctx context.Context, rows []*models.LoanRepayment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByApplication lists the schedule of an application by month
func (r *LoanRepaymentRepository) ListByApplication(ctx context.Context, appID uint) ([]*models.LoanRepayment, error) {
	var rows []*models.LoanRepayment
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", appID).
		Order("repayment_month ASC").
		Find(&rows).Error
	return rows, err
}

// GetForUpdate reads a repayment row of appID and locks it
func (r *LoanRepaymentRepository) GetForUpdate(ctx context.Context, appID, id uint) (*models.LoanRepayment, error) {
	var row models.LoanRepayment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND loan_application_id = ?", id, appID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update saves a repayment row
func (r *LoanRepaymentRepository) Update(ctx context.Context, row *models.LoanRepayment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// CountUnpaid counts schedule rows of an application not yet PAID
func (r *LoanRepaymentRepository) CountUnpaid(ctx context.Context, appID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanRepayment{}).
		Where("loan_application_id = ? AND payment_status <> ?", appID, string(domain.PaymentStatusPaid)).
		Count(&count).Error
	return count, err
}

// ListOverdue lists unpaid rows whose due date has passed
func (r *LoanRepaymentRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.LoanRepayment, error) {
	var rows []*models.LoanRepayment
	err := r.db.WithContext(ctx).
		Where("payment_status <> ? AND due_date < ?", string(domain.PaymentStatusPaid), now).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}
