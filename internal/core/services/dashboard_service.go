package services

import (
	"context"
	"time"

	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates per-role overview data
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData is the system overview shown to admins
type AdminDashboardData struct {
	// Membership
	TotalUsers       int64                       `json:"totalUsers"`
	PendingApprovals int64                       `json:"pendingApprovals"`
	UsersByType      map[domain.UserType]int64   `json:"usersByType"`
	UsersByStatus    map[domain.UserStatus]int64 `json:"usersByStatus"`

	// Quest Care
	LoansByStatus      map[domain.LoanStatus]int64 `json:"loansByStatus"`
	UnassignedLoans    int64                       `json:"unassignedLoans"`
	TotalDisbursed     decimal.Decimal             `json:"totalDisbursed"`
	OutstandingBalance decimal.Decimal             `json:"outstandingBalance"`
	OverdueRepayments  int64                       `json:"overdueRepayments"`
	SubmittedThisMonth int64                       `json:"submittedThisMonth"`

	// Community
	UpcomingEvents int64 `json:"upcomingEvents"`

	RecentApplications []LoanSummary  `json:"recentApplications"`
	ManagerWorkload    []ManagerStats `json:"managerWorkload"`
}

// LoanSummary is a one-line view of an application
type LoanSummary struct {
	ID            uint              `json:"id"`
	ApplicantName string            `json:"applicantName"`
	CategoryName  string            `json:"categoryName"`
	LoanAmount    decimal.Decimal   `json:"loanAmount"`
	Status        domain.LoanStatus `json:"status"`
	SubmittedAt   time.Time         `json:"submittedAt"`
}

// ManagerStats counts the applications assigned to one manager
type ManagerStats struct {
	ManagerID   uint   `json:"managerId"`
	ManagerName string `json:"managerName"`
	InReview    int64  `json:"inReview"`
	Approved    int64  `json:"approved"`
	Rejected    int64  `json:"rejected"`
	Total       int64  `json:"total"`
}

// disbursedStatuses are the statuses in which money has left the fund
var disbursedStatuses = []string{
	string(domain.LoanStatusFundsTransferred),
	string(domain.LoanStatusActiveLoan),
	string(domain.LoanStatusCompleted),
}

// GetAdminDashboard returns the admin overview
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	data := &AdminDashboardData{
		UsersByType:   map[domain.UserType]int64{},
		UsersByStatus: map[domain.UserStatus]int64{},
		LoansByStatus: map[domain.LoanStatus]int64{},
	}

	var byType []struct {
		UserType domain.UserType
		Count    int64
	}
	if err := db.Table("users").
		Select("user_type, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("user_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, row := range byType {
		data.UsersByType[row.UserType] = row.Count
		data.TotalUsers += row.Count
	}

	var byStatus []struct {
		Status domain.UserStatus
		Count  int64
	}
	if err := db.Table("users").
		Select("status, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		data.UsersByStatus[row.Status] = row.Count
	}
	data.PendingApprovals = data.UsersByStatus[domain.UserStatusPending]

	loans, err := s.loansByStatus(db, "")
	if err != nil {
		return nil, err
	}
	data.LoansByStatus = loans

	if err := db.Table("loan_applications").
		Where("assigned_to_id IS NULL AND status IN ?", []string{
			string(domain.LoanStatusSubmitted), string(domain.LoanStatusUnderReview),
		}).
		Count(&data.UnassignedLoans).Error; err != nil {
		return nil, err
	}

	data.TotalDisbursed, err = sumDecimal(db.Table("loan_applications").
		Where("status IN ?", disbursedStatuses).
		Select("COALESCE(SUM(loan_amount), 0)"))
	if err != nil {
		return nil, err
	}

	data.OutstandingBalance, err = sumDecimal(db.Table("loan_repayments").
		Where("payment_status <> ?", string(domain.PaymentStatusPaid)).
		Select("COALESCE(SUM(due_amount - paid_amount), 0)"))
	if err != nil {
		return nil, err
	}

	if err := db.Table("loan_repayments").
		Where("payment_status <> ? AND due_date < ?", string(domain.PaymentStatusPaid), now).
		Count(&data.OverdueRepayments).Error; err != nil {
		return nil, err
	}

	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Table("loan_applications").
		Where("submitted_at >= ?", startOfMonth).
		Count(&data.SubmittedThisMonth).Error; err != nil {
		return nil, err
	}

	if err := db.Table("events").
		Where("start_date > ?", now).
		Count(&data.UpcomingEvents).Error; err != nil {
		return nil, err
	}

	recent, err := s.recentApplications(db.Where("1 = 1"), 10)
	if err != nil {
		return nil, err
	}
	data.RecentApplications = recent

	var workload []ManagerStats
	if err := db.Table("loan_applications").
		Select(`loan_applications.assigned_to_id AS manager_id,
			COALESCE(profiles.full_name, users.email) AS manager_name,
			SUM(CASE WHEN loan_applications.status = ? THEN 1 ELSE 0 END) AS in_review,
			SUM(CASE WHEN loan_applications.status IN ? THEN 1 ELSE 0 END) AS approved,
			SUM(CASE WHEN loan_applications.status = ? THEN 1 ELSE 0 END) AS rejected,
			COUNT(*) AS total`,
			string(domain.LoanStatusUnderReview),
			append([]string{string(domain.LoanStatusApproved)}, disbursedStatuses...),
			string(domain.LoanStatusRejected)).
		Joins("JOIN users ON users.id = loan_applications.assigned_to_id").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("loan_applications.assigned_to_id IS NOT NULL").
		Group("loan_applications.assigned_to_id, profiles.full_name, users.email").
		Order("total DESC").
		Limit(5).
		Scan(&workload).Error; err != nil {
		return nil, err
	}
	data.ManagerWorkload = workload

	return data, nil
}

// ============================================================
// Manager Dashboard
// ============================================================

// ManagerDashboardData is the review overview of a loan manager
type ManagerDashboardData struct {
	AssignedByStatus  map[domain.LoanStatus]int64 `json:"assignedByStatus"`
	UnassignedQueue   int64                       `json:"unassignedQueue"`
	OverdueRepayments int64                       `json:"overdueRepayments"`
	RecentAssigned    []LoanSummary               `json:"recentAssigned"`
}

// GetManagerDashboard returns the overview for managerID
func (s *DashboardService) GetManagerDashboard(ctx context.Context, managerID uint) (*ManagerDashboardData, error) {
	db := s.db.WithContext(ctx)

	assigned, err := s.loansByStatus(db, "assigned_to_id = ?", managerID)
	if err != nil {
		return nil, err
	}
	data := &ManagerDashboardData{AssignedByStatus: assigned}

	if err := db.Table("loan_applications").
		Where("assigned_to_id IS NULL AND status IN ?", []string{
			string(domain.LoanStatusSubmitted), string(domain.LoanStatusUnderReview),
		}).
		Count(&data.UnassignedQueue).Error; err != nil {
		return nil, err
	}

	if err := db.Table("loan_repayments").
		Joins("JOIN loan_applications ON loan_applications.id = loan_repayments.loan_application_id").
		Where("loan_applications.assigned_to_id = ?", managerID).
		Where("loan_repayments.payment_status <> ? AND loan_repayments.due_date < ?", string(domain.PaymentStatusPaid), s.now()).
		Count(&data.OverdueRepayments).Error; err != nil {
		return nil, err
	}

	recent, err := s.recentApplications(db.Where("loan_applications.assigned_to_id = ?", managerID), 10)
	if err != nil {
		return nil, err
	}
	data.RecentAssigned = recent

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// NextInstallment is the earliest unpaid installment of a member
type NextInstallment struct {
	LoanApplicationID uint            `json:"loanApplicationId"`
	RepaymentMonth    int             `json:"repaymentMonth"`
	DueDate           time.Time       `json:"dueDate"`
	AmountDue         decimal.Decimal `json:"amountDue"`
}

// MemberDashboardData is the personal overview of a member
type MemberDashboardData struct {
	Applications     map[domain.LoanStatus]int64 `json:"applications"`
	ActiveGuarantees int64                       `json:"activeGuarantees"`
	NextInstallment  *NextInstallment            `json:"nextInstallment"`
	UpcomingEvents   int64                       `json:"upcomingEvents"`
}

// GetMemberDashboard returns the overview for userID
func (s *DashboardService) GetMemberDashboard(ctx context.Context, userID uint) (*MemberDashboardData, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	applications, err := s.loansByStatus(db, "applicant_id = ?", userID)
	if err != nil {
		return nil, err
	}
	data := &MemberDashboardData{Applications: applications}

	active := make([]string, 0, len(domain.ActiveLoanStatuses))
	for _, st := range domain.ActiveLoanStatuses {
		active = append(active, string(st))
	}
	if err := db.Table("loan_applications").
		Where("(guarantor1_id = ? OR guarantor2_id = ?) AND status IN ?", userID, userID, active).
		Count(&data.ActiveGuarantees).Error; err != nil {
		return nil, err
	}

	var next []NextInstallment
	if err := db.Table("loan_repayments").
		Select("loan_repayments.loan_application_id, loan_repayments.repayment_month, loan_repayments.due_date, loan_repayments.due_amount - loan_repayments.paid_amount AS amount_due").
		Joins("JOIN loan_applications ON loan_applications.id = loan_repayments.loan_application_id").
		Where("loan_applications.applicant_id = ? AND loan_repayments.payment_status <> ?", userID, string(domain.PaymentStatusPaid)).
		Order("loan_repayments.due_date ASC").
		Limit(1).
		Scan(&next).Error; err != nil {
		return nil, err
	}
	if len(next) > 0 {
		data.NextInstallment = &next[0]
	}

	if err := db.Table("events").
		Joins("JOIN event_participants ON event_participants.event_id = events.id").
		Where("event_participants.user_id = ? AND events.start_date > ?", userID, now).
		Count(&data.UpcomingEvents).Error; err != nil {
		return nil, err
	}

	return data, nil
}

// GetMyDashboard picks the dashboard matching the actor's role
func (s *DashboardService) GetMyDashboard(ctx context.Context, actor domain.Actor) (interface{}, error) {
	switch {
	case actor.IsAdmin():
		return s.GetAdminDashboard(ctx)
	case actor.IsLoanManager():
		return s.GetManagerDashboard(ctx, actor.UserID)
	default:
		return s.GetMemberDashboard(ctx, actor.UserID)
	}
}

func (s *DashboardService) loansByStatus(db *gorm.DB, where string, args ...interface{}) (map[domain.LoanStatus]int64, error) {
	query := db.Table("loan_applications").Select("status, COUNT(*) AS count")
	if where != "" {
		query = query.Where(where, args...)
	}

	var rows []struct {
		Status domain.LoanStatus
		Count  int64
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[domain.LoanStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (s *DashboardService) recentApplications(scope *gorm.DB, limit int) ([]LoanSummary, error) {
	var rows []LoanSummary
	err := scope.Table("loan_applications").
		Select(`loan_applications.id, COALESCE(profiles.full_name, '') AS applicant_name,
			COALESCE(loan_categories.name, '') AS category_name, loan_applications.loan_amount,
			loan_applications.status, loan_applications.submitted_at`).
		Joins("LEFT JOIN profiles ON profiles.user_id = loan_applications.applicant_id").
		Joins("LEFT JOIN loan_categories ON loan_categories.id = loan_applications.loan_category_id").
		Order("loan_applications.submitted_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// sumDecimal scans a single aggregate as text and parses it
func sumDecimal(query *gorm.DB) (decimal.Decimal, error) {
	var raw string
	if err := query.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
