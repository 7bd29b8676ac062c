package models

import (
	"time"

	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ============================================================
// Quest Care: loan products, applications, repayments
// ============================================================

// LoanCategory is an admin-defined loan product
type LoanCategory struct {
	ID                       uint            `gorm:"primaryKey" json:"id"`
	Name                     string          `gorm:"size:100;not null" json:"name"`
	Description              string          `gorm:"type:text" json:"description"`
	MaxLoanAmount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"maxLoanAmount"`
	MonthlyInterestRate      decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"monthlyInterestRate"`
	RepaymentDurationMonths  int             `gorm:"not null" json:"repaymentDurationMonths"`
	GuarantorActiveLoanLimit int             `gorm:"not null;default:3" json:"guarantorActiveLoanLimit"`
	IsEnabled                bool            `gorm:"not null" json:"isEnabled"`
	CreatedByID              *uint           `json:"createdById"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (LoanCategory) TableName() string {
	return "loan_categories"
}

// LoanApplication is the central entity of the loan lifecycle
type LoanApplication struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	ApplicantID         uint              `gorm:"not null;index" json:"applicantId"`
	LoanCategoryID      uint              `gorm:"not null;index" json:"loanCategoryId"`
	LoanAmount          decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"loanAmount"`
	MonthlyInterest     decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"monthlyInterest"`
	TotalPayable        decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"totalPayable"`
	EMIAmount           decimal.Decimal   `gorm:"column:emi_amount;type:decimal(15,2);not null" json:"emiAmount"`
	RepaymentMonths     int               `gorm:"not null" json:"repaymentMonths"`
	Guarantor1ID        uint              `gorm:"not null;index" json:"guarantor1Id"`
	Guarantor2ID        uint              `gorm:"not null;index" json:"guarantor2Id"`
	Guarantor1Confirmed bool              `json:"guarantor1Confirmed"`
	Guarantor2Confirmed bool              `json:"guarantor2Confirmed"`
	Purpose             string            `gorm:"type:text" json:"purpose"`
	Status              domain.LoanStatus `gorm:"size:30;not null;index" json:"status"`
	AssignedToID        *uint             `gorm:"index" json:"assignedToId"`
	AssignedAt          *time.Time        `json:"assignedAt"`
	ReviewedByID        *uint             `json:"reviewedById"`
	ReviewedAt          *time.Time        `json:"reviewedAt"`
	ApprovedByID        *uint             `json:"approvedById"`
	ApprovedAt          *time.Time        `json:"approvedAt"`
	RejectionReason     *string           `gorm:"type:text" json:"rejectionReason"`
	FundsTransferredAt  *time.Time        `json:"fundsTransferredAt"`
	CompletedAt         *time.Time        `json:"completedAt"`
	Remarks             *string           `gorm:"type:text" json:"remarks"`
	SubmittedAt         time.Time         `gorm:"not null" json:"submittedAt"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Applicant    *User           `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	LoanCategory *LoanCategory   `gorm:"foreignKey:LoanCategoryID" json:"loanCategory,omitempty"`
	Guarantor1   *User           `gorm:"foreignKey:Guarantor1ID" json:"guarantor1,omitempty"`
	Guarantor2   *User           `gorm:"foreignKey:Guarantor2ID" json:"guarantor2,omitempty"`
	AssignedTo   *User           `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	Repayments   []LoanRepayment `gorm:"foreignKey:LoanApplicationID" json:"repayments,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

// IsGuarantor reports whether userID guarantees this application
func (a *LoanApplication) IsGuarantor(userID uint) bool {
	return a.Guarantor1ID == userID || a.Guarantor2ID == userID
}

// IsAssignedTo reports whether the application is assigned to userID
func (a *LoanApplication) IsAssignedTo(userID uint) bool {
	return a.AssignedToID != nil && *a.AssignedToID == userID
}

// LoanApplicationResponse DTO
type LoanApplicationResponse struct {
	ID                  uint              `json:"id"`
	ApplicantID         uint              `json:"applicantId"`
	ApplicantName       string            `json:"applicantName,omitempty"`
	LoanCategoryID      uint              `json:"loanCategoryId"`
	LoanCategoryName    string            `json:"loanCategoryName,omitempty"`
	LoanAmount          decimal.Decimal   `json:"loanAmount"`
	MonthlyInterest     decimal.Decimal   `json:"monthlyInterest"`
	TotalPayable        decimal.Decimal   `json:"totalPayable"`
	EMIAmount           decimal.Decimal   `json:"emiAmount"`
	RepaymentMonths     int               `json:"repaymentMonths"`
	Guarantor1ID        uint              `json:"guarantor1Id"`
	Guarantor1Name      string            `json:"guarantor1Name,omitempty"`
	Guarantor2ID        uint              `json:"guarantor2Id"`
	Guarantor2Name      string            `json:"guarantor2Name,omitempty"`
	Guarantor1Confirmed bool              `json:"guarantor1Confirmed"`
	Guarantor2Confirmed bool              `json:"guarantor2Confirmed"`
	Purpose             string            `json:"purpose"`
	Status              domain.LoanStatus `json:"status"`
	AssignedToID        *uint             `json:"assignedToId"`
	AssignedToName      string            `json:"assignedToName,omitempty"`
	AssignedAt          *time.Time        `json:"assignedAt"`
	ReviewedByID        *uint             `json:"reviewedById"`
	ReviewedAt          *time.Time        `json:"reviewedAt"`
	ApprovedByID        *uint             `json:"approvedById"`
	ApprovedAt          *time.Time        `json:"approvedAt"`
	RejectionReason     *string           `json:"rejectionReason"`
	FundsTransferredAt  *time.Time        `json:"fundsTransferredAt"`
	CompletedAt         *time.Time        `json:"completedAt"`
	Remarks             *string           `json:"remarks"`
	SubmittedAt         time.Time         `json:"submittedAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	Repayments          []LoanRepayment   `json:"repayments,omitempty"`
}

func displayName(u *User) string {
	if u == nil {
		return ""
	}
	if u.Profile != nil && u.Profile.FullName != "" {
		return u.Profile.FullName
	}
	return u.Email
}

func (a *LoanApplication) ToResponse() *LoanApplicationResponse {
	resp := &LoanApplicationResponse{
		ID:                  a.ID,
		ApplicantID:         a.ApplicantID,
		ApplicantName:       displayName(a.Applicant),
		LoanCategoryID:      a.LoanCategoryID,
		LoanAmount:          a.LoanAmount,
		MonthlyInterest:     a.MonthlyInterest,
		TotalPayable:        a.TotalPayable,
		EMIAmount:           a.EMIAmount,
		RepaymentMonths:     a.RepaymentMonths,
		Guarantor1ID:        a.Guarantor1ID,
		Guarantor1Name:      displayName(a.Guarantor1),
		Guarantor2ID:        a.Guarantor2ID,
		Guarantor2Name:      displayName(a.Guarantor2),
		Guarantor1Confirmed: a.Guarantor1Confirmed,
		Guarantor2Confirmed: a.Guarantor2Confirmed,
		Purpose:             a.Purpose,
		Status:              a.Status,
		AssignedToID:        a.AssignedToID,
		AssignedToName:      displayName(a.AssignedTo),
		AssignedAt:          a.AssignedAt,
		ReviewedByID:        a.ReviewedByID,
		ReviewedAt:          a.ReviewedAt,
		ApprovedByID:        a.ApprovedByID,
		ApprovedAt:          a.ApprovedAt,
		RejectionReason:     a.RejectionReason,
		FundsTransferredAt:  a.FundsTransferredAt,
		CompletedAt:         a.CompletedAt,
		Remarks:             a.Remarks,
		SubmittedAt:         a.SubmittedAt,
		UpdatedAt:           a.UpdatedAt,
		Repayments:          a.Repayments,
	}
	if a.LoanCategory != nil {
		resp.LoanCategoryName = a.LoanCategory.Name
	}
	return resp
}

// LoanRepayment is one installment row of a repayment schedule.
// (loan_application_id, repayment_month) is unique so a schedule can never be duplicated.
type LoanRepayment struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint                 `gorm:"not null;uniqueIndex:idx_repayment_month" json:"loanApplicationId"`
	RepaymentMonth    int                  `gorm:"not null;uniqueIndex:idx_repayment_month" json:"repaymentMonth"`
	DueAmount         decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"dueAmount"`
	DueDate           time.Time            `gorm:"not null;index" json:"dueDate"`
	PaidAmount        decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"paidAmount"`
	PaidDate          *time.Time           `json:"paidDate"`
	PaymentStatus     domain.PaymentStatus `gorm:"size:20;not null;default:'PENDING';index" json:"paymentStatus"`
	CreatedAt         time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (LoanRepayment) TableName() string {
	return "loan_repayments"
}
