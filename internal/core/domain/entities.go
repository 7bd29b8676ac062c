package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleLoanManager     Role = "LOAN_MANAGER"
	RoleAlumniMember    Role = "ALUMNI_MEMBER"
	RoleQuestStaff      Role = "QUEST_STAFF"
	RoleNonAlumniMember Role = "NON_ALUMNI_MEMBER"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLoanManager, RoleAlumniMember, RoleQuestStaff, RoleNonAlumniMember:
		return true
	}
	return false
}

// UserType is the membership category chosen at registration
type UserType string

const (
	UserTypeAlumni    UserType = "ALUMNI"
	UserTypeStaff     UserType = "STAFF"
	UserTypeNonAlumni UserType = "NON_ALUMNI"
)

// IsValid reports whether t is a known user type
func (t UserType) IsValid() bool {
	return t == UserTypeAlumni || t == UserTypeStaff || t == UserTypeNonAlumni
}

// DefaultRole maps a registration user type to its member role
func (t UserType) DefaultRole() Role {
	switch t {
	case UserTypeAlumni:
		return RoleAlumniMember
	case UserTypeStaff:
		return RoleQuestStaff
	default:
		return RoleNonAlumniMember
	}
}

// UserStatus is the account approval state
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
	UserStatusDisabled UserStatus = "DISABLED"
)

// IsValid reports whether s is a known user status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected, UserStatusDisabled:
		return true
	}
	return false
}

// LoanStatus is the lifecycle state of a loan application
type LoanStatus string

const (
	LoanStatusSubmitted        LoanStatus = "SUBMITTED"
	LoanStatusUnderReview      LoanStatus = "UNDER_REVIEW"
	LoanStatusApproved         LoanStatus = "APPROVED"
	LoanStatusRejected         LoanStatus = "REJECTED"
	LoanStatusFundsTransferred LoanStatus = "FUNDS_TRANSFERRED"
	LoanStatusActiveLoan       LoanStatus = "ACTIVE_LOAN"
	LoanStatusCompleted        LoanStatus = "COMPLETED"
)

// ActiveLoanStatuses are the statuses counted against guarantor limits
var ActiveLoanStatuses = []LoanStatus{
	LoanStatusApproved,
	LoanStatusFundsTransferred,
	LoanStatusActiveLoan,
}

// LoanAction is a management action on a loan application
type LoanAction string

const (
	LoanActionClaim         LoanAction = "claim"
	LoanActionReassign      LoanAction = "reassign"
	LoanActionApprove       LoanAction = "approve"
	LoanActionReject        LoanAction = "reject"
	LoanActionTransferFunds LoanAction = "transfer_funds"
	LoanActionActivate      LoanAction = "activate"
	LoanActionComplete      LoanAction = "complete"
	LoanActionMarkEMIPaid   LoanAction = "mark_emi_paid"
)

// PaymentStatus is the state of a single repayment installment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// MediaVisibility controls who can see event media
type MediaVisibility string

const (
	MediaVisibilityPublic    MediaVisibility = "PUBLIC"
	MediaVisibilityAdminOnly MediaVisibility = "ADMIN_ONLY"
)

// Actor is the live identity performing a request.
// It is always re-resolved from the store, never taken from token claims.
type Actor struct {
	UserID         uint
	Role           Role
	UserType       UserType
	IsLoanEligible bool
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsLoanManager() bool {
	return a.Role == RoleLoanManager
}

// CanManageLoans reports whether the actor may act on loan applications at all
func (a Actor) CanManageLoans() bool {
	return a.IsAdmin() || a.IsLoanManager()
}

func (a Actor) IsNonAlumni() bool {
	return a.Role == RoleNonAlumniMember
}
