package domain

import (
	"errors"
)

// Error categories. Every service error wraps exactly one of these so the
// HTTP layer can pick a status code with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("conflict")
)

// Error is a client-facing error. Its message is safe to return to callers
// and Unwrap exposes the category.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func validation(msg string) error   { return &Error{Kind: ErrValidation, Msg: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Msg: msg} }
func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func transition(msg string) error   { return &Error{Kind: ErrInvalidTransition, Msg: msg} }
func conflict(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }

// Auth errors
var (
	ErrInvalidCredentials = unauthorized("invalid email or password")
	ErrAccountPending     = unauthorized("your account is pending approval")
	ErrAccountRejected    = unauthorized("your account has been rejected")
	ErrAccountDisabled    = unauthorized("your account has been disabled")
	ErrTokenInvalid       = unauthorized("token invalid")
	ErrTokenExpired       = unauthorized("token expired")
	ErrTokenRevoked       = unauthorized("token revoked")
)

// User errors
var (
	ErrUserNotFound       = notFound("user not found")
	ErrEmailAlreadyExists = conflict("email already registered")
	ErrInvalidRole        = validation("invalid role")
	ErrInvalidStatus      = validation("invalid user status")
	ErrInvalidUserType    = validation("invalid user type")
	ErrCannotChangeSelf   = validation("cannot change your own role or status")
	ErrProfileNotFound    = notFound("profile not found")
	ErrRecordNotFound     = notFound("record not found")
)

// Loan errors
var (
	ErrLoanNotFound            = notFound("loan application not found")
	ErrRepaymentNotFound       = notFound("repayment not found")
	ErrCategoryNotFound        = notFound("loan category not found")
	ErrCategoryDisabled        = validation("invalid loan category")
	ErrNotLoanEligible         = forbidden("you are not eligible for loans")
	ErrInvalidLoanAmount       = validation("loan amount must be greater than 0")
	ErrLoanAmountPrecision     = validation("loan amount must have at most 2 decimal places")
	ErrInvalidLoanTerm         = validation("repayment months must be greater than 0")
	ErrLoanAmountExceedsMax    = validation("loan amount exceeds maximum limit")
	ErrGuarantorNotFound       = validation("guarantor not found")
	ErrGuarantorNotEligible    = validation("guarantors must be loan eligible")
	ErrGuarantorLimitReached   = validation("guarantor has reached active loan limit")
	ErrGuarantorNotDistinct    = validation("guarantors must be two different members other than the applicant")
	ErrRejectionReasonRequired = validation("rejection reason is required")
	ErrRepaymentIDRequired     = validation("repayment id is required")
	ErrPaidAmountInvalid       = validation("paid amount must be greater than 0")
	ErrPaidAmountPrecision     = validation("paid amount must have at most 2 decimal places")
	ErrUnknownLoanAction       = validation("unknown action")
	ErrAssigneeNotManager      = validation("assignee must be a loan manager or admin")
	ErrLoanForbidden           = forbidden("you are not allowed to manage this application")
	ErrAdminOnly               = forbidden("only admins can perform this action")
	ErrLoanAlreadyClaimed      = conflict("application is already assigned to another manager")
	ErrInvalidLoanTransition   = transition("action not allowed in current status")
	ErrRepaymentAlreadyPaid    = transition("repayment is already paid")
)

// Card and event errors
var (
	ErrCardNotAllowed    = forbidden("non-alumni members are not eligible for membership cards")
	ErrCardNotFound      = notFound("membership card not found")
	ErrEventNotFound     = notFound("event not found")
	ErrMediaNotFound     = notFound("event media not found")
	ErrEventForbidden    = forbidden("you are not a participant of this event")
	ErrEventWindow       = validation("end date must be after start date")
	ErrParticipantExists = conflict("user is already a participant")
	ErrParticipantAbsent = notFound("participant not found")
	ErrInvalidVisibility = validation("invalid media visibility")
	ErrStorageDisabled   = validation("photo storage is not configured")
)

// NewValidationError builds an ad-hoc validation error
func NewValidationError(msg string) error {
	return validation(msg)
}

// NewForbiddenError builds an ad-hoc authorization error
func NewForbiddenError(msg string) error {
	return forbidden(msg)
}

// NewTransitionError builds an ad-hoc state transition error
func NewTransitionError(msg string) error {
	return transition(msg)
}
