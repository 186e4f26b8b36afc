package models

import (
	"errors"
	"time"
)

// ApplicationStatus defines the status of a pay-later application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// PayLaterApplication represents a member's request to defer a purchase into
// an installment plan
type PayLaterApplication struct {
	ID         int               `json:"id" db:"id"`
	UserID     int               `json:"user_id" db:"user_id"`
	Amount     float64           `json:"amount" db:"amount"`
	TermMonths int               `json:"term_months" db:"term_months"`
	Purpose    string            `json:"purpose" db:"purpose"`
	Status     ApplicationStatus `json:"status" db:"status"`
	Schedule   *PaymentSchedule  `json:"schedule,omitempty" db:"-"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// PayLaterRequest represents a pay-later application request
type PayLaterRequest struct {
	UserID     int     `json:"user_id"`
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"term_months"`
	Purpose    string  `json:"purpose"`
}

// ValidatePayLaterRequest validates pay-later request data
func (r *PayLaterRequest) ValidatePayLaterRequest() error {
	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}

	if r.TermMonths < 1 {
		return errors.New("term must be at least 1 month")
	}

	return nil
}

// PaymentResult is the structured outcome of a payment processing or
// cancellation attempt. Gateway declines are an expected outcome, reported
// here rather than as errors.
type PaymentResult struct {
	Success bool              `json:"success"`
	Status  InstallmentStatus `json:"status"`
	Message string            `json:"message"`
}

// InterestRateForTerm returns the annual interest rate for a pay-later term.
// Rates are fixed by product definition.
func InterestRateForTerm(termMonths int) float64 {
	switch termMonths {
	case 1:
		return 0.08
	case 3:
		return 0.10
	case 6:
		return 0.12
	default:
		return 0.15
	}
}
