package models

import (
	"time"
)

// LoanPaymentStatus defines the status of a recorded loan payment
type LoanPaymentStatus string

const (
	LoanPaymentStatusCompleted LoanPaymentStatus = "COMPLETED"
	LoanPaymentStatusFailed    LoanPaymentStatus = "FAILED"
)

// LoanPayment represents one recorded repayment against a member's loan.
// Rows are append-only; they feed the repayment factor of the credit score.
type LoanPayment struct {
	ID                int               `json:"id" db:"id"`
	LoanID            int               `json:"loan_id" db:"loan_id"`
	UserID            int               `json:"user_id" db:"user_id"`
	Amount            float64           `json:"amount" db:"amount"`
	PaymentDate       time.Time         `json:"payment_date" db:"payment_date"`
	PaymentMethod     string            `json:"payment_method,omitempty" db:"payment_method"`
	InstallmentNumber int               `json:"installment_number,omitempty" db:"installment_number"`
	TransactionRef    string            `json:"transaction_ref,omitempty" db:"transaction_ref"`
	IsLate            bool              `json:"is_late" db:"is_late"`
	Status            LoanPaymentStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}
