package models

import (
	"time"
)

// SavingsTransactionType defines the type of a savings transaction
type SavingsTransactionType string

const (
	SavingsTypeDeposit    SavingsTransactionType = "DEPOSIT"
	SavingsTypeWithdrawal SavingsTransactionType = "WITHDRAWAL"
)

// SavingsTransaction represents a single movement on a member's savings account
type SavingsTransaction struct {
	ID          int                    `json:"id" db:"id"`
	UserID      int                    `json:"user_id" db:"user_id"`
	Amount      float64                `json:"amount" db:"amount"`
	Type        SavingsTransactionType `json:"type" db:"type"`
	Description string                 `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}
