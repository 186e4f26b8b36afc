package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"coop-service/internal/models"
)

// LoanPaymentRepo is a PostgreSQL implementation of the repository.LoanPaymentRepository interface
type LoanPaymentRepo struct {
	db *sql.DB
}

// NewLoanPaymentRepository creates a new LoanPaymentRepo
func NewLoanPaymentRepository(db *sql.DB) *LoanPaymentRepo {
	return &LoanPaymentRepo{db: db}
}

// Create records a loan payment in the database
func (r *LoanPaymentRepo) Create(ctx context.Context, payment *models.LoanPayment) (int, error) {
	query := `INSERT INTO loan_payments (loan_id, user_id, amount, payment_date, payment_method,
			  installment_number, transaction_ref, is_late, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		payment.LoanID,
		payment.UserID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.InstallmentNumber,
		payment.TransactionRef,
		payment.IsLate,
		payment.Status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create loan payment: %w", err)
	}

	return id, nil
}

// GetByUserID gets all loan payments for a member, newest first
func (r *LoanPaymentRepo) GetByUserID(ctx context.Context, userID int) ([]*models.LoanPayment, error) {
	query := `SELECT id, loan_id, user_id, amount, payment_date, payment_method,
			  installment_number, transaction_ref, is_late, status, created_at
			  FROM loan_payments
			  WHERE user_id = $1
			  ORDER BY payment_date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan payments for user %d: %w", userID, err)
	}
	defer rows.Close()

	var payments []*models.LoanPayment

	for rows.Next() {
		payment := &models.LoanPayment{}
		err := rows.Scan(
			&payment.ID,
			&payment.LoanID,
			&payment.UserID,
			&payment.Amount,
			&payment.PaymentDate,
			&payment.PaymentMethod,
			&payment.InstallmentNumber,
			&payment.TransactionRef,
			&payment.IsLate,
			&payment.Status,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan payment: %w", err)
		}

		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}
