package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coop-service/internal/models"
)

// InstallmentRepo is a PostgreSQL implementation of the repository.InstallmentRepository interface
type InstallmentRepo struct {
	db *sql.DB
}

// NewInstallmentRepository creates a new InstallmentRepo
func NewInstallmentRepository(db *sql.DB) *InstallmentRepo {
	return &InstallmentRepo{db: db}
}

// insertInstallments writes a full installment plan inside the given
// transaction, so the caller controls atomicity with the approval update
func insertInstallments(ctx context.Context, tx *sql.Tx, installments []*models.Installment) error {
	valueStrings := make([]string, 0, len(installments))
	valueArgs := make([]interface{}, 0, len(installments)*8)

	for i, installment := range installments {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*8+1, i*8+2, i*8+3, i*8+4, i*8+5, i*8+6, i*8+7, i*8+8))

		valueArgs = append(valueArgs,
			installment.ApplicationID,
			installment.UserID,
			installment.Number,
			installment.DueDate,
			installment.TotalAmount,
			installment.PrincipalAmount,
			installment.InterestAmount,
			installment.Status,
		)
	}

	stmt := fmt.Sprintf(`INSERT INTO pay_later_installments
						 (application_id, user_id, installment_number, due_date,
						  total_amount, principal_amount, interest_amount, status)
						 VALUES %s`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert installments: %w", err)
	}

	return nil
}

// GetByID gets an installment by ID
func (r *InstallmentRepo) GetByID(ctx context.Context, id int) (*models.Installment, error) {
	query := `SELECT id, application_id, user_id, installment_number, due_date, total_amount,
			  principal_amount, interest_amount, status, paid_on, payment_method, transaction_ref,
			  created_at, updated_at
			  FROM pay_later_installments WHERE id = $1`

	installment := &models.Installment{}
	var paymentMethod, transactionRef sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&installment.ID,
		&installment.ApplicationID,
		&installment.UserID,
		&installment.Number,
		&installment.DueDate,
		&installment.TotalAmount,
		&installment.PrincipalAmount,
		&installment.InterestAmount,
		&installment.Status,
		&installment.PaidOn,
		&paymentMethod,
		&transactionRef,
		&installment.CreatedAt,
		&installment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("installment %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get installment %d: %w", id, err)
	}

	installment.PaymentMethod = paymentMethod.String
	installment.TransactionRef = transactionRef.String

	return installment, nil
}

// GetByApplicationID gets all installments of an application in plan order
func (r *InstallmentRepo) GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error) {
	query := `SELECT id, application_id, user_id, installment_number, due_date, total_amount,
			  principal_amount, interest_amount, status, paid_on, payment_method, transaction_ref,
			  created_at, updated_at
			  FROM pay_later_installments
			  WHERE application_id = $1
			  ORDER BY installment_number`

	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments for application %d: %w", applicationID, err)
	}
	defer rows.Close()

	return r.scanInstallments(rows)
}

// MarkPaidIf stamps an installment as paid with a conditional update. The
// status condition is the guard against concurrent double payments.
func (r *InstallmentRepo) MarkPaidIf(ctx context.Context, id int, paidOn time.Time, method, transactionRef string) (bool, error) {
	query := `UPDATE pay_later_installments
			  SET status = $1, paid_on = $2, payment_method = $3, transaction_ref = $4, updated_at = NOW()
			  WHERE id = $5 AND status IN ($6, $7, $8)`

	result, err := r.db.ExecContext(
		ctx,
		query,
		models.InstallmentStatusPaid,
		paidOn,
		method,
		transactionRef,
		id,
		models.InstallmentStatusPending,
		models.InstallmentStatusScheduled,
		models.InstallmentStatusOverdue,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark installment %d paid: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// CancelIf cancels an installment while it is still pending or scheduled
func (r *InstallmentRepo) CancelIf(ctx context.Context, id int) (bool, error) {
	query := `UPDATE pay_later_installments
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status IN ($3, $4)`

	result, err := r.db.ExecContext(
		ctx,
		query,
		models.InstallmentStatusCancelled,
		id,
		models.InstallmentStatusPending,
		models.InstallmentStatusScheduled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel installment %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// MarkOverdue flips all pending or scheduled installments due before asOf to
// overdue, returning how many rows changed
func (r *InstallmentRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `UPDATE pay_later_installments
			  SET status = $1, updated_at = NOW()
			  WHERE status IN ($2, $3) AND due_date < $4`

	result, err := r.db.ExecContext(
		ctx,
		query,
		models.InstallmentStatusOverdue,
		models.InstallmentStatusPending,
		models.InstallmentStatusScheduled,
		asOf,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// GetOverdue gets all overdue installments
func (r *InstallmentRepo) GetOverdue(ctx context.Context) ([]*models.Installment, error) {
	query := `SELECT id, application_id, user_id, installment_number, due_date, total_amount,
			  principal_amount, interest_amount, status, paid_on, payment_method, transaction_ref,
			  created_at, updated_at
			  FROM pay_later_installments
			  WHERE status = $1
			  ORDER BY due_date`

	rows, err := r.db.QueryContext(ctx, query, models.InstallmentStatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue installments: %w", err)
	}
	defer rows.Close()

	return r.scanInstallments(rows)
}

// Helper function to scan multiple installments
func (r *InstallmentRepo) scanInstallments(rows *sql.Rows) ([]*models.Installment, error) {
	var installments []*models.Installment

	for rows.Next() {
		installment := &models.Installment{}
		var paymentMethod, transactionRef sql.NullString

		err := rows.Scan(
			&installment.ID,
			&installment.ApplicationID,
			&installment.UserID,
			&installment.Number,
			&installment.DueDate,
			&installment.TotalAmount,
			&installment.PrincipalAmount,
			&installment.InterestAmount,
			&installment.Status,
			&installment.PaidOn,
			&paymentMethod,
			&transactionRef,
			&installment.CreatedAt,
			&installment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}

		installment.PaymentMethod = paymentMethod.String
		installment.TransactionRef = transactionRef.String

		installments = append(installments, installment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return installments, nil
}
