package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coop-service/internal/models"
)

// ApplicationRepo is a PostgreSQL implementation of the repository.ApplicationRepository interface
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepository creates a new ApplicationRepo
func NewApplicationRepository(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// Create creates a new pay-later application in the database
func (r *ApplicationRepo) Create(ctx context.Context, application *models.PayLaterApplication) (int, error) {
	query := `INSERT INTO pay_later_applications (user_id, amount, term_months, purpose, status)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		application.UserID,
		application.Amount,
		application.TermMonths,
		application.Purpose,
		application.Status,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create pay-later application: %w", err)
	}

	return id, nil
}

// GetByID gets a pay-later application by ID
func (r *ApplicationRepo) GetByID(ctx context.Context, id int) (*models.PayLaterApplication, error) {
	query := `SELECT id, user_id, amount, term_months, purpose, status, created_at, updated_at
			  FROM pay_later_applications WHERE id = $1`

	application := &models.PayLaterApplication{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&application.ID,
		&application.UserID,
		&application.Amount,
		&application.TermMonths,
		&application.Purpose,
		&application.Status,
		&application.CreatedAt,
		&application.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get application %d: %w", id, err)
	}

	return application, nil
}

// GetByUserID gets all pay-later applications for a member, newest first
func (r *ApplicationRepo) GetByUserID(ctx context.Context, userID int) ([]*models.PayLaterApplication, error) {
	query := `SELECT id, user_id, amount, term_months, purpose, status, created_at, updated_at
			  FROM pay_later_applications
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var applications []*models.PayLaterApplication

	for rows.Next() {
		application := &models.PayLaterApplication{}
		err := rows.Scan(
			&application.ID,
			&application.UserID,
			&application.Amount,
			&application.TermMonths,
			&application.Purpose,
			&application.Status,
			&application.CreatedAt,
			&application.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}

		applications = append(applications, application)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return applications, nil
}

// ApproveWithInstallments transitions a pending application to approved and
// inserts its installment plan in one transaction. The conditional update
// guards against concurrent double approvals; a failed insert rolls the status
// back so the application never ends up approved without a plan.
func (r *ApplicationRepo) ApproveWithInstallments(ctx context.Context, id int, installments []*models.Installment) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	query := `UPDATE pay_later_applications
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := tx.ExecContext(ctx, query, models.ApplicationStatusApproved, id, models.ApplicationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update application %d status: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		tx.Rollback()
		return false, nil
	}

	if err = insertInstallments(ctx, tx, installments); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// UpdateStatusIf transitions the application status with a conditional update.
// The WHERE clause on the current status is the guard against concurrent
// double transitions.
func (r *ApplicationRepo) UpdateStatusIf(ctx context.Context, id int, from, to models.ApplicationStatus) (bool, error) {
	query := `UPDATE pay_later_applications
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update application %d status: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}
