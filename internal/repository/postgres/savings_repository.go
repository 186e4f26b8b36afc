package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"coop-service/internal/models"
)

// SavingsRepo is a PostgreSQL implementation of the repository.SavingsRepository interface
type SavingsRepo struct {
	db *sql.DB
}

// NewSavingsRepository creates a new SavingsRepo
func NewSavingsRepository(db *sql.DB) *SavingsRepo {
	return &SavingsRepo{db: db}
}

// Create creates a new savings transaction in the database
func (r *SavingsRepo) Create(ctx context.Context, transaction *models.SavingsTransaction) (int, error) {
	query := `INSERT INTO savings_transactions (user_id, amount, type, description)
			  VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.UserID,
		transaction.Amount,
		transaction.Type,
		transaction.Description,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create savings transaction: %w", err)
	}

	return id, nil
}

// GetByUserID gets all savings transactions for a member, newest first
func (r *SavingsRepo) GetByUserID(ctx context.Context, userID int) ([]*models.SavingsTransaction, error) {
	query := `SELECT id, user_id, amount, type, description, created_at
			  FROM savings_transactions
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*models.SavingsTransaction

	for rows.Next() {
		transaction := &models.SavingsTransaction{}
		err := rows.Scan(
			&transaction.ID,
			&transaction.UserID,
			&transaction.Amount,
			&transaction.Type,
			&transaction.Description,
			&transaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan savings transaction: %w", err)
		}

		transactions = append(transactions, transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return transactions, nil
}
