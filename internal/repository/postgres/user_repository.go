package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coop-service/internal/models"
)

// UserRepo is a PostgreSQL implementation of the repository.UserRepository interface
type UserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepo
func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new member in the database
func (r *UserRepo) Create(ctx context.Context, user *models.User) (int, error) {
	query := `INSERT INTO users (member_number, email, first_name, last_name)
			  VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.MemberNumber,
		user.Email,
		user.FirstName,
		user.LastName,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// GetByID gets a member by ID
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, member_number, email, first_name, last_name,
			  credit_score, credit_limit, credit_score_updated_at, created_at, updated_at
			  FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.MemberNumber,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.CreditScore,
		&user.CreditLimit,
		&user.CreditScoreUpdatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}

// GetByMemberNumber gets a member by member number
func (r *UserRepo) GetByMemberNumber(ctx context.Context, memberNumber string) (*models.User, error) {
	query := `SELECT id, member_number, email, first_name, last_name,
			  credit_score, credit_limit, credit_score_updated_at, created_at, updated_at
			  FROM users WHERE member_number = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, memberNumber).Scan(
		&user.ID,
		&user.MemberNumber,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.CreditScore,
		&user.CreditLimit,
		&user.CreditScoreUpdatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", memberNumber, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member %s: %w", memberNumber, err)
	}

	return user, nil
}

// UpdateCreditScore overwrites the member's current credit score and limit
func (r *UserRepo) UpdateCreditScore(ctx context.Context, userID int, score int, creditLimit float64, updatedAt time.Time) error {
	query := `UPDATE users
			  SET credit_score = $1, credit_limit = $2, credit_score_updated_at = $3, updated_at = NOW()
			  WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, score, creditLimit, updatedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update credit score for user %d: %w", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	return nil
}
