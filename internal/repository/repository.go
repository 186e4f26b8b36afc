package repository

import (
	"context"
	"database/sql"
	"time"

	"coop-service/internal/models"
	"coop-service/internal/repository/postgres"
)

// UserRepository defines methods for user repository
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByMemberNumber(ctx context.Context, memberNumber string) (*models.User, error)
	UpdateCreditScore(ctx context.Context, userID int, score int, creditLimit float64, updatedAt time.Time) error
}

// SavingsRepository defines methods for savings transaction repository
type SavingsRepository interface {
	Create(ctx context.Context, transaction *models.SavingsTransaction) (int, error)
	GetByUserID(ctx context.Context, userID int) ([]*models.SavingsTransaction, error)
}

// LoanPaymentRepository defines methods for loan payment repository
type LoanPaymentRepository interface {
	Create(ctx context.Context, payment *models.LoanPayment) (int, error)
	GetByUserID(ctx context.Context, userID int) ([]*models.LoanPayment, error)
}

// ApplicationRepository defines methods for pay-later application repository
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.PayLaterApplication) (int, error)
	GetByID(ctx context.Context, id int) (*models.PayLaterApplication, error)
	GetByUserID(ctx context.Context, userID int) ([]*models.PayLaterApplication, error)
	// UpdateStatusIf transitions the application status only when it currently
	// matches the expected status, returning whether a row changed.
	UpdateStatusIf(ctx context.Context, id int, from, to models.ApplicationStatus) (bool, error)
	// ApproveWithInstallments transitions a pending application to approved and
	// persists its installment plan in a single transaction, so a failed insert
	// never leaves the application approved without a plan. Returns whether the
	// transition happened.
	ApproveWithInstallments(ctx context.Context, id int, installments []*models.Installment) (bool, error)
}

// InstallmentRepository defines methods for installment repository
type InstallmentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Installment, error)
	GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error)
	// MarkPaidIf stamps the installment as paid only while it is pending,
	// scheduled, or overdue, returning whether a row changed.
	MarkPaidIf(ctx context.Context, id int, paidOn time.Time, method, transactionRef string) (bool, error)
	// CancelIf cancels the installment only while it is still pending or
	// scheduled, returning whether a row changed.
	CancelIf(ctx context.Context, id int) (bool, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	GetOverdue(ctx context.Context) ([]*models.Installment, error)
}

// Repository is a composition of all repositories
type Repository struct {
	DB          *sql.DB
	User        UserRepository
	Savings     SavingsRepository
	LoanPayment LoanPaymentRepository
	Application ApplicationRepository
	Installment InstallmentRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:          db,
		User:        postgres.NewUserRepository(db),
		Savings:     postgres.NewSavingsRepository(db),
		LoanPayment: postgres.NewLoanPaymentRepository(db),
		Application: postgres.NewApplicationRepository(db),
		Installment: postgres.NewInstallmentRepository(db),
	}
}
