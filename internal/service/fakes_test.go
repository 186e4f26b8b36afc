package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/repository"
)

// In-memory fakes for the repository interfaces and the payment gateway.

type fakeUserRepo struct {
	mu        sync.Mutex
	user      *models.User
	getErr    error
	updateErr error

	updatedScore *int
	updatedLimit *float64
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.user == nil || f.user.ID != id {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByMemberNumber(ctx context.Context, memberNumber string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) UpdateCreditScore(ctx context.Context, userID int, score int, creditLimit float64, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.user == nil || f.user.ID != userID {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	f.updatedScore = &score
	f.updatedLimit = &creditLimit
	return nil
}

type fakeSavingsRepo struct {
	transactions []*models.SavingsTransaction
	err          error
}

func (f *fakeSavingsRepo) Create(ctx context.Context, transaction *models.SavingsTransaction) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeSavingsRepo) GetByUserID(ctx context.Context, userID int) ([]*models.SavingsTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.transactions, nil
}

type fakeLoanPaymentRepo struct {
	payments  []*models.LoanPayment
	err       error
	createErr error

	created []*models.LoanPayment
}

func (f *fakeLoanPaymentRepo) Create(ctx context.Context, payment *models.LoanPayment) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, payment)
	return len(f.created), nil
}

func (f *fakeLoanPaymentRepo) GetByUserID(ctx context.Context, userID int) ([]*models.LoanPayment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payments, nil
}

type fakeApplicationRepo struct {
	applications map[int]*models.PayLaterApplication
	nextID       int
	installments *fakeInstallmentRepo
	approveErr   error
}

func newFakeApplicationRepo(installments *fakeInstallmentRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		applications: make(map[int]*models.PayLaterApplication),
		nextID:       1,
		installments: installments,
	}
}

func (f *fakeApplicationRepo) Create(ctx context.Context, application *models.PayLaterApplication) (int, error) {
	id := f.nextID
	f.nextID++
	stored := *application
	stored.ID = id
	f.applications[id] = &stored
	return id, nil
}

func (f *fakeApplicationRepo) GetByID(ctx context.Context, id int) (*models.PayLaterApplication, error) {
	application, ok := f.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %d: %w", id, models.ErrNotFound)
	}
	copied := *application
	return &copied, nil
}

func (f *fakeApplicationRepo) GetByUserID(ctx context.Context, userID int) ([]*models.PayLaterApplication, error) {
	var applications []*models.PayLaterApplication
	for _, application := range f.applications {
		if application.UserID == userID {
			copied := *application
			applications = append(applications, &copied)
		}
	}
	return applications, nil
}

func (f *fakeApplicationRepo) UpdateStatusIf(ctx context.Context, id int, from, to models.ApplicationStatus) (bool, error) {
	application, ok := f.applications[id]
	if !ok {
		return false, nil
	}
	if application.Status != from {
		return false, nil
	}
	application.Status = to
	return true, nil
}

func (f *fakeApplicationRepo) ApproveWithInstallments(ctx context.Context, id int, installments []*models.Installment) (bool, error) {
	application, ok := f.applications[id]
	if !ok || application.Status != models.ApplicationStatusPending {
		return false, nil
	}
	// A failed insert rolls the whole transaction back
	if f.approveErr != nil {
		return false, f.approveErr
	}
	f.installments.storeBatch(installments)
	application.Status = models.ApplicationStatusApproved
	return true, nil
}

type fakeInstallmentRepo struct {
	installments map[int]*models.Installment
	nextID       int
	batches      int
}

func newFakeInstallmentRepo() *fakeInstallmentRepo {
	return &fakeInstallmentRepo{installments: make(map[int]*models.Installment), nextID: 1}
}

func (f *fakeInstallmentRepo) storeBatch(installments []*models.Installment) {
	for _, installment := range installments {
		installment.ID = f.nextID
		f.nextID++
		stored := *installment
		f.installments[stored.ID] = &stored
	}
	f.batches++
}

func (f *fakeInstallmentRepo) GetByID(ctx context.Context, id int) (*models.Installment, error) {
	installment, ok := f.installments[id]
	if !ok {
		return nil, fmt.Errorf("installment %d: %w", id, models.ErrNotFound)
	}
	copied := *installment
	return &copied, nil
}

func (f *fakeInstallmentRepo) GetByApplicationID(ctx context.Context, applicationID int) ([]*models.Installment, error) {
	var installments []*models.Installment
	for _, installment := range f.installments {
		if installment.ApplicationID == applicationID {
			copied := *installment
			installments = append(installments, &copied)
		}
	}
	return installments, nil
}

func (f *fakeInstallmentRepo) MarkPaidIf(ctx context.Context, id int, paidOn time.Time, method, transactionRef string) (bool, error) {
	installment, ok := f.installments[id]
	if !ok {
		return false, nil
	}
	switch installment.Status {
	case models.InstallmentStatusPending, models.InstallmentStatusScheduled, models.InstallmentStatusOverdue:
		installment.Status = models.InstallmentStatusPaid
		installment.PaidOn = &paidOn
		installment.PaymentMethod = method
		installment.TransactionRef = transactionRef
		return true, nil
	}
	return false, nil
}

func (f *fakeInstallmentRepo) CancelIf(ctx context.Context, id int) (bool, error) {
	installment, ok := f.installments[id]
	if !ok {
		return false, nil
	}
	switch installment.Status {
	case models.InstallmentStatusPending, models.InstallmentStatusScheduled:
		installment.Status = models.InstallmentStatusCancelled
		return true, nil
	}
	return false, nil
}

func (f *fakeInstallmentRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	for _, installment := range f.installments {
		switch installment.Status {
		case models.InstallmentStatusPending, models.InstallmentStatusScheduled:
			if installment.DueDate.Before(asOf) {
				installment.Status = models.InstallmentStatusOverdue
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeInstallmentRepo) GetOverdue(ctx context.Context) ([]*models.Installment, error) {
	var installments []*models.Installment
	for _, installment := range f.installments {
		if installment.Status == models.InstallmentStatusOverdue {
			copied := *installment
			installments = append(installments, &copied)
		}
	}
	return installments, nil
}

type fakeGateway struct {
	ref   string
	err   error
	calls int
}

func (f *fakeGateway) Capture(ctx context.Context, amount float64, method string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *configs.Config {
	return &configs.Config{
		Gateway: configs.GatewayConfig{
			CaptureTimeout: time.Second,
			FailureRate:    0,
		},
	}
}

func testDependencies(repos *repository.Repository, gateway PaymentGateway) Dependencies {
	return Dependencies{
		Repos:   repos,
		Logger:  testLogger(),
		Config:  testConfig(),
		Gateway: gateway,
	}
}

// richMemberRepos returns repositories for a long-standing member with a
// strong savings and repayment history (score 850, limit 10000).
func richMemberRepos(userID int) *repository.Repository {
	now := time.Now()

	// Anchor deposits to the first of the month so each lands in a distinct
	// calendar month regardless of today's date
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var savings []*models.SavingsTransaction
	for month := 1; month <= 12; month++ {
		for i := 0; i < 2; i++ {
			savings = append(savings, &models.SavingsTransaction{
				UserID:    userID,
				Amount:    5000,
				Type:      models.SavingsTypeDeposit,
				CreatedAt: monthStart.AddDate(0, -month, 0),
			})
		}
	}

	var payments []*models.LoanPayment
	for i := 0; i < 5; i++ {
		payments = append(payments, &models.LoanPayment{
			UserID:      userID,
			Amount:      100,
			PaymentDate: now.AddDate(0, -i, 0),
			IsLate:      false,
			Status:      models.LoanPaymentStatusCompleted,
		})
	}

	installments := newFakeInstallmentRepo()

	return &repository.Repository{
		User: &fakeUserRepo{user: &models.User{
			ID:        userID,
			Email:     "",
			CreatedAt: now.AddDate(-3, 0, 0),
		}},
		Savings:     &fakeSavingsRepo{transactions: savings},
		LoanPayment: &fakeLoanPaymentRepo{payments: payments},
		Application: newFakeApplicationRepo(installments),
		Installment: installments,
	}
}

// newMemberRepos returns repositories for a member with no history at all
// (score 410, no credit).
func newMemberRepos(userID int) *repository.Repository {
	installments := newFakeInstallmentRepo()

	return &repository.Repository{
		User: &fakeUserRepo{user: &models.User{
			ID:        userID,
			Email:     "",
			CreatedAt: time.Now(),
		}},
		Savings:     &fakeSavingsRepo{},
		LoanPayment: &fakeLoanPaymentRepo{},
		Application: newFakeApplicationRepo(installments),
		Installment: installments,
	}
}
