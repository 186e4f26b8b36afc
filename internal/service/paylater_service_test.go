package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coop-service/internal/models"
	"coop-service/internal/repository"
)

func TestPayLaterSvc_CheckEligibility(t *testing.T) {
	tests := []struct {
		name         string
		repos        func(userID int) *repository.Repository
		wantEligible bool
	}{
		{
			name:         "rich member is eligible",
			repos:        richMemberRepos,
			wantEligible: true,
		},
		{
			name:         "new member is not eligible",
			repos:        newMemberRepos,
			wantEligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPayLaterService(testDependencies(tt.repos(1), &fakeGateway{ref: "txn_test"}))

			eligibility, err := svc.CheckEligibility(context.Background(), 1)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEligible, eligibility.Eligible)
			if !tt.wantEligible {
				assert.Empty(t, eligibility.PaymentTerms)
				assert.Equal(t, float64(0), eligibility.CreditLimit)
			}
		})
	}
}

func TestPayLaterSvc_CreateApplication(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	application, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     3000,
		TermMonths: 6,
		Purpose:    "School fees",
	})
	require.NoError(t, err)

	assert.NotZero(t, application.ID)
	assert.Equal(t, models.ApplicationStatusPending, application.Status)

	stored, err := repos.Application.GetByID(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)
}

func TestPayLaterSvc_CreateApplication_NotEligible(t *testing.T) {
	repos := newMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	_, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     100,
		TermMonths: 1,
		Purpose:    "Groceries",
	})
	require.ErrorIs(t, err, models.ErrNotEligible)
}

func TestPayLaterSvc_CreateApplication_LimitExceeded(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	// Rich member fixture has a limit of 10000
	_, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     10001,
		TermMonths: 6,
		Purpose:    "Renovation",
	})
	require.ErrorIs(t, err, models.ErrLimitExceeded)
}

func TestPayLaterSvc_CreateApplication_InvalidInput(t *testing.T) {
	svc := NewPayLaterService(testDependencies(richMemberRepos(1), &fakeGateway{}))

	_, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     -5,
		TermMonths: 3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestPayLaterSvc_ApproveApplication(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	created, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     3000,
		TermMonths: 3,
		Purpose:    "Equipment",
	})
	require.NoError(t, err)

	approved, err := svc.ApproveApplication(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)
	require.NotNil(t, approved.Schedule)
	assert.Len(t, approved.Schedule.Installments, 3)
	// 3-month term carries the 10% annual rate
	assert.Equal(t, 0.10, approved.Schedule.InterestRate)

	installments, err := svc.GetInstallments(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, installments, 3)
	for _, installment := range installments {
		assert.Equal(t, models.InstallmentStatusPending, installment.Status)
		assert.Equal(t, 1, installment.UserID)
	}
}

func TestPayLaterSvc_ApproveApplication_DoubleApproval(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	created, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     1000,
		TermMonths: 1,
		Purpose:    "Stock",
	})
	require.NoError(t, err)

	_, err = svc.ApproveApplication(context.Background(), created.ID)
	require.NoError(t, err)

	// Second approval must not generate a second installment set
	_, err = svc.ApproveApplication(context.Background(), created.ID)
	require.ErrorIs(t, err, models.ErrInvalidState)

	installmentRepo := repos.Installment.(*fakeInstallmentRepo)
	assert.Equal(t, 1, installmentRepo.batches)
}

func TestPayLaterSvc_ApproveApplication_PlanPersistFailure(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	created, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     3000,
		TermMonths: 3,
		Purpose:    "Inventory",
	})
	require.NoError(t, err)

	applicationRepo := repos.Application.(*fakeApplicationRepo)
	applicationRepo.approveErr = errors.New("connection reset")

	_, err = svc.ApproveApplication(context.Background(), created.ID)
	require.Error(t, err)
	require.NotErrorIs(t, err, models.ErrInvalidState)

	// The failed insert rolled the transition back: the application is still
	// pending with no installments, and a retry succeeds
	stored, err := repos.Application.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)

	installments, err := svc.GetInstallments(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, installments)

	applicationRepo.approveErr = nil

	approved, err := svc.ApproveApplication(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, approved.Status)

	installments, err = svc.GetInstallments(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, installments, 3)
}

func TestPayLaterSvc_ApproveApplication_NotFound(t *testing.T) {
	svc := NewPayLaterService(testDependencies(richMemberRepos(1), &fakeGateway{}))

	_, err := svc.ApproveApplication(context.Background(), 999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestPayLaterSvc_RejectApplication(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{}))

	created, err := svc.CreateApplication(context.Background(), &models.PayLaterRequest{
		UserID:     1,
		Amount:     500,
		TermMonths: 1,
		Purpose:    "Repairs",
	})
	require.NoError(t, err)

	rejected, err := svc.RejectApplication(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	// Rejection is terminal
	_, err = svc.ApproveApplication(context.Background(), created.ID)
	require.ErrorIs(t, err, models.ErrInvalidState)
}

func TestPayLaterSvc_ProcessScheduledPayment(t *testing.T) {
	repos := richMemberRepos(1)
	gateway := &fakeGateway{ref: "txn_abc123"}
	svc := NewPayLaterService(testDependencies(repos, gateway))

	installmentID := seedInstallment(t, repos.Installment.(*fakeInstallmentRepo), models.InstallmentStatusPending, time.Now().AddDate(0, 1, 0))

	result, err := svc.ProcessScheduledPayment(context.Background(), installmentID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)
	assert.Equal(t, 1, gateway.calls)

	stored, err := repos.Installment.GetByID(context.Background(), installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidOn)
	assert.Equal(t, "txn_abc123", stored.TransactionRef)

	// Payment history row recorded, on time
	paymentRepo := repos.LoanPayment.(*fakeLoanPaymentRepo)
	require.Len(t, paymentRepo.created, 1)
	assert.Equal(t, "Pay Later", paymentRepo.created[0].PaymentMethod)
	assert.False(t, paymentRepo.created[0].IsLate)
}

func TestPayLaterSvc_ProcessScheduledPayment_GatewayDecline(t *testing.T) {
	repos := richMemberRepos(1)
	gateway := &fakeGateway{err: ErrCaptureDeclined}
	svc := NewPayLaterService(testDependencies(repos, gateway))

	installmentID := seedInstallment(t, repos.Installment.(*fakeInstallmentRepo), models.InstallmentStatusPending, time.Now().AddDate(0, 1, 0))

	result, err := svc.ProcessScheduledPayment(context.Background(), installmentID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, models.InstallmentStatusPending, result.Status)
	assert.Contains(t, result.Message, "try again")

	// Installment untouched, nothing recorded
	stored, err := repos.Installment.GetByID(context.Background(), installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPending, stored.Status)
	assert.Nil(t, stored.PaidOn)
	assert.Empty(t, repos.LoanPayment.(*fakeLoanPaymentRepo).created)
}

func TestPayLaterSvc_ProcessScheduledPayment_AlreadyPaid(t *testing.T) {
	repos := richMemberRepos(1)
	gateway := &fakeGateway{ref: "txn_test"}
	svc := NewPayLaterService(testDependencies(repos, gateway))

	installmentID := seedInstallment(t, repos.Installment.(*fakeInstallmentRepo), models.InstallmentStatusPaid, time.Now())

	_, err := svc.ProcessScheduledPayment(context.Background(), installmentID)
	require.ErrorIs(t, err, models.ErrInvalidState)
	assert.Zero(t, gateway.calls)
}

func TestPayLaterSvc_ProcessScheduledPayment_LatePaymentFlagged(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{ref: "txn_test"}))

	installmentID := seedInstallment(t, repos.Installment.(*fakeInstallmentRepo), models.InstallmentStatusOverdue, time.Now().AddDate(0, -1, 0))

	result, err := svc.ProcessScheduledPayment(context.Background(), installmentID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	paymentRepo := repos.LoanPayment.(*fakeLoanPaymentRepo)
	require.Len(t, paymentRepo.created, 1)
	assert.True(t, paymentRepo.created[0].IsLate)
}

func TestPayLaterSvc_CancelScheduledPayment(t *testing.T) {
	tests := []struct {
		name    string
		status  models.InstallmentStatus
		wantErr error
	}{
		{
			name:   "pending installment cancels",
			status: models.InstallmentStatusPending,
		},
		{
			name:   "scheduled installment cancels",
			status: models.InstallmentStatusScheduled,
		},
		{
			name:    "paid installment cannot be cancelled",
			status:  models.InstallmentStatusPaid,
			wantErr: models.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := richMemberRepos(1)
			svc := NewPayLaterService(testDependencies(repos, &fakeGateway{}))

			installmentID := seedInstallment(t, repos.Installment.(*fakeInstallmentRepo), tt.status, time.Now().AddDate(0, 1, 0))

			result, err := svc.CancelScheduledPayment(context.Background(), installmentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Equal(t, models.InstallmentStatusCancelled, result.Status)

			stored, err := repos.Installment.GetByID(context.Background(), installmentID)
			require.NoError(t, err)
			assert.Equal(t, models.InstallmentStatusCancelled, stored.Status)
		})
	}
}

func TestPayLaterSvc_MarkOverdueInstallments(t *testing.T) {
	repos := richMemberRepos(1)
	svc := NewPayLaterService(testDependencies(repos, &fakeGateway{}))
	installmentRepo := repos.Installment.(*fakeInstallmentRepo)

	pastDue := seedInstallment(t, installmentRepo, models.InstallmentStatusPending, time.Now().AddDate(0, 0, -3))
	future := seedInstallment(t, installmentRepo, models.InstallmentStatusPending, time.Now().AddDate(0, 1, 0))

	count, err := svc.MarkOverdueInstallments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := installmentRepo.GetByID(context.Background(), pastDue)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusOverdue, stored.Status)

	stored, err = installmentRepo.GetByID(context.Background(), future)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPending, stored.Status)
}

func TestSimulatedGateway_Capture(t *testing.T) {
	alwaysDeclines := NewSimulatedGateway(1)
	_, err := alwaysDeclines.Capture(context.Background(), 100, "automatic")
	require.ErrorIs(t, err, ErrCaptureDeclined)

	neverDeclines := NewSimulatedGateway(0)
	ref, err := neverDeclines.Capture(context.Background(), 100, "automatic")
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	_, err = neverDeclines.Capture(context.Background(), 0, "automatic")
	require.Error(t, err)
}

// seedInstallment stores one installment directly in the fake repository
func seedInstallment(t *testing.T, repo *fakeInstallmentRepo, status models.InstallmentStatus, dueDate time.Time) int {
	t.Helper()

	installments := []*models.Installment{{
		ApplicationID: 1,
		UserID:        1,
		Number:        1,
		DueDate:       dueDate,
		TotalAmount:   100,
		Status:        status,
	}}
	repo.storeBatch(installments)

	return installments[0].ID
}
