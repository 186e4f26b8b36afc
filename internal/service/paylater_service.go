package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/repository"
)

// PayLaterSvc is an implementation of the service.PayLaterService interface
type PayLaterSvc struct {
	repos   *repository.Repository
	logger  *logrus.Logger
	config  *configs.Config
	gateway PaymentGateway
	scoring ScoringService
	email   EmailService
}

// NewPayLaterService creates a new PayLaterSvc
func NewPayLaterService(deps Dependencies) *PayLaterSvc {
	return &PayLaterSvc{
		repos:   deps.Repos,
		logger:  deps.Logger,
		config:  deps.Config,
		gateway: deps.Gateway,
		scoring: NewScoringService(deps),
		email:   NewEmailService(deps),
	}
}

// CheckEligibility recomputes the member's credit score and applies the
// minimum-score gate
func (s *PayLaterSvc) CheckEligibility(ctx context.Context, userID int) (*models.EligibilityResult, error) {
	result, err := s.scoring.Calculate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility for user %d: %w", userID, err)
	}

	return &models.EligibilityResult{
		Eligible:     result.Score >= models.MinEligibleScore,
		Score:        result.Score,
		CreditLimit:  result.CreditLimit,
		PaymentTerms: result.PaymentTerms,
	}, nil
}

// CreateApplication validates the request against the member's eligibility and
// credit limit and persists a pending application
func (s *PayLaterSvc) CreateApplication(ctx context.Context, req *models.PayLaterRequest) (*models.PayLaterApplication, error) {
	if err := req.ValidatePayLaterRequest(); err != nil {
		return nil, fmt.Errorf("invalid pay-later request: %w", err)
	}

	eligibility, err := s.CheckEligibility(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if !eligibility.Eligible {
		return nil, fmt.Errorf("user %d has score %d, below the minimum of %d: %w",
			req.UserID, eligibility.Score, models.MinEligibleScore, models.ErrNotEligible)
	}

	if req.Amount > eligibility.CreditLimit {
		return nil, fmt.Errorf("requested amount %.2f exceeds credit limit %.2f: %w",
			req.Amount, eligibility.CreditLimit, models.ErrLimitExceeded)
	}

	application := &models.PayLaterApplication{
		UserID:     req.UserID,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
		Status:     models.ApplicationStatusPending,
	}

	id, err := s.repos.Application.Create(ctx, application)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	application.ID = id

	s.logger.Infof("Pay-later application %d created for user %d: amount=%.2f, term=%d months",
		id, req.UserID, req.Amount, req.TermMonths)

	return application, nil
}

// ApproveApplication generates the installment plan for a pending application
// and persists it. The status transition is a conditional update, so a second
// approval of the same application fails instead of generating a duplicate
// schedule.
func (s *PayLaterSvc) ApproveApplication(ctx context.Context, applicationID int) (*models.PayLaterApplication, error) {
	application, err := s.repos.Application.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	terms := models.LoanTerms{
		Principal:  application.Amount,
		AnnualRate: models.InterestRateForTerm(application.TermMonths),
		TermMonths: application.TermMonths,
	}

	schedule, err := models.ComputeSchedule(terms, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute schedule for application %d: %w", applicationID, err)
	}

	for _, installment := range schedule.Installments {
		installment.ApplicationID = applicationID
		installment.UserID = application.UserID
	}

	// Status transition and plan insert commit together, so a failed insert
	// leaves the application pending and retryable
	transitioned, err := s.repos.Application.ApproveWithInstallments(ctx, applicationID, schedule.Installments)
	if err != nil {
		return nil, fmt.Errorf("failed to approve application %d: %w", applicationID, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("application %d is not pending: %w", applicationID, models.ErrInvalidState)
	}

	application.Status = models.ApplicationStatusApproved
	application.Schedule = schedule

	s.logger.Infof("Application %d approved for user %d: %d installments of %.2f at %.2f%% annual",
		applicationID, application.UserID, len(schedule.Installments),
		schedule.MonthlyPayment, terms.AnnualRate*100)

	go func() {
		ctx := context.Background()
		if err := s.email.SendApplicationApproved(ctx, application.UserID, application, schedule); err != nil {
			s.logger.Warnf("Failed to send approval notification for application %d: %v", applicationID, err)
		}
	}()

	return application, nil
}

// RejectApplication transitions a pending application to rejected
func (s *PayLaterSvc) RejectApplication(ctx context.Context, applicationID int) (*models.PayLaterApplication, error) {
	application, err := s.repos.Application.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	transitioned, err := s.repos.Application.UpdateStatusIf(ctx, applicationID,
		models.ApplicationStatusPending, models.ApplicationStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to reject application %d: %w", applicationID, err)
	}
	if !transitioned {
		return nil, fmt.Errorf("application %d is not pending: %w", applicationID, models.ErrInvalidState)
	}

	application.Status = models.ApplicationStatusRejected

	s.logger.Infof("Application %d rejected for user %d", applicationID, application.UserID)

	return application, nil
}

// GetByUserID gets all pay-later applications for a member
func (s *PayLaterSvc) GetByUserID(ctx context.Context, userID int) ([]*models.PayLaterApplication, error) {
	applications, err := s.repos.Application.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %w", err)
	}

	return applications, nil
}

// GetInstallments gets the installment plan of an application
func (s *PayLaterSvc) GetInstallments(ctx context.Context, applicationID int) ([]*models.Installment, error) {
	installments, err := s.repos.Installment.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get installments: %w", err)
	}

	return installments, nil
}

// ProcessScheduledPayment captures one installment payment through the gateway
// and marks the installment paid. A gateway decline or timeout is an expected
// outcome reported as an unsuccessful PaymentResult; the installment is left
// untouched so the caller can retry.
func (s *PayLaterSvc) ProcessScheduledPayment(ctx context.Context, installmentID int) (*models.PaymentResult, error) {
	installment, err := s.repos.Installment.GetByID(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installment: %w", err)
	}

	switch installment.Status {
	case models.InstallmentStatusPaid:
		return nil, fmt.Errorf("installment %d is already paid: %w", installmentID, models.ErrInvalidState)
	case models.InstallmentStatusCancelled:
		return nil, fmt.Errorf("installment %d is cancelled: %w", installmentID, models.ErrInvalidState)
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.config.Gateway.CaptureTimeout)
	defer cancel()

	transactionRef, err := s.gateway.Capture(captureCtx, installment.TotalAmount, "automatic")
	if err != nil {
		s.logger.Warnf("Payment capture failed for installment %d: %v", installmentID, err)
		return &models.PaymentResult{
			Success: false,
			Status:  installment.Status,
			Message: "Payment processing failed. Please try again.",
		}, nil
	}

	now := time.Now()
	paid, err := s.repos.Installment.MarkPaidIf(ctx, installmentID, now, "automatic", transactionRef)
	if err != nil {
		return nil, fmt.Errorf("failed to mark installment %d paid: %w", installmentID, err)
	}
	if !paid {
		// Lost the race against a concurrent payment or cancellation. The
		// capture went through, so leave a trail for reconciliation.
		s.logger.Warnf("Installment %d changed state during capture, transaction %s needs reconciliation",
			installmentID, transactionRef)
		return nil, fmt.Errorf("installment %d is no longer payable: %w", installmentID, models.ErrInvalidState)
	}

	payment := &models.LoanPayment{
		LoanID:            installment.ApplicationID,
		UserID:            installment.UserID,
		Amount:            installment.TotalAmount,
		PaymentDate:       now,
		PaymentMethod:     "Pay Later",
		InstallmentNumber: installment.Number,
		TransactionRef:    transactionRef,
		IsLate:            now.After(installment.DueDate),
		Status:            models.LoanPaymentStatusCompleted,
	}

	if _, err := s.repos.LoanPayment.Create(ctx, payment); err != nil {
		s.logger.Warnf("Failed to record payment history for installment %d: %v", installmentID, err)
	}

	s.logger.Infof("Installment %d paid: amount=%.2f, transaction=%s",
		installmentID, installment.TotalAmount, transactionRef)

	installment.Status = models.InstallmentStatusPaid
	installment.PaidOn = &now
	installment.TransactionRef = transactionRef

	go func() {
		ctx := context.Background()
		if err := s.email.SendPaymentReceipt(ctx, installment.UserID, installment); err != nil {
			s.logger.Warnf("Failed to send payment receipt for installment %d: %v", installmentID, err)
		}
	}()

	return &models.PaymentResult{
		Success: true,
		Status:  models.InstallmentStatusPaid,
		Message: "Payment processed successfully.",
	}, nil
}

// CancelScheduledPayment cancels an installment that has not been paid yet
func (s *PayLaterSvc) CancelScheduledPayment(ctx context.Context, installmentID int) (*models.PaymentResult, error) {
	installment, err := s.repos.Installment.GetByID(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installment: %w", err)
	}

	if installment.Status == models.InstallmentStatusPaid {
		return nil, fmt.Errorf("installment %d is already paid: %w", installmentID, models.ErrInvalidState)
	}

	cancelled, err := s.repos.Installment.CancelIf(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel installment %d: %w", installmentID, err)
	}
	if !cancelled {
		return nil, fmt.Errorf("installment %d is not pending or scheduled: %w", installmentID, models.ErrInvalidState)
	}

	s.logger.Infof("Installment %d cancelled", installmentID)

	return &models.PaymentResult{
		Success: true,
		Status:  models.InstallmentStatusCancelled,
		Message: "Payment cancelled successfully.",
	}, nil
}

// MarkOverdueInstallments flips pending and scheduled installments past their
// due date to overdue. Invoked by the daily sweep.
func (s *PayLaterSvc) MarkOverdueInstallments(ctx context.Context) (int64, error) {
	count, err := s.repos.Installment.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments: %w", err)
	}

	if count > 0 {
		s.logger.Infof("Marked %d installments overdue", count)
	}

	return count, nil
}

// SendOverdueReminders emails a reminder for every overdue installment
func (s *PayLaterSvc) SendOverdueReminders(ctx context.Context) error {
	overdue, err := s.repos.Installment.GetOverdue(ctx)
	if err != nil {
		return fmt.Errorf("failed to get overdue installments: %w", err)
	}

	for _, installment := range overdue {
		if err := s.email.SendPaymentReminder(ctx, installment.UserID, installment); err != nil {
			s.logger.Warnf("Failed to send reminder for installment %d: %v", installment.ID, err)
		}
	}

	return nil
}
