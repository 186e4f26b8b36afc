package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/repository"
)

// ScoringService defines methods for the credit scoring service
type ScoringService interface {
	Calculate(ctx context.Context, userID int) (*models.CreditScoreResult, error)
}

// PayLaterService defines methods for the pay-later workflow
type PayLaterService interface {
	CheckEligibility(ctx context.Context, userID int) (*models.EligibilityResult, error)
	CreateApplication(ctx context.Context, req *models.PayLaterRequest) (*models.PayLaterApplication, error)
	ApproveApplication(ctx context.Context, applicationID int) (*models.PayLaterApplication, error)
	RejectApplication(ctx context.Context, applicationID int) (*models.PayLaterApplication, error)
	GetByUserID(ctx context.Context, userID int) ([]*models.PayLaterApplication, error)
	GetInstallments(ctx context.Context, applicationID int) ([]*models.Installment, error)
	ProcessScheduledPayment(ctx context.Context, installmentID int) (*models.PaymentResult, error)
	CancelScheduledPayment(ctx context.Context, installmentID int) (*models.PaymentResult, error)
	MarkOverdueInstallments(ctx context.Context) (int64, error)
	SendOverdueReminders(ctx context.Context) error
}

// EmailService defines methods for email notifications
type EmailService interface {
	SendApplicationApproved(ctx context.Context, userID int, application *models.PayLaterApplication, schedule *models.PaymentSchedule) error
	SendPaymentReceipt(ctx context.Context, userID int, installment *models.Installment) error
	SendPaymentReminder(ctx context.Context, userID int, installment *models.Installment) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos   *repository.Repository
	Logger  *logrus.Logger
	Config  *configs.Config
	Gateway PaymentGateway
}

// Service is a composition of all services
type Service struct {
	Scoring  ScoringService
	PayLater PayLaterService
	Email    EmailService
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	if deps.Gateway == nil {
		deps.Gateway = NewSimulatedGateway(deps.Config.Gateway.FailureRate)
	}

	return &Service{
		Scoring:  NewScoringService(deps),
		PayLater: NewPayLaterService(deps),
		Email:    NewEmailService(deps),
	}
}
