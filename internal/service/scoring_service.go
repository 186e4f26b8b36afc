package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/repository"
)

// ScoringSvc is an implementation of the service.ScoringService interface
type ScoringSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
}

// NewScoringService creates a new ScoringSvc
func NewScoringService(deps Dependencies) *ScoringSvc {
	return &ScoringSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
	}
}

// Calculate computes a member's credit score from savings history, loan
// repayment history, and membership duration, then persists the result onto
// the member record. Persistence failure is logged but does not fail the
// calculation, since the reads already succeeded.
func (s *ScoringSvc) Calculate(ctx context.Context, userID int) (*models.CreditScoreResult, error) {
	savings, err := s.repos.Savings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load savings history for user %d: %w", userID, err)
	}

	payments, err := s.repos.LoanPayment.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan payments for user %d: %w", userID, err)
	}

	now := time.Now()

	// A member with no user record still gets a valid score; membership
	// duration just contributes nothing.
	membershipMonths := 0
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		s.logger.Warnf("User %d has no record, scoring with zero membership duration", userID)
	} else {
		membershipMonths = user.MembershipMonths(now)
	}

	factors := models.CreditScoreFactors{
		SavingsHistory:         models.CalculateSavingsScore(savings),
		LoanRepaymentHistory:   models.CalculateRepaymentScore(payments),
		TransactionConsistency: models.CalculateConsistencyScore(savings),
		MembershipMonths:       membershipMonths,
	}

	score := models.ComposeScore(factors)
	creditLimit := models.DetermineCreditLimit(score, factors)
	paymentTerms := models.DeterminePaymentTerms(score)

	if err := s.repos.User.UpdateCreditScore(ctx, userID, score, creditLimit, now); err != nil {
		s.logger.Warnf("Failed to persist credit score for user %d: %v", userID, err)
	}

	s.logger.Infof("Credit score computed for user %d: score=%d, limit=%.2f, factors=%+v",
		userID, score, creditLimit, factors)

	return &models.CreditScoreResult{
		UserID:       userID,
		Score:        score,
		CreditLimit:  creditLimit,
		PaymentTerms: paymentTerms,
		Factors:      factors,
		ComputedAt:   now,
	}, nil
}
