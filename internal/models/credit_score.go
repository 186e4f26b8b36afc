package models

import (
	"fmt"
	"math"
	"time"
)

// MinEligibleScore is the minimum credit score for pay-later eligibility
const MinEligibleScore = 580

// Weights of the individual factors in the composite score
const (
	weightSavings     = 0.30
	weightRepayment   = 0.40
	weightConsistency = 0.20
	weightMembership  = 0.10
)

// CreditScoreFactors holds the behavioral sub-scores a credit score is built
// from. The three history factors are in the 0-100 range; membership duration
// is in whole months and normalized only when the composite is computed.
type CreditScoreFactors struct {
	SavingsHistory         int `json:"savings_history"`
	LoanRepaymentHistory   int `json:"loan_repayment_history"`
	TransactionConsistency int `json:"transaction_consistency"`
	MembershipMonths       int `json:"membership_months"`
}

// CreditScoreResult is the outcome of one scoring run for a member
type CreditScoreResult struct {
	UserID       int                `json:"user_id"`
	Score        int                `json:"score"`
	CreditLimit  float64            `json:"credit_limit"`
	PaymentTerms []int              `json:"payment_terms"`
	Factors      CreditScoreFactors `json:"factors"`
	ComputedAt   time.Time          `json:"computed_at"`
}

// EligibilityResult is the pay-later eligibility decision for a member
type EligibilityResult struct {
	Eligible     bool    `json:"eligible"`
	Score        int     `json:"score"`
	CreditLimit  float64 `json:"credit_limit"`
	PaymentTerms []int   `json:"payment_terms"`
}

// CalculateSavingsScore scores a member's savings history. Total deposited
// amount contributes up to 80 points, deposit count up to 20.
func CalculateSavingsScore(transactions []*SavingsTransaction) int {
	var totalDeposits float64
	var depositCount int

	for _, tx := range transactions {
		if tx.Type == SavingsTypeDeposit {
			totalDeposits += tx.Amount
			depositCount++
		}
	}

	if depositCount == 0 {
		return 0
	}

	score := math.Min(totalDeposits/1000, 80) + math.Min(float64(depositCount)*2, 20)

	return int(math.Min(math.Round(score), 100))
}

// CalculateRepaymentScore scores a member's loan repayment reliability. A
// member with no repayment history gets a neutral 50 rather than a penalty.
func CalculateRepaymentScore(payments []*LoanPayment) int {
	if len(payments) == 0 {
		return 50
	}

	onTime := 0
	for _, payment := range payments {
		if !payment.IsLate {
			onTime++
		}
	}

	return int(math.Round(float64(onTime) / float64(len(payments)) * 100))
}

// CalculateConsistencyScore measures how evenly savings activity is spread
// across calendar months, using the coefficient of variation of monthly
// transaction counts. A single active month gives a neutral 50.
func CalculateConsistencyScore(transactions []*SavingsTransaction) int {
	if len(transactions) == 0 {
		return 0
	}

	monthly := groupTransactionsByMonth(transactions)
	if len(monthly) <= 1 {
		return 50
	}

	var sum float64
	for _, count := range monthly {
		sum += float64(count)
	}
	mean := sum / float64(len(monthly))

	var variance float64
	for _, count := range monthly {
		variance += math.Pow(float64(count)-mean, 2)
	}
	variance /= float64(len(monthly))
	stdDev := math.Sqrt(variance)

	score := 100 - math.Min(stdDev/mean*100, 50)

	return int(math.Min(math.Round(score), 100))
}

// groupTransactionsByMonth counts transactions per calendar month
func groupTransactionsByMonth(transactions []*SavingsTransaction) map[string]int {
	monthly := make(map[string]int)

	for _, tx := range transactions {
		key := fmt.Sprintf("%d-%d", tx.CreatedAt.Year(), int(tx.CreatedAt.Month()))
		monthly[key]++
	}

	return monthly
}

// ComposeScore combines the factors into a credit score on the 300-850 scale.
// Membership duration is normalized against a 24-month horizon before weighting.
func ComposeScore(factors CreditScoreFactors) int {
	membershipScore := math.Min(float64(factors.MembershipMonths)/24, 1) * 100

	weighted := float64(factors.SavingsHistory)*weightSavings +
		float64(factors.LoanRepaymentHistory)*weightRepayment +
		float64(factors.TransactionConsistency)*weightConsistency +
		membershipScore*weightMembership

	return int(math.Round(300 + weighted/100*550))
}

// DetermineCreditLimit derives the pay-later limit from the score bucket,
// scaled up by the savings factor (1.0x to 2.0x).
func DetermineCreditLimit(score int, factors CreditScoreFactors) float64 {
	var baseLimit float64

	switch {
	case score < 580:
		baseLimit = 0
	case score < 670:
		baseLimit = 500
	case score < 740:
		baseLimit = 1000
	case score < 800:
		baseLimit = 2000
	default:
		baseLimit = 5000
	}

	multiplier := 1 + float64(factors.SavingsHistory)/100

	return math.Round(baseLimit * multiplier)
}

// DeterminePaymentTerms returns the installment terms (in months) available at
// a given score.
func DeterminePaymentTerms(score int) []int {
	switch {
	case score < 580:
		return []int{}
	case score < 670:
		return []int{1}
	case score < 740:
		return []int{1, 3}
	default:
		return []int{1, 3, 6}
	}
}
