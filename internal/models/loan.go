package models

import (
	"fmt"
	"math"
	"time"
)

// InstallmentStatus defines the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"
	InstallmentStatusScheduled InstallmentStatus = "SCHEDULED"
	InstallmentStatusPaid      InstallmentStatus = "PAID"
	InstallmentStatusOverdue   InstallmentStatus = "OVERDUE"
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)

// LoanTerms are the immutable inputs to schedule generation. AnnualRate is a
// fraction (0.12 for 12%), not a percentage.
type LoanTerms struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	TermMonths int     `json:"term_months"`
}

// Validate checks the amortization preconditions
func (t LoanTerms) Validate() error {
	if t.Principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %f", ErrInvalidLoanTerms, t.Principal)
	}
	if t.AnnualRate < 0 || t.AnnualRate >= 1 {
		return fmt.Errorf("%w: annual rate must be in [0, 1), got %f", ErrInvalidLoanTerms, t.AnnualRate)
	}
	if t.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least 1 month, got %d", ErrInvalidLoanTerms, t.TermMonths)
	}
	return nil
}

// Installment represents one scheduled payment within a plan
type Installment struct {
	ID              int               `json:"id" db:"id"`
	ApplicationID   int               `json:"application_id" db:"application_id"`
	UserID          int               `json:"user_id" db:"user_id"`
	Number          int               `json:"number" db:"installment_number"`
	DueDate         time.Time         `json:"due_date" db:"due_date"`
	TotalAmount     float64           `json:"total_amount" db:"total_amount"`
	PrincipalAmount float64           `json:"principal_amount" db:"principal_amount"`
	InterestAmount  float64           `json:"interest_amount" db:"interest_amount"`
	Status          InstallmentStatus `json:"status" db:"status"`
	PaidOn          *time.Time        `json:"paid_on,omitempty" db:"paid_on"`
	PaymentMethod   string            `json:"payment_method,omitempty" db:"payment_method"`
	TransactionRef  string            `json:"transaction_ref,omitempty" db:"transaction_ref"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// PaymentSchedule is the full installment plan for an approved application
type PaymentSchedule struct {
	Installments     []*Installment `json:"installments"`
	MonthlyPayment   float64        `json:"monthly_payment"`
	InterestRate     float64        `json:"interest_rate"`
	TotalPayments    float64        `json:"total_payments"`
	TotalInterest    float64        `json:"total_interest"`
	FirstPaymentDate time.Time      `json:"first_payment_date"`
	LastPaymentDate  time.Time      `json:"last_payment_date"`
}

// CalculateMonthlyPayment calculates the fixed monthly payment for an annuity
// loan. The rate is annual, expressed as a fraction.
func CalculateMonthlyPayment(principal float64, annualRate float64, termMonths int) float64 {
	monthlyRate := annualRate / 12

	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}

	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(termMonths)))
}

// ComputeSchedule generates a fixed-payment amortization schedule. Due dates
// keep the day of month of startDate: installment i falls i calendar months
// after the start date. The final installment absorbs any rounding residual so
// the principal portions sum to the principal exactly.
func ComputeSchedule(terms LoanTerms, startDate time.Time) (*PaymentSchedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	monthlyRate := terms.AnnualRate / 12
	monthlyPayment := CalculateMonthlyPayment(terms.Principal, terms.AnnualRate, terms.TermMonths)

	installments := make([]*Installment, 0, terms.TermMonths)
	remainingPrincipal := terms.Principal
	allocatedPrincipal := 0.0
	dueDate := startDate

	for i := 1; i <= terms.TermMonths; i++ {
		dueDate = addOneMonth(dueDate)

		interestAmount := remainingPrincipal * monthlyRate

		var principalAmount float64
		if i == terms.TermMonths {
			// Last payment - absorb the rounding residual so the loan is fully paid
			principalAmount = terms.Principal - allocatedPrincipal
		} else {
			principalAmount = roundToTwoDecimal(monthlyPayment - interestAmount)
		}

		if principalAmount < 0 {
			principalAmount = 0
		}

		remainingPrincipal -= principalAmount
		allocatedPrincipal += principalAmount

		installments = append(installments, &Installment{
			Number:          i,
			DueDate:         dueDate,
			PrincipalAmount: roundToTwoDecimal(principalAmount),
			InterestAmount:  roundToTwoDecimal(interestAmount),
			TotalAmount:     roundToTwoDecimal(principalAmount + interestAmount),
			Status:          InstallmentStatusPending,
		})
	}

	totalPayments := roundToTwoDecimal(monthlyPayment * float64(terms.TermMonths))

	return &PaymentSchedule{
		Installments:     installments,
		MonthlyPayment:   roundToTwoDecimal(monthlyPayment),
		InterestRate:     terms.AnnualRate,
		TotalPayments:    totalPayments,
		TotalInterest:    roundToTwoDecimal(totalPayments - terms.Principal),
		FirstPaymentDate: installments[0].DueDate,
		LastPaymentDate:  installments[len(installments)-1].DueDate,
	}, nil
}

// Round to two decimal places
func roundToTwoDecimal(value float64) float64 {
	return math.Round(value*100) / 100
}

// Add one month to a date
func addOneMonth(date time.Time) time.Time {
	return date.AddDate(0, 1, 0)
}
