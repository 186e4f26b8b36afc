package models

import (
	"time"
)

// User represents a cooperative member
type User struct {
	ID                   int        `json:"id" db:"id"`
	MemberNumber         string     `json:"member_number" db:"member_number"`
	Email                string     `json:"email" db:"email"`
	FirstName            string     `json:"first_name,omitempty" db:"first_name"`
	LastName             string     `json:"last_name,omitempty" db:"last_name"`
	CreditScore          *int       `json:"credit_score,omitempty" db:"credit_score"`
	CreditLimit          *float64   `json:"credit_limit,omitempty" db:"credit_limit"`
	CreditScoreUpdatedAt *time.Time `json:"credit_score_updated_at,omitempty" db:"credit_score_updated_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// MembershipMonths returns the number of whole calendar months between the
// member's registration date and now.
func (u *User) MembershipMonths(now time.Time) int {
	months := (now.Year()-u.CreatedAt.Year())*12 + int(now.Month()) - int(u.CreatedAt.Month())
	if months < 0 {
		return 0
	}
	return months
}
