package models

import "errors"

// Sentinel errors shared across services and handlers. Callers match them
// with errors.Is after unwrapping.
var (
	ErrInvalidLoanTerms = errors.New("invalid loan terms")
	ErrNotEligible      = errors.New("not eligible for pay later")
	ErrLimitExceeded    = errors.New("amount exceeds credit limit")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("operation not valid in current state")
)
