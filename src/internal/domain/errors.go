package domain

import (
	"errors"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("Record not found")
	ErrConflict          = errors.New("Account number already in use")
	ErrInsufficientFunds = errors.New("Insufficient funds")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError carries every problem found in one request. It matches ErrValidation.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Problems returns the individual validation messages of err, or nil.
func Problems(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Problems
	}
	return nil
}
