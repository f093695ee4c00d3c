package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

type AccountType string

const (
	AccountTypeSavings     AccountType = "SAVINGS"
	AccountTypeChecking    AccountType = "CHECKING"
	AccountTypeTermDeposit AccountType = "TERM_DEPOSIT"
)

const (
	AccountNumberMinLength = 5
	AccountNumberMaxLength = 20
	BalanceScale           = 2
)

// Money values must fit this window before any comparison or formatting,
// which would otherwise rescale a value like 1e30000000 into a huge integer.
const (
	maxCoefficientBits = 128
	minMoneyExponent   = -32
	maxMoneyExponent   = 12
)

// MaxBalance is the largest balance an account may hold.
var MaxBalance = decimal.RequireFromString("999999999.99")

var accountNumberPattern = regexp.MustCompile(`^[0-9A-Z-]+$`)

// Account is a member's ledger account. Active=false marks it soft-deleted.
type Account struct {
	ID            string
	OwnerID       string
	AccountNumber string
	Balance       decimal.Decimal
	AccountType   AccountType
	Status        AccountStatus
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeTermDeposit:
		return true
	}
	return false
}

func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusInactive
}

// ValidateAccountNumber returns a problem description, or "" when the number is acceptable.
func ValidateAccountNumber(accountNumber string) string {
	if accountNumber == "" {
		return "accountNumber is required"
	}
	if n := len(accountNumber); n < AccountNumberMinLength || n > AccountNumberMaxLength {
		return "accountNumber must be between 5 and 20 characters"
	}
	if !accountNumberPattern.MatchString(accountNumber) {
		return "accountNumber may only contain digits, uppercase letters and hyphens"
	}
	return ""
}

// ValidateBalance checks a stored balance: non-negative, at most MaxBalance, two fraction digits.
func ValidateBalance(field string, balance decimal.Decimal) string {
	if !withinMagnitude(balance) {
		return field + " is out of range"
	}
	if balance.IsNegative() {
		return field + " cannot be negative"
	}
	if balance.GreaterThan(MaxBalance) {
		return field + " cannot exceed 999999999.99"
	}
	if !hasMoneyScale(balance) {
		return field + " cannot have more than 2 decimal places"
	}
	return ""
}

// ValidateAmount checks a deposit or withdrawal amount.
func ValidateAmount(amount decimal.Decimal) string {
	if !withinMagnitude(amount) {
		return "amount is out of range"
	}
	if !amount.IsPositive() {
		return "amount must be greater than zero"
	}
	if amount.GreaterThan(MaxBalance) {
		return "amount cannot exceed 999999999.99"
	}
	if !hasMoneyScale(amount) {
		return "amount cannot have more than 2 decimal places"
	}
	return ""
}

// withinMagnitude only reads the exponent and coefficient size, never rescaling.
func withinMagnitude(value decimal.Decimal) bool {
	exp := value.Exponent()
	if exp < minMoneyExponent || exp > maxMoneyExponent {
		return false
	}
	return value.Coefficient().BitLen() <= maxCoefficientBits
}

func hasMoneyScale(value decimal.Decimal) bool {
	return value.Equal(value.Truncate(BalanceScale))
}
