package models

import (
	"strings"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type CreateAccountRequest struct {
	OwnerID       string           `json:"ownerId"`
	AccountNumber string           `json:"accountNumber"`
	Balance       *decimal.Decimal `json:"balance"`
	AccountType   string           `json:"accountType"`
}

// Normalize trims and strips markup from every string field.
func (r *CreateAccountRequest) Normalize() {
	r.OwnerID = Clean(r.OwnerID)
	r.AccountNumber = Clean(r.AccountNumber)
	r.AccountType = strings.ToUpper(Clean(r.AccountType))
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OwnerID) == "" {
		errs = append(errs, "ownerId is required")
	} else if _, err := uuid.Parse(strings.TrimSpace(r.OwnerID)); err != nil {
		errs = append(errs, "ownerId must be a valid UUID")
	}

	errs = appendProblem(errs, domain.ValidateAccountNumber(strings.TrimSpace(r.AccountNumber)))

	if r.Balance == nil {
		errs = append(errs, "balance is required")
	} else {
		errs = appendProblem(errs, domain.ValidateBalance("balance", *r.Balance))
	}

	errs = appendProblem(errs, validateAccountType(r.AccountType))

	if len(errs) > 0 {
		return domain.NewValidationError(errs...)
	}
	return nil
}

// UpdateAccountRequest overwrites number, balance and type. The owner is
// immutable; ownerId is accepted so clients can send the record back unchanged.
type UpdateAccountRequest struct {
	OwnerID       string           `json:"ownerId,omitempty"`
	AccountNumber string           `json:"accountNumber"`
	Balance       *decimal.Decimal `json:"balance"`
	AccountType   string           `json:"accountType"`
}

func (r *UpdateAccountRequest) Normalize() {
	r.OwnerID = Clean(r.OwnerID)
	r.AccountNumber = Clean(r.AccountNumber)
	r.AccountType = strings.ToUpper(Clean(r.AccountType))
}

func (r UpdateAccountRequest) Validate() error {
	var errs []string

	errs = appendProblem(errs, domain.ValidateAccountNumber(strings.TrimSpace(r.AccountNumber)))

	if r.Balance == nil {
		errs = append(errs, "balance is required")
	} else {
		errs = appendProblem(errs, domain.ValidateBalance("balance", *r.Balance))
	}

	errs = appendProblem(errs, validateAccountType(r.AccountType))

	if len(errs) > 0 {
		return domain.NewValidationError(errs...)
	}
	return nil
}

type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (r AmountRequest) Validate() error {
	if r.Amount == nil {
		return domain.NewValidationError("amount is required")
	}
	if problem := domain.ValidateAmount(*r.Amount); problem != "" {
		return domain.NewValidationError(problem)
	}
	return nil
}

type ListAccountsRequest struct {
	Page   int    `json:"page"`
	Size   int    `json:"size"`
	Search string `json:"search,omitempty"`
}

// Normalize applies paging defaults: page is 0-based, size defaults to 10 and is capped at 100.
func (r *ListAccountsRequest) Normalize() {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	r.Search = strings.ToUpper(Clean(r.Search))
}

type AccountResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	AccountNumber string `json:"accountNumber"`
	Balance       string `json:"balance"`
	AccountType   string `json:"accountType"`
	Status        string `json:"status"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		OwnerID:       account.OwnerID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance.StringFixed(domain.BalanceScale),
		AccountType:   string(account.AccountType),
		Status:        string(account.Status),
		Active:        account.Active,
		CreatedAt:     account.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     account.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func NewAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}

func validateAccountType(raw string) string {
	accountType := strings.ToUpper(strings.TrimSpace(raw))
	if accountType == "" {
		return "accountType is required"
	}
	if !domain.AccountType(accountType).Valid() {
		return "accountType must be one of SAVINGS, CHECKING, TERM_DEPOSIT"
	}
	return ""
}

func appendProblem(errs []string, problem string) []string {
	if problem == "" {
		return errs
	}
	return append(errs, problem)
}

type DeleteAccountResponse struct {
	ID string `json:"id"`
}
