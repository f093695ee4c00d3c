package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountQuery narrows a listing of active accounts. Limit <= 0 means no limit.
type AccountQuery struct {
	Search string
	Offset int
	Limit  int
}

// AccountChange is the administrative overwrite applied by an update.
type AccountChange struct {
	AccountNumber string
	Balance       decimal.Decimal
	AccountType   AccountType
}

// AccountRepository persists accounts. Every mutating method is a single atomic
// unit against the store and only ever touches active records.
type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetActiveByID(ctx context.Context, id string) (Account, error)
	GetActiveByAccountNumber(ctx context.Context, accountNumber string) (Account, error)
	ListActive(ctx context.Context, query AccountQuery) ([]Account, int, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]Account, error)
	ApplyUpdate(ctx context.Context, id string, change AccountChange) (Account, error)
	SoftDelete(ctx context.Context, id string) (Account, error)
	ApplyDeposit(ctx context.Context, id string, amount decimal.Decimal) (Account, error)
	ApplyWithdrawal(ctx context.Context, id string, amount decimal.Decimal) (Account, error)
}
