package service_interfaces

import (
	"context"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/models"
	"github.com/coopandes/accounts-ledger/src/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context, req models.ListAccountsRequest) (commons.Response[commons.Page[models.AccountResponse]], error)
	ListAccountsByOwner(ctx context.Context, ownerID string) (commons.Response[[]models.AccountResponse], error)
	UpdateAccount(ctx context.Context, id string, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error)
	DeleteAccount(ctx context.Context, id string) (commons.Response[models.DeleteAccountResponse], error)
	Deposit(ctx context.Context, id string, req models.AmountRequest) (commons.Response[models.AccountResponse], error)
	Withdraw(ctx context.Context, id string, req models.AmountRequest) (commons.Response[models.AccountResponse], error)
}
