package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/http/models"
	"github.com/coopandes/accounts-ledger/src/internal/commons"
	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/coopandes/accounts-ledger/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// publishTimeout bounds how long a committed mutation waits on its notification.
const publishTimeout = 2 * time.Second

// AccountService is the account ledger: it validates every request, then
// applies exactly one atomic single-account mutation through the repository.
type AccountService struct {
	accountRepo domain.AccountRepository
	publisher   domain.AccountEventPublisher
	now         func() time.Time
}

func NewAccountService(accountRepo domain.AccountRepository, publisher domain.AccountEventPublisher) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return failure[models.AccountResponse]("create account", err), err
	}
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	existing, err := s.accountRepo.GetActiveByAccountNumber(ctx, req.AccountNumber)
	switch {
	case err == nil:
		logger.Info("account service create account number in use", logger.Fields{
			"accountNumber":     req.AccountNumber,
			"existingAccountId": existing.ID,
		})
		return failure[models.AccountResponse]("create account", domain.ErrConflict), domain.ErrConflict
	case !errors.Is(err, domain.ErrRecordNotFound):
		logger.Error("account service create account uniqueness check failed", err, logger.Fields{
			"accountNumber": req.AccountNumber,
		})
		return failure[models.AccountResponse]("create account", err), err
	}

	ownerID, _ := canonicalID(req.OwnerID)
	account := domain.Account{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance.Round(domain.BalanceScale),
		AccountType:   domain.AccountType(req.AccountType),
		Status:        domain.AccountStatusActive,
		Active:        true,
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		logger.Error("account service create account repository failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
			"ownerId":       account.OwnerID,
		})
		return failure[models.AccountResponse]("create account", err), err
	}

	s.publish(ctx, domain.AccountEventCreated, created)
	logger.Info("account service create account success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
		"ownerId":       created.OwnerID,
	})

	return commons.SuccessResponse("account created successfully", models.NewAccountResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error) {
	accountID, ok := canonicalID(id)
	if !ok {
		return failure[models.AccountResponse]("get account", domain.ErrRecordNotFound), domain.ErrRecordNotFound
	}

	account, err := s.accountRepo.GetActiveByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			logger.Error("account service get account failed", err, logger.Fields{"accountId": accountID})
		}
		return failure[models.AccountResponse]("get account", err), err
	}

	return commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account)), nil
}

// ListAccounts returns one page of active accounts with status ACTIVE, newest first.
func (s *AccountService) ListAccounts(ctx context.Context, req models.ListAccountsRequest) (commons.Response[commons.Page[models.AccountResponse]], error) {
	req.Normalize()

	accounts, total, err := s.accountRepo.ListActive(ctx, domain.AccountQuery{
		Search: req.Search,
		Offset: req.Page * req.Size,
		Limit:  req.Size,
	})
	if err != nil {
		logger.Error("account service list accounts failed", err, logger.Fields{
			"page": req.Page,
			"size": req.Size,
		})
		return failure[commons.Page[models.AccountResponse]]("list accounts", err), err
	}

	page := commons.NewPage(models.NewAccountResponses(accounts), req.Page, req.Size, total)
	return commons.SuccessResponse("accounts fetched successfully", page), nil
}

// ListAccountsByOwner returns the owner's active accounts, newest first. An
// owner id that is not a UUID cannot own accounts and yields an empty list.
func (s *AccountService) ListAccountsByOwner(ctx context.Context, ownerID string) (commons.Response[[]models.AccountResponse], error) {
	owner, ok := canonicalID(models.Clean(ownerID))
	if !ok {
		return commons.SuccessResponse("accounts fetched successfully", []models.AccountResponse{}), nil
	}

	accounts, err := s.accountRepo.ListActiveByOwner(ctx, owner)
	if err != nil {
		logger.Error("account service list accounts by owner failed", err, logger.Fields{"ownerId": owner})
		return failure[[]models.AccountResponse]("list accounts", err), err
	}

	return commons.SuccessResponse("accounts fetched successfully", models.NewAccountResponses(accounts)), nil
}

// UpdateAccount is the administrative overwrite of number, balance and type.
// It never applies deposit/withdraw semantics to the balance.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error) {
	accountID, ok := canonicalID(id)
	if !ok {
		return failure[models.AccountResponse]("update account", domain.ErrRecordNotFound), domain.ErrRecordNotFound
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return failure[models.AccountResponse]("update account", err), err
	}
	logger.Info("account service update account request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	current, err := s.accountRepo.GetActiveByID(ctx, accountID)
	if err != nil {
		return failure[models.AccountResponse]("update account", err), err
	}

	if req.OwnerID != "" {
		if owner, ok := canonicalID(req.OwnerID); !ok || owner != current.OwnerID {
			err := domain.NewValidationError("ownerId cannot be changed")
			return failure[models.AccountResponse]("update account", err), err
		}
	}

	if req.AccountNumber != current.AccountNumber {
		other, err := s.accountRepo.GetActiveByAccountNumber(ctx, req.AccountNumber)
		switch {
		case err == nil && other.ID != accountID:
			return failure[models.AccountResponse]("update account", domain.ErrConflict), domain.ErrConflict
		case err != nil && !errors.Is(err, domain.ErrRecordNotFound):
			logger.Error("account service update account uniqueness check failed", err, logger.Fields{"accountId": accountID})
			return failure[models.AccountResponse]("update account", err), err
		}
	}

	updated, err := s.accountRepo.ApplyUpdate(ctx, accountID, domain.AccountChange{
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance.Round(domain.BalanceScale),
		AccountType:   domain.AccountType(req.AccountType),
	})
	if err != nil {
		if !isDomainError(err) {
			logger.Error("account service update account repository failed", err, logger.Fields{"accountId": accountID})
		}
		return failure[models.AccountResponse]("update account", err), err
	}

	s.publish(ctx, domain.AccountEventUpdated, updated)
	logger.Info("account service update account success", logger.Fields{
		"accountId":       updated.ID,
		"accountNumber":   updated.AccountNumber,
		"previousBalance": current.Balance.StringFixed(domain.BalanceScale),
		"balance":         updated.Balance.StringFixed(domain.BalanceScale),
	})

	return commons.SuccessResponse("account updated successfully", models.NewAccountResponse(updated)), nil
}

// DeleteAccount soft-deletes the account. Deleting an already deleted account reports not found.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) (commons.Response[models.DeleteAccountResponse], error) {
	accountID, ok := canonicalID(id)
	if !ok {
		return failure[models.DeleteAccountResponse]("delete account", domain.ErrRecordNotFound), domain.ErrRecordNotFound
	}

	deleted, err := s.accountRepo.SoftDelete(ctx, accountID)
	if err != nil {
		if !isDomainError(err) {
			logger.Error("account service delete account failed", err, logger.Fields{"accountId": accountID})
		}
		return failure[models.DeleteAccountResponse]("delete account", err), err
	}

	s.publish(ctx, domain.AccountEventDeleted, deleted)
	logger.Info("account service delete account success", logger.Fields{
		"accountId":     deleted.ID,
		"accountNumber": deleted.AccountNumber,
	})

	return commons.SuccessResponse("account deleted successfully", models.DeleteAccountResponse{ID: deleted.ID}), nil
}

func (s *AccountService) Deposit(ctx context.Context, id string, req models.AmountRequest) (commons.Response[models.AccountResponse], error) {
	return s.applyMovement(ctx, depositMovement, id, req, s.accountRepo.ApplyDeposit)
}

// Withdraw fails with domain.ErrInsufficientFunds, leaving the balance untouched,
// when the amount exceeds the current balance.
func (s *AccountService) Withdraw(ctx context.Context, id string, req models.AmountRequest) (commons.Response[models.AccountResponse], error) {
	return s.applyMovement(ctx, withdrawalMovement, id, req, s.accountRepo.ApplyWithdrawal)
}

type movementKind struct {
	op      string
	success string
	event   domain.AccountEventType
}

var (
	depositMovement    = movementKind{op: "deposit funds", success: "funds deposited successfully", event: domain.AccountEventDeposited}
	withdrawalMovement = movementKind{op: "withdraw funds", success: "funds withdrawn successfully", event: domain.AccountEventWithdrawn}
)

type applyFunc func(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error)

func (s *AccountService) applyMovement(
	ctx context.Context,
	kind movementKind,
	id string,
	req models.AmountRequest,
	apply applyFunc,
) (commons.Response[models.AccountResponse], error) {
	op := kind.op
	if err := req.Validate(); err != nil {
		return failure[models.AccountResponse](op, err), err
	}

	accountID, ok := canonicalID(id)
	if !ok {
		return failure[models.AccountResponse](op, domain.ErrRecordNotFound), domain.ErrRecordNotFound
	}

	fields := logger.Fields{"accountId": accountID, "amount": req.Amount.StringFixed(domain.BalanceScale)}
	logger.Info("account service "+op+" request", fields)

	account, err := apply(ctx, accountID, *req.Amount)
	if err != nil {
		if isDomainError(err) {
			logger.Info("account service "+op+" rejected", logger.With(fields, logger.Fields{"reason": err.Error()}))
		} else {
			logger.Error("account service "+op+" failed", err, fields)
		}
		return failure[models.AccountResponse](op, err), err
	}

	s.publish(ctx, kind.event, account)
	logger.Info("account service "+op+" success", logger.Fields{
		"accountId": account.ID,
		"amount":    req.Amount.StringFixed(domain.BalanceScale),
		"balance":   account.Balance.StringFixed(domain.BalanceScale),
	})

	return commons.SuccessResponse(kind.success, models.NewAccountResponse(account)), nil
}

// publish notifies subscribers after a committed mutation. Failures are logged
// and never undo or fail the ledger operation.
func (s *AccountService) publish(ctx context.Context, eventType domain.AccountEventType, account domain.Account) {
	if s.publisher == nil {
		return
	}

	event := domain.AccountEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		AccountID:     account.ID,
		OwnerID:       account.OwnerID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		OccurredAt:    s.now(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, event); err != nil {
		logger.Error("account service publish event failed", err, logger.Fields{
			"eventId":   event.EventID,
			"type":      event.Type,
			"accountId": event.AccountID,
		})
	}
}

func failure[T any](op string, err error) commons.Response[T] {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return commons.ErrorResponse[T]("validation failed", domain.Problems(err)...)
	case errors.Is(err, domain.ErrRecordNotFound):
		return commons.ErrorResponse[T]("Account not found")
	case errors.Is(err, domain.ErrConflict):
		return commons.ErrorResponse[T]("Account number already in use", "an active account already uses this accountNumber")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return commons.ErrorResponse[T]("Insufficient funds", "balance is lower than the requested amount")
	default:
		return commons.ErrorResponse[T]("failed to "+op, "Unable to "+op+" right now")
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrRecordNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInsufficientFunds)
}

// canonicalID returns the lowercase hyphenated form of a UUID.
func canonicalID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
