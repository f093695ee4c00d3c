package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/coopandes/accounts-ledger/src/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolation          = "23505"
	activeAccountNumberIndex = "ux_accounts_active_account_number"
)

const accountColumns = `id, owner_id, account_number, balance, account_type, status, active, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	id,
	owner_id,
	account_number,
	balance,
	account_type,
	status,
	active
) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
RETURNING ` + accountColumns

	created, err := scanAccount(r.db.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.OwnerID,
		account.AccountNumber,
		account.Balance.StringFixed(domain.BalanceScale),
		account.AccountType,
		account.Status,
		account.Active,
	))
	if err != nil {
		if isActiveNumberViolation(err) {
			return domain.Account{}, domain.ErrConflict
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountId":     account.ID,
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetActiveByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND active`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetActiveByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 AND active`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

// ListActive reads the page and the total from one repeatable-read snapshot.
func (r *AccountRepository) ListActive(ctx context.Context, query domain.AccountQuery) (accounts []domain.Account, total int, err error) {
	const where = `
WHERE active
  AND status = 'ACTIVE'
  AND ($1 = '' OR strpos(account_number, upper($1)) > 0)`

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin list accounts transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`+where, query.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count active accounts: %w", err)
	}

	limit := sql.NullInt64{Int64: int64(query.Limit), Valid: query.Limit > 0}
	rows, err := tx.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts`+where+`
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3`,
		query.Search, limit, max(query.Offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("list active accounts: %w", err)
	}

	accounts, err = scanAccounts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list active accounts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit list accounts transaction: %w", err)
	}
	return accounts, total, nil
}

func (r *AccountRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE owner_id = $1
  AND active
ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts by owner: %w", err)
	}

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("list accounts by owner: %w", err)
	}
	return accounts, nil
}

// ApplyUpdate locks the row, re-checks number uniqueness against other active
// accounts and overwrites number, balance and type in one transaction.
func (r *AccountRepository) ApplyUpdate(ctx context.Context, id string, change domain.AccountChange) (updated domain.Account, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("begin update account transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var currentNumber string
	err = tx.QueryRowContext(ctx, `SELECT account_number FROM accounts WHERE id = $1 AND active FOR UPDATE`, id).Scan(&currentNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("lock account for update: %w", err)
	}

	if change.AccountNumber != currentNumber {
		var taken bool
		const exists = `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1 AND active AND id <> $2)`
		if err = tx.QueryRowContext(ctx, exists, change.AccountNumber, id).Scan(&taken); err != nil {
			return domain.Account{}, fmt.Errorf("check account number uniqueness: %w", err)
		}
		if taken {
			return domain.Account{}, domain.ErrConflict
		}
	}

	const query = `
UPDATE accounts
SET account_number = $2,
    balance = $3::numeric,
    account_type = $4,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

	updated, err = scanAccount(tx.QueryRowContext(ctx, query, id, change.AccountNumber, change.Balance.StringFixed(domain.BalanceScale), change.AccountType))
	if err != nil {
		if isActiveNumberViolation(err) {
			return domain.Account{}, domain.ErrConflict
		}
		logger.Error("account repository update failed", err, logger.Fields{"accountId": id})
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isActiveNumberViolation(err) {
			return domain.Account{}, domain.ErrConflict
		}
		return domain.Account{}, fmt.Errorf("commit update account transaction: %w", err)
	}

	return updated, nil
}

func (r *AccountRepository) SoftDelete(ctx context.Context, id string) (domain.Account, error) {
	const query = `
UPDATE accounts
SET active = FALSE,
    updated_at = NOW()
WHERE id = $1
  AND active
RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository soft delete failed", err, logger.Fields{"accountId": id})
		return domain.Account{}, fmt.Errorf("soft delete account: %w", err)
	}

	return account, nil
}

// ApplyDeposit adds amount in a single conditional UPDATE so concurrent
// mutations of the same row serialise on the row lock.
func (r *AccountRepository) ApplyDeposit(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	const query = `
UPDATE accounts
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND active
  AND balance + $2::numeric <= $3::numeric
RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id, amount.String(), domain.MaxBalance.String()))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("account repository deposit failed", err, logger.Fields{
			"accountId": id,
			"amount":    amount,
		})
		return domain.Account{}, fmt.Errorf("deposit funds: %w", err)
	}

	if _, getErr := r.GetActiveByID(ctx, id); getErr != nil {
		return domain.Account{}, getErr
	}
	return domain.Account{}, domain.NewValidationError("deposit would exceed the maximum balance of 999999999.99")
}

// ApplyWithdrawal subtracts amount only while balance >= amount, in one statement.
func (r *AccountRepository) ApplyWithdrawal(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	const query = `
UPDATE accounts
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND active
  AND balance >= $2::numeric
RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id, amount.String()))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("account repository withdraw failed", err, logger.Fields{
			"accountId": id,
			"amount":    amount,
		})
		return domain.Account{}, fmt.Errorf("withdraw funds: %w", err)
	}

	if _, getErr := r.GetActiveByID(ctx, id); getErr != nil {
		return domain.Account{}, getErr
	}
	return domain.Account{}, domain.ErrInsufficientFunds
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.AccountNumber,
		&account.Balance,
		&account.AccountType,
		&account.Status,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func isActiveNumberViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == activeAccountNumberIndex
	}
	return false
}

var _ domain.AccountRepository = (*AccountRepository)(nil)
