package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountRepository keeps accounts in process memory. Every method runs under
// one lock, so each read-check-write sequence is atomic.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*record
	seq      int64
	now      func() time.Time
}

type record struct {
	account domain.Account
	seq     int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*record),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source. Intended for tests.
func (r *AccountRepository) WithClock(now func() time.Time) *AccountRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return domain.Account{}, fmt.Errorf("create account: id %q already exists", account.ID)
	}
	if r.activeNumberTaken(account.AccountNumber, "") {
		return domain.Account{}, domain.ErrConflict
	}

	now := r.now()
	account.Balance = account.Balance.Round(domain.BalanceScale)
	account.CreatedAt = now
	account.UpdatedAt = now

	r.seq++
	r.accounts[account.ID] = &record{account: account, seq: r.seq}
	return account, nil
}

func (r *AccountRepository) GetActiveByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.active(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return rec.account, nil
}

func (r *AccountRepository) GetActiveByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.accounts {
		if rec.account.Active && rec.account.AccountNumber == accountNumber {
			return rec.account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (r *AccountRepository) ListActive(_ context.Context, query domain.AccountQuery) ([]domain.Account, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToUpper(strings.TrimSpace(query.Search))
	matched := r.collect(func(a domain.Account) bool {
		return a.Status == domain.AccountStatusActive &&
			(search == "" || strings.Contains(a.AccountNumber, search))
	})

	total := len(matched)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *AccountRepository) ListActiveByOwner(_ context.Context, ownerID string) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(a domain.Account) bool {
		return a.OwnerID == ownerID
	}), nil
}

func (r *AccountRepository) ApplyUpdate(_ context.Context, id string, change domain.AccountChange) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.active(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if change.AccountNumber != rec.account.AccountNumber && r.activeNumberTaken(change.AccountNumber, id) {
		return domain.Account{}, domain.ErrConflict
	}

	rec.account.AccountNumber = change.AccountNumber
	rec.account.Balance = change.Balance.Round(domain.BalanceScale)
	rec.account.AccountType = change.AccountType
	rec.account.UpdatedAt = r.now()
	return rec.account, nil
}

func (r *AccountRepository) SoftDelete(_ context.Context, id string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.active(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	rec.account.Active = false
	rec.account.UpdatedAt = r.now()
	return rec.account, nil
}

func (r *AccountRepository) ApplyDeposit(_ context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.active(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	next := rec.account.Balance.Add(amount)
	if next.GreaterThan(domain.MaxBalance) {
		return domain.Account{}, domain.NewValidationError("deposit would exceed the maximum balance of 999999999.99")
	}

	rec.account.Balance = next
	rec.account.UpdatedAt = r.now()
	return rec.account, nil
}

func (r *AccountRepository) ApplyWithdrawal(_ context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.active(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	if rec.account.Balance.LessThan(amount) {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	rec.account.Balance = rec.account.Balance.Sub(amount)
	rec.account.UpdatedAt = r.now()
	return rec.account, nil
}

// active must be called with r.mu held.
func (r *AccountRepository) active(id string) (*record, bool) {
	rec, ok := r.accounts[id]
	if !ok || !rec.account.Active {
		return nil, false
	}
	return rec, true
}

// activeNumberTaken must be called with r.mu held.
func (r *AccountRepository) activeNumberTaken(accountNumber, exceptID string) bool {
	for id, rec := range r.accounts {
		if id != exceptID && rec.account.Active && rec.account.AccountNumber == accountNumber {
			return true
		}
	}
	return false
}

// collect returns active accounts accepted by keep, newest first.
func (r *AccountRepository) collect(keep func(domain.Account) bool) []domain.Account {
	recs := make([]*record, 0, len(r.accounts))
	for _, rec := range r.accounts {
		if rec.account.Active && keep(rec.account) {
			recs = append(recs, rec)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].account.CreatedAt.Equal(recs[j].account.CreatedAt) {
			return recs[i].account.CreatedAt.After(recs[j].account.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	out := make([]domain.Account, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.account)
	}
	return out
}

var _ domain.AccountRepository = (*AccountRepository)(nil)
