package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

func TestValidateAccountNumber(t *testing.T) {
	for _, ok := range []string{"00001", "001-100000005", "ABCDEFGHIJ0123456789"} {
		if problem := domain.ValidateAccountNumber(ok); problem != "" {
			t.Fatalf("%q: unexpected problem %q", ok, problem)
		}
	}
	for _, bad := range []string{"", "1234", "ABCDEFGHIJ01234567890", "abc-123", "ACC 0001", "ACC_0001"} {
		if problem := domain.ValidateAccountNumber(bad); problem == "" {
			t.Fatalf("%q: expected a problem", bad)
		}
	}
}

func TestValidateBalance(t *testing.T) {
	cases := map[string]bool{
		"0":            true,
		"999999999.99": true,
		"12.3":         true,
		"-0.01":        false,
		"1000000000":   false,
		"0.001":        false,
	}
	for raw, valid := range cases {
		problem := domain.ValidateBalance("balance", decimal.RequireFromString(raw))
		if (problem == "") != valid {
			t.Fatalf("%s: valid=%v, problem %q", raw, valid, problem)
		}
	}
}

func TestValidateAmountRejectsZero(t *testing.T) {
	if domain.ValidateAmount(decimal.Zero) == "" {
		t.Fatal("expected zero amount to be rejected")
	}
}

func TestAccountTypeValid(t *testing.T) {
	if !domain.AccountTypeTermDeposit.Valid() || domain.AccountType("GOLD").Valid() {
		t.Fatal("unexpected account type validity")
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("create: %w", domain.NewValidationError("a", "b"))

	if !errors.Is(err, domain.ErrValidation) {
		t.Fatal("expected wrapped validation error to match ErrValidation")
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Fatal("validation error must not match ErrConflict")
	}
	if got := domain.Problems(err); len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected problems %v", got)
	}
	if err.Error() != "create: a; b" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if domain.Problems(domain.ErrConflict) != nil {
		t.Fatal("expected no problems for a non-validation error")
	}
}

func TestMoneyValidationRejectsExtremeExponentsQuickly(t *testing.T) {
	for _, raw := range []string{"1e30000000", "1e-30000000", "5e13", "1e-33"} {
		value := decimal.RequireFromString(raw)

		start := time.Now()
		amountProblem := domain.ValidateAmount(value)
		balanceProblem := domain.ValidateBalance("balance", value)
		elapsed := time.Since(start)

		if amountProblem != "amount is out of range" {
			t.Fatalf("%s: unexpected amount problem %q", raw, amountProblem)
		}
		if balanceProblem != "balance is out of range" {
			t.Fatalf("%s: unexpected balance problem %q", raw, balanceProblem)
		}
		if elapsed > 100*time.Millisecond {
			t.Fatalf("%s: validation took %v", raw, elapsed)
		}
	}
}

func TestMoneyValidationAcceptsPaddedScale(t *testing.T) {
	if problem := domain.ValidateAmount(decimal.RequireFromString("12.5000")); problem != "" {
		t.Fatalf("unexpected problem %q", problem)
	}
}
