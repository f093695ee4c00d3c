package events_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/coopandes/accounts-ledger/src/internal/adapter/events"
	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	err := events.NewLogPublisher().Publish(context.Background(), domain.AccountEvent{
		EventID:       "evt-1",
		Type:          domain.AccountEventDeposited,
		AccountID:     "acc-1",
		AccountNumber: "ACC-0001",
		Balance:       decimal.NewFromInt(12),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{"FUNDS_DEPOSITED", "ACC-0001", "12.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got %s", want, out)
		}
	}
}
