package events

import (
	"context"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/coopandes/accounts-ledger/src/internal/logger"
)

// LogPublisher writes account events to the log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(_ context.Context, event domain.AccountEvent) error {
	logger.Info("account event", logger.Fields{
		"eventId":       event.EventID,
		"type":          event.Type,
		"accountId":     event.AccountID,
		"accountNumber": event.AccountNumber,
		"balance":       event.Balance.StringFixed(domain.BalanceScale),
	})
	return nil
}

var _ domain.AccountEventPublisher = LogPublisher{}
