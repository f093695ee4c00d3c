package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AccountEventType string

const (
	AccountEventCreated   AccountEventType = "ACCOUNT_CREATED"
	AccountEventUpdated   AccountEventType = "ACCOUNT_UPDATED"
	AccountEventDeleted   AccountEventType = "ACCOUNT_DELETED"
	AccountEventDeposited AccountEventType = "FUNDS_DEPOSITED"
	AccountEventWithdrawn AccountEventType = "FUNDS_WITHDRAWN"
)

// AccountEvent notifies downstream consumers that an account changed.
type AccountEvent struct {
	EventID       string           `json:"eventId"`
	Type          AccountEventType `json:"type"`
	AccountID     string           `json:"accountId"`
	OwnerID       string           `json:"ownerId"`
	AccountNumber string           `json:"accountNumber"`
	Balance       decimal.Decimal  `json:"balance"`
	OccurredAt    time.Time        `json:"occurredAt"`
}

type AccountEventPublisher interface {
	Publish(ctx context.Context, event AccountEvent) error
}
