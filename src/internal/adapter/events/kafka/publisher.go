package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coopandes/accounts-ledger/src/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends account events to one topic, keyed by account id so the
// events of one account stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  3,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 2 * time.Second,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event domain.AccountEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal account event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write account event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ domain.AccountEventPublisher = (*Publisher)(nil)
