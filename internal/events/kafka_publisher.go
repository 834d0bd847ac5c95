// Package events публикует события изменения баланса в Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet_ledger/internal/models"
	"wallet_ledger/internal/service"

	"github.com/segmentio/kafka-go"
)

var _ service.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter: подмножество методов *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish отправляет пачку одним вызовом. Ключ сообщения: id кошелька,
// поэтому события одного кошелька попадают в одну партицию по порядку.
func (p *KafkaPublisher) Publish(ctx context.Context, events []models.BalanceEvent) error {
	const op = "events.KafkaPublisher.Publish"
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%s: событие %d: %w", op, e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.WalletID),
			Value: value,
			Time:  e.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
