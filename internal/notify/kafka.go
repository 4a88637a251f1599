package notify

import (
	"context"
	"fmt"
	"time"

	"matchbook/internal/events"

	"github.com/mailru/easyjson"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDeliverer publishes notifications to a topic, keyed by owner so that
// an owner's notifications stay on one partition in trade order.
type KafkaDeliverer struct {
	writer messageWriter
}

func NewKafkaDeliverer(brokers []string, topic string) *KafkaDeliverer {
	return &KafkaDeliverer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (k *KafkaDeliverer) Deliver(ctx context.Context, n events.Notification) error {
	payload, err := easyjson.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Owner),
		Value: payload,
	})
}

func (k *KafkaDeliverer) Close() error {
	return k.writer.Close()
}
