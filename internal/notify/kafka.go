package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"waseet-api/internal/outbox"

	"github.com/segmentio/kafka-go"
)

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes notifications to a topic consumed by the mailer.
type KafkaDispatcher struct {
	writer kafkaMessageWriter
}

// NewKafkaDispatcher creates a dispatcher. brokers is a comma-separated list
// of host:port.
func NewKafkaDispatcher(brokers string, topic string) *KafkaDispatcher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			addrs = append(addrs, a)
		}
	}

	return &KafkaDispatcher{writer: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}}
}

func newKafkaDispatcherWith(w kafkaMessageWriter) *KafkaDispatcher {
	return &KafkaDispatcher{writer: w}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, msg outbox.Message) error {
	value, err := json.Marshal(emailRequest{Type: msg.Type, Record: payloadOrEmpty(msg.Payload)})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Id.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
