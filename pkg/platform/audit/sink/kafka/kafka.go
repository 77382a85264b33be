// Package kafka ships audit events to a Kafka topic for downstream consumers
// (notification fan-out, analytics). Delivery is fire-and-forget: a broker
// outage never fails the domain operation that emitted the event.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "bloodlink/pkg/platform/audit"
)

// Sink produces JSON-encoded events keyed by account ID so all events for one
// account land in the same partition, in order.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the topic exists. Returns nil when
// brokers is empty (Kafka not configured).
func New(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		// Topic may already exist; anything else surfaces on first produce.
		_ = err
	}

	return &Sink{client: client, topic: topic}, nil
}

// Send produces one event asynchronously. Produce errors are dropped by
// design; the durable audit trail lives in the store, not the sink.
func (s *Sink) Send(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.AccountID.String()),
		Value: value,
	}
	s.client.Produce(ctx, record, nil)
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	_ = s.client.Flush(context.Background())
	s.client.Close()
}
