package messaging

import (
	"fmt"

	"txledger/internal/domain/ledger"
	"txledger/internal/infrastructure/messaging/kafka"
)

// EventPublisher is the full publisher surface the container wires;
// ledger.Processor only needs the narrower ledger.EventPublisher slice
// of it (PublishTransactionCompleted).
type EventPublisher interface {
	ledger.EventPublisher
	Close() error
	IsHealthy() bool
}

// KafkaEventPublisher implements EventPublisher using Kafka.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher.
func NewKafkaEventPublisher(cfg *kafka.Config) (*KafkaEventPublisher, error) {
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{producer: producer, topic: cfg.Topic}, nil
}

// PublishTransactionCompleted publishes a committed transaction's full
// double-entry posting to the transactions-completed topic. Publish
// errors are not surfaced to the caller: delivery is best-effort. The
// send is synchronous, so the caller waits for Kafka's answer (after
// the store commit has already happened).
func (p *KafkaEventPublisher) PublishTransactionCompleted(tx ledger.Transaction, entries []ledger.Entry) {
	event := newTransactionCompletedEvent(tx, entries)
	_ = p.producer.PublishEvent(p.topic, tx.ID.String(), event)
}

// Close closes the Kafka producer.
func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// IsHealthy checks if the producer is healthy.
func (p *KafkaEventPublisher) IsHealthy() bool {
	return p.producer.IsHealthy()
}

// NoOpEventPublisher discards every event; used when Kafka is disabled
// or fails to initialize at startup.
type NoOpEventPublisher struct{}

func NewNoOpEventPublisher() *NoOpEventPublisher { return &NoOpEventPublisher{} }

func (NoOpEventPublisher) PublishTransactionCompleted(ledger.Transaction, []ledger.Entry) {}
func (NoOpEventPublisher) Close() error                                                   { return nil }
func (NoOpEventPublisher) IsHealthy() bool                                                { return true }
