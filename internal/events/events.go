package events

import (
	"context"

	"rentwheels/pkg/kafka"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/requestid"
)

const (
	CarCreated       = "car.created"
	CarUpdated       = "car.updated"
	CarDeleted       = "car.deleted"
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	UserRegistered   = "user.registered"

	SchemaVersion = "1"
	Source        = "rentwheels"
)

// Event is a domain state change. Key is the partition key, usually the
// id of the record the event is about.
type Event struct {
	Type    string
	Key     string
	Payload any
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Key).
		WithValue(event.Payload).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(requestid.FromContext(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() error { return nil }

// Notify publishes event and logs a failure instead of returning it.
// A state change that already committed is never reported as failed
// because its event could not be delivered.
func Notify(ctx context.Context, publisher Publisher, log *logger.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish domain event",
			"event_type", event.Type,
			"key", event.Key,
			"error", err,
		)
	}
}
