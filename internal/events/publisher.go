// Package events publishes scheduling domain events to Kafka. Publishing is
// best effort: a broker outage never fails the operation that triggered the
// event.
package events

import (
	"context"

	"workbay/pkg/config"
	"workbay/pkg/kafka"
	kafka_config "workbay/pkg/kafka/config"
	kafka_middleware "workbay/pkg/kafka/middleware"
	"workbay/pkg/logger"
)

const (
	TypeAppointmentCreated   = "appointment.created"
	TypeAppointmentUpdated   = "appointment.updated"
	TypeAppointmentCancelled = "appointment.cancelled"
	TypeLiftReserved         = "lift.reserved"
	TypeLiftUsageStarted     = "lift.usage_started"
	TypeLiftUsageEnded       = "lift.usage_ended"
	TypeQuoteApproved        = "quote.approved"
)

type Publisher interface {
	Publish(ctx context.Context, eventType string, key string, payload any)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *config.Config, source string) (Publisher, error) {
	kcfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kcfg, cfg.KafkaEventsTopic, cfg.KafkaEventsTopic+".dlq", cfg.Log)
	if err != nil {
		return nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      cfg.Log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion("1").
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {}

func (NoopPublisher) Close() error { return nil }
