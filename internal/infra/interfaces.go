package infra

import (
	"context"

	"storefront-api/internal/infra/kafka"
	"storefront-api/internal/infra/rabbitmq"
)

// EventPublisher delivers order lifecycle events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

// NopPublisher drops every event. Used when EVENTS_BROKER=none.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }

var (
	_ EventPublisher = (*rabbitmq.Publisher)(nil)
	_ EventPublisher = (*kafka.Producer)(nil)
	_ EventPublisher = NopPublisher{}
)
