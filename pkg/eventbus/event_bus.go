// Package eventbus carries execution requests and results between the API, workers and schedulers.
package eventbus

import (
	"context"

	"github.com/dukex/operion-octagon/pkg/events"
)

// Event is anything published on the bus; its type selects the handler on the consuming side.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events. The key is the node type, so requests for one
// node type land on the same Kafka partition.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber routes decoded events to handlers registered per event type.
// A handler error leaves the message unacknowledged so it is delivered again.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives the concrete event value, e.g. *events.ExecutionRequested.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
