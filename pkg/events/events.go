// Package events defines the events exchanged between the API, workers and schedulers.
package events

import (
	"time"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every execution event.
const Topic = "operion.octagon.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionRequestedEvent EventType = "execution.requested"
	ExecutionCompletedEvent EventType = "execution.completed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}

// ExecutionRequested asks a worker to run a node over a batch of items.
type ExecutionRequested struct {
	BaseEvent

	NodeType   string         `json:"node_type"`
	Parameters map[string]any `json:"parameters"`
	Items      []models.Item  `json:"items"`
}

func (e ExecutionRequested) GetType() EventType {
	return ExecutionRequestedEvent
}

// ExecutionCompleted reports a finished execution. Per-item failures are in Output.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID    string                 `json:"execution_id"`
	NodeType       string                 `json:"node_type"`
	Status         models.ExecutionStatus `json:"status"`
	SucceededItems int                    `json:"succeeded_items"`
	FailedItems    int                    `json:"failed_items"`
	Output         []models.Item          `json:"output,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Duration       time.Duration          `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

// New returns an empty event value for decoding a payload of the given type.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case ExecutionRequestedEvent:
		return &ExecutionRequested{}, true
	case ExecutionCompletedEvent:
		return &ExecutionCompleted{}, true
	default:
		return nil, false
	}
}
