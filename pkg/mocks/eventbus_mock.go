package mocks

import (
	"context"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus stands in for the watermill bus in API, worker and scheduler tests.
type MockEventBus struct {
	mock.Mock
}

// ExecutionRequests returns the execution requests passed to Publish, in call order.
func (m *MockEventBus) ExecutionRequests() []events.ExecutionRequested {
	var requests []events.ExecutionRequested

	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}

		if req, ok := call.Arguments.Get(2).(events.ExecutionRequested); ok {
			requests = append(requests, req)
		}
	}

	return requests
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}
