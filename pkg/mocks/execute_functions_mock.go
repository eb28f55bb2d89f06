package mocks

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockExecuteFunctions is a mock implementation of protocol.ExecuteFunctions interface.
type MockExecuteFunctions struct {
	mock.Mock
}

func (m *MockExecuteFunctions) InputData() []models.Item {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).([]models.Item)
}

func (m *MockExecuteFunctions) NodeParameter(name string, itemIndex int, fallback any) (any, error) {
	args := m.Called(name, itemIndex, fallback)

	return args.Get(0), args.Error(1)
}

func (m *MockExecuteFunctions) Credentials(ctx context.Context, name string) (models.CredentialData, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(models.CredentialData), args.Error(1)
}

func (m *MockExecuteFunctions) Logger() *slog.Logger {
	args := m.Called()

	return args.Get(0).(*slog.Logger)
}
