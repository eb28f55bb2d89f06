// Package execution implements the functions a node sees while it runs.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/template"
)

var ErrItemIndexOutOfRange = errors.New("item index out of range")

// Functions serves input items, per-item parameters and credentials to a node.
type Functions struct {
	executionID string
	items       []models.Item
	parameters  map[string]any
	credentials protocol.CredentialStore
	logger      *slog.Logger
}

func NewFunctions(
	executionID string,
	items []models.Item,
	parameters map[string]any,
	credentials protocol.CredentialStore,
	logger *slog.Logger,
) *Functions {
	if parameters == nil {
		parameters = map[string]any{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Functions{
		executionID: executionID,
		items:       items,
		parameters:  parameters,
		credentials: credentials,
		logger:      logger.With("execution_id", executionID),
	}
}

func (f *Functions) InputData() []models.Item {
	return f.items
}

// NodeParameter resolves expressions in the parameter against item itemIndex.
// A string fallback keeps the rendered value as text.
func (f *Functions) NodeParameter(name string, itemIndex int, fallback any) (any, error) {
	if itemIndex < 0 || itemIndex >= len(f.items) {
		return nil, fmt.Errorf("%w: %d", ErrItemIndexOutOfRange, itemIndex)
	}

	value, ok := f.parameters[name]
	if !ok || value == nil {
		return fallback, nil
	}

	_, asString := fallback.(string)
	data := template.ItemData(f.items[itemIndex], itemIndex, f.executionID)

	resolved, err := template.ResolveParameter(value, data, asString)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameter '%s': %w", name, err)
	}

	return resolved, nil
}

func (f *Functions) Credentials(ctx context.Context, name string) (models.CredentialData, error) {
	if f.credentials == nil {
		return nil, fmt.Errorf("no credential store configured for '%s'", name)
	}

	return f.credentials.Get(ctx, name)
}

func (f *Functions) Logger() *slog.Logger {
	return f.logger
}
