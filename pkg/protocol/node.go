// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-octagon/pkg/models"
)

// Node processes a batch of input items and returns one output item per input.
type Node interface {
	// Describe returns the node's identity, connections and parameters
	Describe() models.NodeDescription

	// Execute runs the node over every input item exposed by fns
	Execute(ctx context.Context, fns ExecuteFunctions) ([]models.Item, error)
}

// ExecuteFunctions is the host surface a node sees while executing.
type ExecuteFunctions interface {
	// InputData returns the ordered input items of the current execution
	InputData() []models.Item

	// NodeParameter returns the parameter value resolved for one item.
	// The fallback is returned when the parameter is unset.
	NodeParameter(name string, itemIndex int, fallback any) (any, error)

	// Credentials returns the decrypted credential of the given type
	Credentials(ctx context.Context, name string) (models.CredentialData, error)

	Logger() *slog.Logger
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance
	Create(ctx context.Context) (Node, error)

	// ID returns the unique identifier for this node type
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}
