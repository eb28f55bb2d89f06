// Package persistence provides the storage abstraction for node executions.
package persistence

import (
	"context"

	"github.com/dukex/operion-octagon/pkg/models"
)

// DefaultListLimit bounds Executions when the filter sets no limit.
const DefaultListLimit = 50

// ExecutionFilter narrows an execution listing. Zero values match everything.
type ExecutionFilter struct {
	NodeType string
	Status   models.ExecutionStatus
	Limit    int
}

// Matches reports whether the execution passes the filter.
func (f ExecutionFilter) Matches(execution *models.Execution) bool {
	if f.NodeType != "" && execution.NodeType != f.NodeType {
		return false
	}

	if f.Status != "" && execution.Status != f.Status {
		return false
	}

	return true
}

// EffectiveLimit returns the limit to apply.
func (f ExecutionFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}

	return f.Limit
}

type Persistence interface {
	SaveExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	// Executions lists matching executions, newest first.
	Executions(ctx context.Context, filter ExecutionFilter) ([]*models.Execution, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
