// Package executor runs a registered node over a batch of items and records the execution.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/execution"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/otelhelper"
	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrNodeFailed = errors.New("node execution failed")

// Request describes one batch to run.
type Request struct {
	NodeType   string         `json:"node_type" validate:"required"`
	Parameters map[string]any `json:"parameters"`
	Items      []models.Item  `json:"items"`
}

// Recorder receives execution outcomes.
type Recorder interface {
	ExecutionFinished(nodeType, status string)
}

type Executor struct {
	registry    *registry.Registry
	credentials protocol.CredentialStore
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	recorder    Recorder
	tracer      trace.Tracer
	logger      *slog.Logger
	workerID    string
	now         func() time.Time
}

type Option func(*Executor)

// WithPersistence stores every execution. Without it executions are not recorded.
func WithPersistence(p persistence.Persistence) Option {
	return func(e *Executor) {
		e.persistence = p
	}
}

// WithPublisher emits an execution.completed event after every execution.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(e *Executor) {
		e.recorder = recorder
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithWorkerID(id string) Option {
	return func(e *Executor) {
		e.workerID = id
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExecutor(reg *registry.Registry, credentials protocol.CredentialStore, opts ...Option) *Executor {
	e := &Executor{
		registry:    reg,
		credentials: credentials,
		tracer:      otelhelper.NoopTracer(),
		logger:      slog.Default(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs the node over the request items. Item failures are part of the
// returned execution output. An error is returned only when the node type is
// unknown, the parameters are invalid, the node itself fails or the execution
// cannot be stored. A failed node still returns its execution record.
func (e *Executor) Execute(ctx context.Context, req Request) (*models.Execution, error) {
	if err := e.registry.ValidateParameters(req.NodeType, req.Parameters); err != nil {
		return nil, err
	}

	node, err := e.registry.CreateNode(ctx, req.NodeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create node '%s': %w", req.NodeType, err)
	}

	items := req.Items
	if items == nil {
		items = []models.Item{}
	}

	exec := &models.Execution{
		ID:         uuid.New().String(),
		NodeType:   req.NodeType,
		Status:     models.ExecutionStatusRunning,
		Parameters: req.Parameters,
		Input:      items,
		CreatedAt:  e.now().UTC(),
	}

	logger := e.logger.With("execution_id", exec.ID, "node_type", exec.NodeType)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.execute",
		attribute.String(otelhelper.ExecutionIDKey, exec.ID),
		attribute.String(otelhelper.NodeTypeKey, exec.NodeType),
		attribute.Int(otelhelper.ItemCountKey, len(items)),
	)
	defer span.End()

	if err := e.save(ctx, exec); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	logger.Info("Executing node", "items", len(items))

	fns := execution.NewFunctions(exec.ID, items, req.Parameters, e.credentials, logger)

	output, nodeErr := node.Execute(ctx, fns)

	completedAt := e.now().UTC()
	exec.CompletedAt = &completedAt

	if nodeErr != nil {
		exec.Status = models.ExecutionStatusFailed
		exec.ErrorMessage = nodeErr.Error()
		otelhelper.SetError(span, nodeErr)
		logger.Error("Node execution failed", "error", nodeErr)
	} else {
		exec.Status = models.ExecutionStatusCompleted
		exec.Output = output

		for _, item := range output {
			if item.IsFailure() {
				exec.FailedItems++
			} else {
				exec.SucceededItems++
			}
		}

		logger.Info("Node execution completed",
			"succeeded_items", exec.SucceededItems,
			"failed_items", exec.FailedItems,
		)
	}

	span.SetAttributes(
		attribute.Int("operion.items.succeeded", exec.SucceededItems),
		attribute.Int("operion.items.failed", exec.FailedItems),
	)

	if err := e.save(ctx, exec); err != nil {
		otelhelper.SetError(span, err)

		return exec, err
	}

	if e.recorder != nil {
		e.recorder.ExecutionFinished(exec.NodeType, string(exec.Status))
	}

	e.publish(ctx, logger, exec)

	if nodeErr != nil {
		return exec, fmt.Errorf("%w: %w", ErrNodeFailed, nodeErr)
	}

	return exec, nil
}

func (e *Executor) save(ctx context.Context, exec *models.Execution) error {
	if e.persistence == nil {
		return nil
	}

	if err := e.persistence.SaveExecution(ctx, exec); err != nil {
		return fmt.Errorf("failed to save execution %s: %w", exec.ID, err)
	}

	return nil
}

// publish is best effort. The execution is already stored.
func (e *Executor) publish(ctx context.Context, logger *slog.Logger, exec *models.Execution) {
	if e.publisher == nil {
		return
	}

	event := events.ExecutionCompleted{
		BaseEvent:      events.NewBaseEvent(events.ExecutionCompletedEvent),
		ExecutionID:    exec.ID,
		NodeType:       exec.NodeType,
		Status:         exec.Status,
		SucceededItems: exec.SucceededItems,
		FailedItems:    exec.FailedItems,
		Output:         exec.Output,
		ErrorMessage:   exec.ErrorMessage,
		Duration:       exec.CompletedAt.Sub(exec.CreatedAt),
	}
	event.WorkerID = e.workerID

	if err := e.publisher.Publish(ctx, exec.ID, event); err != nil {
		logger.Error("Failed to publish execution completed event", "error", err)
	}
}
