// Package worker consumes execution requests from the event bus.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/registry"
)

type Runner interface {
	Execute(ctx context.Context, req executor.Request) (*models.Execution, error)
}

type Worker struct {
	id       string
	runner   Runner
	eventBus eventbus.EventSubscriber
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewWorker(id string, runner Runner, eventBus eventbus.EventSubscriber, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		id:       id,
		runner:   runner,
		eventBus: eventBus,
		logger: logger.With(
			"module", "worker",
			"worker_id", id,
		),
	}
}

func (w *Worker) ID() string {
	return w.id
}

// Start registers the execution request handler and subscribes until Stop or ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker subscriptions")

	if err := w.eventBus.Handle(events.ExecutionRequestedEvent, w.handleExecutionRequested); err != nil {
		return err
	}

	subCtx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	if err := w.eventBus.Subscribe(subCtx); err != nil {
		cancel()

		return err
	}

	w.logger.Info("Worker started successfully")

	return nil
}

func (w *Worker) Stop(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	w.logger.Info("Worker stopped")

	return nil
}

// handleExecutionRequested runs the requested batch. Requests that can never
// succeed are logged and acknowledged; other errors are returned for redelivery.
func (w *Worker) handleExecutionRequested(ctx context.Context, event any) error {
	requested, ok := event.(*events.ExecutionRequested)
	if !ok {
		w.logger.Error("Invalid event type for ExecutionRequested")

		return nil
	}

	logger := w.logger.With(
		"event_id", requested.ID,
		"node_type", requested.NodeType,
		"items", len(requested.Items),
	)
	logger.Info("Processing execution requested event")

	exec, err := w.runner.Execute(ctx, executor.Request{
		NodeType:   requested.NodeType,
		Parameters: requested.Parameters,
		Items:      requested.Items,
	})
	if err != nil {
		if isPermanent(err) {
			logger.Error("Dropping execution request", "error", err)

			return nil
		}

		logger.Error("Failed to execute request", "error", err)

		return err
	}

	logger.Info("Execution completed",
		"execution_id", exec.ID,
		"succeeded_items", exec.SucceededItems,
		"failed_items", exec.FailedItems,
	)

	return nil
}

func isPermanent(err error) bool {
	var paramErr *registry.ParameterError

	return errors.As(err, &paramErr) ||
		errors.Is(err, registry.ErrNodeTypeNotRegistered) ||
		errors.Is(err, executor.ErrNodeFailed)
}
