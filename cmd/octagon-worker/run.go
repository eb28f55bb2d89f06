package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukex/operion-octagon/pkg/cmd"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/metrics"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/schedule"
	"github.com/dukex/operion-octagon/pkg/worker"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func runWorker(ctx context.Context, command *cli.Command) error {
	if err := cmd.LoadEnvFile(command.String("env-file")); err != nil {
		return err
	}

	log.Setup(command.String("log-level"))

	workerID := command.String("worker-id")
	if workerID == "" {
		workerID = "worker-" + uuid.New().String()[:8]
	}

	logger := log.WithModule("octagon-worker").With("worker_id", workerID)
	logger.InfoContext(ctx, "Initializing Octagon worker")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := cmd.NewTracer(ctx, command, "octagon-worker")
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	client, err := cmd.NewOctagonClient(command, tracer)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()

	reg, err := cmd.NewRegistry(logger, client, collector, command.String("plugins-path"))
	if err != nil {
		return err
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.Background()); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), "octagon-worker", command.String("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	exec := executor.NewExecutor(reg, cmd.NewCredentialStore(command),
		executor.WithPersistence(persistence),
		executor.WithPublisher(eventBus),
		executor.WithRecorder(collector),
		executor.WithTracer(tracer),
		executor.WithLogger(logger),
		executor.WithWorkerID(workerID),
	)

	services := []protocol.Service{worker.NewWorker(workerID, exec, eventBus, logger)}

	if path := command.String("schedule"); path != "" {
		scheduler, err := newScheduler(path, exec, logger)
		if err != nil {
			return err
		}

		services = append(services, scheduler)
	}

	for _, service := range services {
		if err := service.Start(ctx); err != nil {
			return err
		}
	}

	metricsServer := serveMetrics(command.Int("metrics-port"), collector, logger)

	<-ctx.Done()
	logger.Info("Shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop service", "error", err)
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to stop metrics server", "error", err)
		}
	}

	return nil
}

func newScheduler(path string, runner schedule.Runner, logger *slog.Logger) (*schedule.Scheduler, error) {
	schedules, err := schedule.LoadSchedules(path)
	if err != nil {
		return nil, err
	}

	scheduler := schedule.NewScheduler(schedule.RunDispatch(runner), logger)

	for _, s := range schedules {
		if err := scheduler.Add(s); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}

// serveMetrics exposes the collector on port in the background. Port 0 disables it.
func serveMetrics(port int, collector *metrics.Collector, logger *slog.Logger) *http.Server {
	if port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	logger.Info("Serving metrics", "port", port)

	return server
}
