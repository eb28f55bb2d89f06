package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/operion-octagon/pkg/cmd"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/metrics"
	"github.com/dukex/operion-octagon/pkg/worker"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "octagon-api",
		Usage:                 "Run Octagon agent queries over HTTP",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			cmd.EnvFileFlag(),
			cmd.LogLevelFlag(),
			cmd.DatabaseURLFlag(true),
			cmd.PluginsPathFlag(),
			cmd.TracingFlag(),
		}, append(cmd.EventBusFlags(), cmd.OctagonFlags()...)...),
		Action: func(ctx context.Context, command *cli.Command) error {
			if err := cmd.LoadEnvFile(command.String("env-file")); err != nil {
				return err
			}

			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Octagon API")

			tracer, err := cmd.NewTracer(ctx, command, "octagon-api")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			client, err := cmd.NewOctagonClient(command, tracer)
			if err != nil {
				return err
			}

			collector := metrics.NewCollector()

			registry, err := cmd.NewRegistry(logger, client, collector, command.String("plugins-path"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "octagon-api", command.String("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			credentials := cmd.NewCredentialStore(command)

			exec := executor.NewExecutor(registry, credentials,
				executor.WithPersistence(persistence),
				executor.WithPublisher(eventBus),
				executor.WithRecorder(collector),
				executor.WithTracer(tracer),
				executor.WithLogger(logger),
			)

			// gochannel only reaches subscribers in this process, so async requests run here.
			if command.String("event-bus") == "gochannel" {
				inline := worker.NewWorker("api-inline", exec, eventBus, logger)
				if err := inline.Start(ctx); err != nil {
					return err
				}

				defer func() {
					_ = inline.Stop(ctx)
				}()
			}

			api := NewAPI(logger, persistence, registry, exec, credentials, eventBus, collector)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return err
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
