// Command octagon runs Octagon agent queries from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/operion-octagon/pkg/cmd"
	"github.com/dukex/operion-octagon/pkg/credentials"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/registry"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "octagon",
		Usage:                 "Query Octagon financial research agents",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			cmd.EnvFileFlag(),
			cmd.LogLevelFlag(),
			cmd.PluginsPathFlag(),
			cmd.TracingFlag(),
		}, cmd.OctagonFlags()...),
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			if err := cmd.LoadEnvFile(command.String("env-file")); err != nil {
				return ctx, err
			}

			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			runCommand(),
			describeCommand(),
			agentsCommand(),
			credentialsCommand(),
		},
	}
}

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type runtime struct {
	registry    *registry.Registry
	credentials *credentials.Store
	tracer      trace.Tracer
}

func newRuntime(ctx context.Context, command *cli.Command) (*runtime, error) {
	tracer, err := cmd.NewTracer(ctx, command, "octagon")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	client, err := cmd.NewOctagonClient(command, tracer)
	if err != nil {
		return nil, err
	}

	reg, err := cmd.NewRegistry(log.WithModule("octagon"), client, nil, command.String("plugins-path"))
	if err != nil {
		return nil, err
	}

	return &runtime{
		registry:    reg,
		credentials: cmd.NewCredentialStore(command),
		tracer:      tracer,
	}, nil
}
