package main

import (
	"context"
	"os"

	"github.com/dukex/operion-octagon/pkg/cmd"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "octagon-worker",
		EnableShellCompletion: true,
		Usage:                 "Execute Octagon node requests from the event bus",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Path to a JSON file of cron schedules to run in this worker",
				Sources: cli.EnvVars("SCHEDULE_FILE"),
			},
			&cli.IntFlag{
				Name:    "metrics-port",
				Usage:   "Port serving Prometheus metrics (0 disables)",
				Value:   9092,
				Sources: cli.EnvVars("METRICS_PORT"),
			},
			cmd.EnvFileFlag(),
			cmd.LogLevelFlag(),
			cmd.DatabaseURLFlag(true),
			cmd.PluginsPathFlag(),
			cmd.TracingFlag(),
		}, append(cmd.EventBusFlags(), cmd.OctagonFlags()...)...),
		Action: runWorker,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
