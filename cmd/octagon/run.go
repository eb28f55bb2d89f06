package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/operion-octagon/pkg/cmd"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/nodes/octagonagents"
	cli "github.com/urfave/cli/v3"
)

var ErrInvalidInput = errors.New("input must be a JSON object or an array of objects")

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run a node over input items and print the output items as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "node-type",
				Usage: "Node type to run",
				Value: octagonagents.NodeType,
			},
			&cli.StringFlag{
				Name:    "agent",
				Aliases: []string{"a"},
				Usage:   "Agent to query",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query to send; may reference item fields, e.g. '={{ .json.ticker }} revenue'",
			},
			&cli.BoolFlag{
				Name:  "include-usage",
				Usage: "Include token usage in the output items",
			},
			&cli.StringFlag{
				Name:  "parameters",
				Usage: "Node parameters as a JSON object; --agent, --query and --include-usage override it",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file with input items ('-' reads stdin); without it the node runs once",
			},
			cmd.DatabaseURLFlag(false),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the JSON output",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			params, err := buildParameters(command)
			if err != nil {
				return err
			}

			items, err := readItems(command)
			if err != nil {
				return err
			}

			rt, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}

			opts := []executor.Option{
				executor.WithTracer(rt.tracer),
				executor.WithLogger(log.WithModule("octagon")),
			}

			if databaseURL := command.String("database-url"); databaseURL != "" {
				persistence, err := cmd.NewPersistence(ctx, log.WithModule("octagon"), databaseURL)
				if err != nil {
					return err
				}

				defer func() {
					_ = persistence.Close(ctx)
				}()

				opts = append(opts, executor.WithPersistence(persistence))
			}

			exec := executor.NewExecutor(rt.registry, rt.credentials, opts...)

			execution, err := exec.Execute(ctx, executor.Request{
				NodeType:   command.String("node-type"),
				Parameters: params,
				Items:      items,
			})
			if err != nil {
				return err
			}

			return writeJSON(command.Root().Writer, execution.Output, command.Bool("pretty"))
		},
	}
}

func buildParameters(command *cli.Command) (map[string]any, error) {
	params := map[string]any{}

	if raw := command.String("parameters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("invalid --parameters: %w", err)
		}
	}

	if command.IsSet("agent") {
		params["agent"] = command.String("agent")
	}

	if command.IsSet("query") {
		params["query"] = command.String("query")
	}

	if command.IsSet("include-usage") {
		additional, _ := params["additionalFields"].(map[string]any)
		if additional == nil {
			additional = map[string]any{}
		}

		additional["includeUsage"] = command.Bool("include-usage")
		params["additionalFields"] = additional
	}

	return params, nil
}

func readItems(command *cli.Command) ([]models.Item, error) {
	var (
		data []byte
		err  error
	)

	switch path := command.String("input"); path {
	case "":
		return []models.Item{{JSON: map[string]any{}}}, nil
	case "-":
		data, err = io.ReadAll(command.Root().Reader)
	default:
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return parseItems(data)
}

// parseItems accepts a single object or an array of objects.
func parseItems(data []byte) ([]models.Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Item{{JSON: map[string]any{}}}, nil
	}

	if data[0] == '{' {
		var object map[string]any
		if err := json.Unmarshal(data, &object); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		return models.ItemsFromJSON([]map[string]any{object}), nil
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return models.ItemsFromJSON(objects), nil
}

func writeJSON(w io.Writer, value any, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(value)
}
