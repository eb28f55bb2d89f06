package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/nodes/octagonagents"
	"github.com/dukex/operion-octagon/pkg/octagon"
	cli "github.com/urfave/cli/v3"
)

var ErrCredentialTestFailed = errors.New("credential test failed")

func describeCommand() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Print a node description as JSON",
		ArgsUsage: "[node-type]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the parameter JSON schema instead of the description",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			nodeType := command.Args().First()
			if nodeType == "" {
				nodeType = octagonagents.NodeType
			}

			rt, err := newRuntime(ctx, command)
			if err != nil {
				return err
			}

			factory, ok := rt.registry.GetNodeFactory(nodeType)
			if !ok {
				return fmt.Errorf("unknown node type '%s'", nodeType)
			}

			if command.Bool("schema") {
				return writeJSON(command.Root().Writer, factory.Schema(), true)
			}

			node, err := factory.Create(ctx)
			if err != nil {
				return err
			}

			return writeJSON(command.Root().Writer, node.Describe(), true)
		},
	}
}

func agentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "agents",
		Usage: "List the available Octagon agents",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the agents as JSON",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			agents := octagon.Agents()

			if command.Bool("json") {
				return writeJSON(command.Root().Writer, agents, true)
			}

			w := tabwriter.NewWriter(command.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY")

			for _, agent := range agents {
				fmt.Fprintf(w, "%s\t%s\t%s\n", agent.ID, agent.DisplayName, agent.Category)
			}

			return w.Flush()
		},
	}
}

func credentialsCommand() *cli.Command {
	return &cli.Command{
		Name:  "credentials",
		Usage: "Manage node credentials",
		Commands: []*cli.Command{
			{
				Name:      "test",
				Usage:     "Verify a credential against its API",
				ArgsUsage: "[credential-type]",
				Action: func(ctx context.Context, command *cli.Command) error {
					name := command.Args().First()
					if name == "" {
						name = octagonapi.Name
					}

					rt, err := newRuntime(ctx, command)
					if err != nil {
						return err
					}

					credentialType, err := rt.registry.GetCredentialType(name)
					if err != nil {
						return err
					}

					data, err := rt.credentials.Get(ctx, name)
					if err != nil {
						return fmt.Errorf("credential '%s' is not configured: %w", name, err)
					}

					result := credentialType.Test(ctx, data)
					fmt.Fprintf(command.Root().Writer, "%s: %s\n", result.Status, result.Message)

					if result.Status != models.CredentialTestOK {
						return ErrCredentialTestFailed
					}

					return nil
				},
			},
		},
	}
}
