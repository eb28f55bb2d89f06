// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/operion-octagon/pkg/nodes/octagonagents"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/registry"
)

// NewRegistry registers plugin nodes found under pluginsPath and the built-in nodes.
func NewRegistry(logger *slog.Logger, client *octagon.Client, recorder octagonagents.Recorder, pluginsPath string) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)

	if pluginsPath != "" {
		if err := reg.LoadNodePlugins(pluginsPath); err != nil {
			return nil, fmt.Errorf("failed to load node plugins: %w", err)
		}
	}

	reg.RegisterDefaultNodes(client, recorder)

	return reg, nil
}
