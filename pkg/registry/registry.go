// Package registry keeps the node factories and credential types known to the host.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"plugin"
	"slices"

	"github.com/dukex/operion-octagon/pkg/protocol"
)

var (
	ErrNodeTypeNotRegistered       = errors.New("node type not registered")
	ErrCredentialTypeNotRegistered = errors.New("credential type not registered")
)

type Registry struct {
	logger          *slog.Logger
	nodeFactories   map[string]protocol.NodeFactory
	credentialTypes map[string]protocol.CredentialType
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		nodeFactories:   make(map[string]protocol.NodeFactory),
		credentialTypes: make(map[string]protocol.CredentialType),
	}
}

func (r *Registry) RegisterNode(nodeFactory protocol.NodeFactory) {
	r.nodeFactories[nodeFactory.ID()] = nodeFactory
}

func (r *Registry) RegisterCredentialType(credentialType protocol.CredentialType) {
	r.credentialTypes[credentialType.Describe().Name] = credentialType
}

func (r *Registry) CreateNode(ctx context.Context, nodeType string) (protocol.Node, error) {
	factory, ok := r.nodeFactories[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNodeTypeNotRegistered, nodeType)
	}

	return factory.Create(ctx)
}

func (r *Registry) GetNodeFactory(nodeType string) (protocol.NodeFactory, bool) {
	factory, ok := r.nodeFactories[nodeType]

	return factory, ok
}

// GetAvailableNodes returns the registered node factories ordered by ID.
func (r *Registry) GetAvailableNodes() []protocol.NodeFactory {
	factories := make([]protocol.NodeFactory, 0, len(r.nodeFactories))
	for _, id := range slices.Sorted(maps.Keys(r.nodeFactories)) {
		factories = append(factories, r.nodeFactories[id])
	}

	return factories
}

func (r *Registry) GetCredentialType(name string) (protocol.CredentialType, error) {
	credentialType, ok := r.credentialTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrCredentialTypeNotRegistered, name)
	}

	return credentialType, nil
}

// GetCredentialTypes returns the registered credential types ordered by name.
func (r *Registry) GetCredentialTypes() []protocol.CredentialType {
	types := make([]protocol.CredentialType, 0, len(r.credentialTypes))
	for _, name := range slices.Sorted(maps.Keys(r.credentialTypes)) {
		types = append(types, r.credentialTypes[name])
	}

	return types
}

// LoadNodePlugins opens every shared object under pluginsPath/nodes and
// registers the NodeFactory each one exports as "Node".
func (r *Registry) LoadNodePlugins(pluginsPath string) error {
	factories, err := loadPlugin[protocol.NodeFactory](r.logger, pluginsPath, "Node")
	if err != nil {
		return err
	}

	for _, factory := range factories {
		r.RegisterNode(factory)
	}

	return nil
}

func loadPlugin[T any](logger *slog.Logger, pluginsPath string, symbolName string) ([]T, error) {
	rootPath := pluginsPath + "/nodes"

	pluginPathList, err := fs.Glob(os.DirFS(rootPath), "*.so")
	if err != nil {
		return nil, err
	}

	l := logger.With(slog.String("path", pluginsPath), slog.String("type", symbolName))
	l.Info("Loading plugins")

	pluginList := make([]T, 0, len(pluginPathList))
	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		v, err := plg.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("plugin %s does not export %s: %w", p, symbolName, err)
		}

		castV, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("plugin %s: %s has unexpected type %T", p, symbolName, v)
		}

		pluginList = append(pluginList, castV)

		l.Info("Loaded node plugin", slog.String("plugin", p))
	}

	return pluginList, nil
}
