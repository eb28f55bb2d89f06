package octagonagents

import (
	"context"

	"github.com/dukex/operion-octagon/pkg/protocol"
)

// NodeFactory creates Octagon nodes sharing one client configuration.
type NodeFactory struct {
	opts []Option
}

func NewNodeFactory(opts ...Option) protocol.NodeFactory {
	return &NodeFactory{opts: opts}
}

func (f *NodeFactory) Create(_ context.Context) (protocol.Node, error) {
	return NewNode(f.opts...), nil
}

func (f *NodeFactory) ID() string {
	return NodeType
}

func (f *NodeFactory) Name() string {
	return NodeDisplayName
}

func (f *NodeFactory) Description() string {
	return NodeSummary
}

// Schema returns the JSON schema for the node parameters.
func (f *NodeFactory) Schema() map[string]any {
	return Description().JSONSchema().Map()
}
