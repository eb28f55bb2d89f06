// Package web provides the HTTP handlers for running nodes and inspecting executions.
package web

import (
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/protocol"
)

// ExecuteNodeRequest is the body of POST /nodes/:type/execute.
// Without items the node runs once over a single empty item.
type ExecuteNodeRequest struct {
	Parameters map[string]any   `json:"parameters" validate:"required"`
	Items      []map[string]any `json:"items"      validate:"max=1000"`
	Async      bool             `json:"async"`
}

// TestCredentialRequest is the optional body of POST /credentials/:name/test.
// Without data the stored credential with the same name is tested.
type TestCredentialRequest struct {
	Data map[string]any `json:"data"`
}

// NodeSummary is a list entry of GET /nodes.
type NodeSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// NodeResponse is the body of GET /nodes/:type.
type NodeResponse struct {
	NodeSummary

	Definition models.NodeDescription `json:"definition"`
}

type CredentialResponse struct {
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	DocumentationURL string `json:"documentation_url,omitempty"`
	Configured       bool   `json:"configured"`
}

// ExecutionAccepted is returned when an execution is queued on the event bus.
type ExecutionAccepted struct {
	EventID  string `json:"event_id"`
	NodeType string `json:"node_type"`
	Items    int    `json:"items"`
}

func TransformNodeSummary(factory protocol.NodeFactory) NodeSummary {
	return NodeSummary{
		ID:          factory.ID(),
		Name:        factory.Name(),
		Description: factory.Description(),
		Schema:      factory.Schema(),
	}
}

func TransformCredentialResponse(credentialType protocol.CredentialType, configured bool) CredentialResponse {
	description := credentialType.Describe()

	return CredentialResponse{
		Name:             description.Name,
		DisplayName:      description.DisplayName,
		DocumentationURL: description.DocumentationURL,
		Configured:       configured,
	}
}
