package octagonagents

import (
	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/octagon"
)

const (
	NodeType        = "octagonAgents"
	NodeDisplayName = "Octagon"
	NodeSummary     = "Financial AI agents"
)

// Description returns the node description shown by the host.
func Description() models.NodeDescription {
	agentOptions := make([]models.PropertyOption, 0, len(octagon.Agents()))
	for _, a := range octagon.Agents() {
		agentOptions = append(agentOptions, models.PropertyOption{
			Name:        a.DisplayName,
			Value:       a.ID,
			Description: a.Description,
		})
	}

	return models.NodeDescription{
		DisplayName:  NodeDisplayName,
		Name:         NodeType,
		Icon:         "file:octagon.svg",
		Group:        []string{"input"},
		Version:      1,
		Subtitle:     `={{$parameter["agent"]}}`,
		Description:  NodeSummary,
		Defaults:     models.NodeDefaults{Name: NodeDisplayName},
		UsableAsTool: true,
		Inputs:       []string{models.NodeConnectionMain},
		Outputs:      []string{models.NodeConnectionMain},
		Credentials: []models.CredentialRequirement{
			{Name: octagonapi.Name, Required: true},
		},
		Properties: []models.NodeProperty{
			{
				DisplayName: "Agent",
				Name:        "agent",
				Type:        models.PropertyTypeOptions,
				Options:     agentOptions,
				Default:     octagon.DefaultAgent,
				Description: "Select the Octagon agent for your research task",
			},
			{
				DisplayName: "Query",
				Name:        "query",
				Type:        models.PropertyTypeString,
				TypeOptions: map[string]any{"rows": 3},
				Default:     "",
				Placeholder: "Ask any financial or market research question...",
				Description: "Your research query or question",
				Required:    true,
			},
			{
				DisplayName: "Additional Options",
				Name:        "additionalFields",
				Type:        models.PropertyTypeCollection,
				Placeholder: "Add Field",
				Default:     map[string]any{},
				Values: []models.NodeProperty{
					{
						DisplayName: "Include Token Usage",
						Name:        "includeUsage",
						Type:        models.PropertyTypeBoolean,
						Default:     false,
						Description: "Whether to include token usage information in the response",
					},
				},
			},
		},
	}
}
