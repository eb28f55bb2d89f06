package registry

import (
	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/nodes/octagonagents"
	"github.com/dukex/operion-octagon/pkg/octagon"
)

// RegisterDefaultNodes registers the built-in node factories and their credential types.
func (r *Registry) RegisterDefaultNodes(client *octagon.Client, recorder octagonagents.Recorder) {
	r.RegisterNode(octagonagents.NewNodeFactory(
		octagonagents.WithClient(client),
		octagonagents.WithRecorder(recorder),
	))

	r.RegisterCredentialType(octagonapi.New(client))
}
