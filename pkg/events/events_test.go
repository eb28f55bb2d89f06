package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(ExecutionRequestedEvent)

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, ExecutionRequestedEvent, base.Type)
	assert.False(t, base.Timestamp.IsZero())
	assert.NotNil(t, base.Metadata)
	assert.NotEqual(t, base.ID, NewBaseEvent(ExecutionRequestedEvent).ID)
}

func TestNew(t *testing.T) {
	event, ok := New(ExecutionRequestedEvent)
	require.True(t, ok)
	assert.IsType(t, &ExecutionRequested{}, event)

	event, ok = New(ExecutionCompletedEvent)
	require.True(t, ok)
	assert.IsType(t, &ExecutionCompleted{}, event)

	_, ok = New("workflow.triggered")
	assert.False(t, ok)
}

func TestExecutionRequested_Decode(t *testing.T) {
	original := ExecutionRequested{
		BaseEvent:  NewBaseEvent(ExecutionRequestedEvent),
		NodeType:   "octagonAgents",
		Parameters: map[string]any{"query": "={{ .json.q }}"},
		Items:      []models.Item{{JSON: map[string]any{"q": "AAPL"}}},
	}

	payload, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"execution.requested"`)

	decoded, ok := New(original.GetType())
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(payload, decoded))

	requested := decoded.(*ExecutionRequested)
	assert.Equal(t, "octagonAgents", requested.NodeType)
	assert.Equal(t, "AAPL", requested.Items[0].JSON["q"])
}
