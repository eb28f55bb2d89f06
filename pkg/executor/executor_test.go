package executor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/operion-octagon/pkg/credentials"
	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/mocks"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/nodes/octagonagents"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/persistence/file"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type brokenNode struct{}

func (brokenNode) Describe() models.NodeDescription {
	return models.NodeDescription{Name: "broken"}
}

func (brokenNode) Execute(context.Context, protocol.ExecuteFunctions) ([]models.Item, error) {
	return nil, errors.New("boom")
}

type brokenFactory struct{}

func (brokenFactory) Create(context.Context) (protocol.Node, error) { return brokenNode{}, nil }
func (brokenFactory) ID() string                                    { return "broken" }
func (brokenFactory) Name() string                                  { return "Broken" }
func (brokenFactory) Description() string                           { return "always fails" }
func (brokenFactory) Schema() map[string]any                        { return map[string]any{"type": "object"} }

type recorder struct {
	statuses []string
}

func (r *recorder) ExecutionFinished(_ string, status string) {
	r.statuses = append(r.statuses, status)
}

func newOctagonServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body["input"] == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"upstream down"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[{"content":[{"text":"analysis","annotations":[]}]}]}`))
	}))
	t.Cleanup(server.Close)

	return server
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	server := newOctagonServer(t)

	reg := registry.NewRegistry(log.Discard())
	reg.RegisterDefaultNodes(octagon.NewClient(octagon.WithBaseURL(server.URL)), nil)
	reg.RegisterNode(brokenFactory{})

	return reg
}

func newStore() *credentials.Store {
	store := credentials.NewStore()
	store.Set(octagonapi.Name, models.CredentialData{"apiKey": "test-key"})

	return store
}

func TestExecute_CountsItemOutcomes(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	rec := &recorder{}

	exec := executor.NewExecutor(newRegistry(t), newStore(),
		executor.WithPersistence(p),
		executor.WithRecorder(rec),
		executor.WithLogger(log.Discard()),
	)

	result, err := exec.Execute(context.Background(), executor.Request{
		NodeType:   octagonagents.NodeType,
		Parameters: map[string]any{"agent": "octagon-sec-agent", "query": "={{ .json.q }}"},
		Items: models.ItemsFromJSON([]map[string]any{
			{"q": "AAPL revenue"},
			{"q": "fail"},
			{"q": ""},
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, result.Status)
	assert.Equal(t, 1, result.SucceededItems)
	assert.Equal(t, 2, result.FailedItems)
	require.Len(t, result.Output, 3)
	assert.Equal(t, "analysis", result.Output[0].JSON["analysis"])
	assert.True(t, result.Output[1].IsFailure())
	assert.Equal(t, "fail", result.Output[1].JSON["query"])
	assert.NotNil(t, result.CompletedAt)
	assert.Equal(t, []string{"completed"}, rec.statuses)

	stored, err := p.ExecutionByID(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.FailedItems)
}

func TestExecute_UnknownNodeType(t *testing.T) {
	exec := executor.NewExecutor(newRegistry(t), newStore())

	_, err := exec.Execute(context.Background(), executor.Request{NodeType: "slack"})
	require.ErrorIs(t, err, registry.ErrNodeTypeNotRegistered)
}

func TestExecute_InvalidParameters(t *testing.T) {
	p := &mocks.MockPersistence{}
	exec := executor.NewExecutor(newRegistry(t), newStore(), executor.WithPersistence(p))

	_, err := exec.Execute(context.Background(), executor.Request{
		NodeType:   octagonagents.NodeType,
		Parameters: map[string]any{"agent": "not-an-agent", "query": "AAPL"},
	})

	var paramErr *registry.ParameterError
	require.ErrorAs(t, err, &paramErr)
	p.AssertNotCalled(t, "SaveExecution", mock.Anything, mock.Anything)
}

func TestExecute_NodeFailure(t *testing.T) {
	rec := &recorder{}
	exec := executor.NewExecutor(newRegistry(t), newStore(), executor.WithRecorder(rec))

	result, err := exec.Execute(context.Background(), executor.Request{
		NodeType: "broken",
		Items:    []models.Item{models.NewItem(0, map[string]any{})},
	})
	require.ErrorIs(t, err, executor.ErrNodeFailed)
	require.NotNil(t, result)
	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.Equal(t, "boom", result.ErrorMessage)
	assert.Equal(t, []string{"failed"}, rec.statuses)
}

func TestExecute_PersistenceFailure(t *testing.T) {
	p := &mocks.MockPersistence{}
	p.On("SaveExecution", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	bus := &mocks.MockEventBus{}

	exec := executor.NewExecutor(newRegistry(t), newStore(),
		executor.WithPersistence(p),
		executor.WithPublisher(bus),
	)

	_, err := exec.Execute(context.Background(), executor.Request{
		NodeType:   octagonagents.NodeType,
		Parameters: map[string]any{"query": "AAPL"},
		Items:      []models.Item{models.NewItem(0, map[string]any{})},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_PublishesCompletedEvent(t *testing.T) {
	bus := &mocks.MockEventBus{}

	var published events.ExecutionCompleted

	bus.On("Publish", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("events.ExecutionCompleted")).
		Run(func(args mock.Arguments) {
			published = args.Get(2).(events.ExecutionCompleted)
		}).
		Return(nil)

	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(2 * time.Second)}

	exec := executor.NewExecutor(newRegistry(t), newStore(),
		executor.WithPublisher(bus),
		executor.WithWorkerID("worker-1"),
		executor.WithClock(func() time.Time {
			now := ticks[0]
			if len(ticks) > 1 {
				ticks = ticks[1:]
			}

			return now
		}),
	)

	result, err := exec.Execute(context.Background(), executor.Request{
		NodeType:   octagonagents.NodeType,
		Parameters: map[string]any{"query": "AAPL revenue"},
		Items:      []models.Item{models.NewItem(0, map[string]any{})},
	})
	require.NoError(t, err)

	bus.AssertExpectations(t)
	assert.Equal(t, events.ExecutionCompletedEvent, published.Type)
	assert.Equal(t, result.ID, published.ExecutionID)
	assert.Equal(t, "worker-1", published.WorkerID)
	assert.Equal(t, 1, published.SucceededItems)
	assert.Equal(t, 2*time.Second, published.Duration)
}

func TestExecute_PublishFailureKeepsExecution(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	p := file.NewPersistence(t.TempDir())

	exec := executor.NewExecutor(newRegistry(t), newStore(),
		executor.WithPersistence(p),
		executor.WithPublisher(bus),
	)

	result, err := exec.Execute(context.Background(), executor.Request{
		NodeType:   octagonagents.NodeType,
		Parameters: map[string]any{"query": "AAPL revenue"},
		Items:      []models.Item{models.NewItem(0, map[string]any{})},
	})
	require.NoError(t, err)

	executions, err := p.Executions(context.Background(), persistence.ExecutionFilter{})
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, result.ID, executions[0].ID)
}
