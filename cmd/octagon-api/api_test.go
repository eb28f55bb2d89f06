package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-octagon/pkg/channels/gochannel"
	"github.com/dukex/operion-octagon/pkg/credentials"
	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/metrics"
	"github.com/dukex/operion-octagon/pkg/mocks"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/persistence/file"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/dukex/operion-octagon/pkg/worker"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app         *fiber.App
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	executor    *executor.Executor
}

func setupTestApp(t *testing.T, p persistence.Persistence) *testEnv {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[{"content":[{"text":"ok","annotations":[]}]}]}`))
	}))
	t.Cleanup(server.Close)

	if p == nil {
		p = file.NewPersistence(t.TempDir())
	}

	collector := metrics.NewCollector()

	reg := registry.NewRegistry(log.Discard())
	reg.RegisterDefaultNodes(octagon.NewClient(octagon.WithBaseURL(server.URL)), collector)

	store := credentials.NewStore()
	store.Set(octagonapi.Name, models.CredentialData{"apiKey": "test-key"})

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, log.Discard())
	t.Cleanup(func() { _ = bus.Close() })

	exec := executor.NewExecutor(reg, store,
		executor.WithPersistence(p),
		executor.WithRecorder(collector),
		executor.WithLogger(log.Discard()),
	)

	api := NewAPI(log.Discard(), p, reg, exec, store, bus, collector)

	return &testEnv{app: api.App(), persistence: p, eventBus: bus, executor: exec}
}

func (env *testEnv) do(t *testing.T, method, target, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.app.Test(req, fiber.TestConfig{Timeout: 0})
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestAPI_RootEndpoint(t *testing.T) {
	env := setupTestApp(t, nil)

	status, body := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Octagon API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	env := setupTestApp(t, nil)

	status, body := env.do(t, http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, _ = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_ReadinessFailsWithoutStore(t *testing.T) {
	p := &mocks.MockPersistence{}
	p.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	env := setupTestApp(t, p)

	status, _ := env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPI_MetricsAfterExecution(t *testing.T) {
	env := setupTestApp(t, nil)

	status, _ := env.do(t, http.MethodPost, "/nodes/octagonAgents/execute",
		`{"parameters":{"agent":"octagon-sec-agent","query":"AAPL revenue"}}`)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `octagon_items_total{agent="octagon-sec-agent",outcome="success"} 1`)
	assert.Contains(t, string(body), `octagon_executions_total{node_type="octagonAgents",status="completed"} 1`)
}

func TestAPI_AsyncExecutionRunsOnWorker(t *testing.T) {
	env := setupTestApp(t, nil)

	w := worker.NewWorker("worker-test", env.executor, env.eventBus, log.Discard())
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop(context.Background()) })

	status, body := env.do(t, http.MethodPost, "/nodes/octagonAgents/execute",
		`{"parameters":{"query":"AAPL revenue"},"items":[{"n":1},{"n":2}],"async":true}`)
	require.Equal(t, http.StatusAccepted, status, string(body))

	require.Eventually(t, func() bool {
		executions, err := env.persistence.Executions(context.Background(), persistence.ExecutionFilter{
			Status: models.ExecutionStatusCompleted,
		})

		return err == nil && len(executions) == 1 && executions[0].SucceededItems == 2
	}, 5*time.Second, 50*time.Millisecond)

	status, body = env.do(t, http.MethodGet, "/executions", "")
	require.Equal(t, http.StatusOK, status)

	var list struct {
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.TotalCount)
}
