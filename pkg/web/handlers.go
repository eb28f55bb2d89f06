package web

import (
	"context"
	"errors"
	"strconv"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/executor"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type Runner interface {
	Execute(ctx context.Context, req executor.Request) (*models.Execution, error)
}

type APIHandlers struct {
	registry    *registry.Registry
	runner      Runner
	persistence persistence.Persistence
	credentials protocol.CredentialStore
	publisher   eventbus.EventPublisher
	validator   *validator.Validate
}

// NewAPIHandlers wires the handlers. A nil publisher disables async execution.
func NewAPIHandlers(
	registry *registry.Registry,
	runner Runner,
	persistence persistence.Persistence,
	credentials protocol.CredentialStore,
	publisher eventbus.EventPublisher,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		registry:    registry,
		runner:      runner,
		persistence: persistence,
		credentials: credentials,
		publisher:   publisher,
		validator:   validator,
	}
}

func (h *APIHandlers) GetNodes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	nodes := make([]NodeSummary, 0, len(factories))
	for _, factory := range factories {
		nodes = append(nodes, TransformNodeSummary(factory))
	}

	return c.JSON(nodes)
}

func (h *APIHandlers) GetNode(c fiber.Ctx) error {
	nodeType := c.Params("type")

	factory, ok := h.registry.GetNodeFactory(nodeType)
	if !ok {
		return notFound(c, "node_not_found", "node type not found")
	}

	node, err := factory.Create(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(NodeResponse{
		NodeSummary: TransformNodeSummary(factory),
		Definition:  node.Describe(),
	})
}

func (h *APIHandlers) ExecuteNode(c fiber.Ctx) error {
	nodeType := c.Params("type")

	var req ExecuteNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	items := models.ItemsFromJSON(req.Items)
	if len(items) == 0 {
		items = []models.Item{{JSON: map[string]any{}}}
	}

	if req.Async {
		return h.enqueue(c, nodeType, req.Parameters, items)
	}

	execution, err := h.runner.Execute(c.Context(), executor.Request{
		NodeType:   nodeType,
		Parameters: req.Parameters,
		Items:      items,
	})
	if err != nil {
		if errors.Is(err, executor.ErrNodeFailed) && execution != nil {
			return c.JSON(execution)
		}

		return handleError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) enqueue(c fiber.Ctx, nodeType string, parameters map[string]any, items []models.Item) error {
	if h.publisher == nil {
		return badRequest(c, "Async execution is not available")
	}

	if err := h.registry.ValidateParameters(nodeType, parameters); err != nil {
		return handleError(c, err)
	}

	event := events.ExecutionRequested{
		BaseEvent:  events.NewBaseEvent(events.ExecutionRequestedEvent),
		NodeType:   nodeType,
		Parameters: parameters,
		Items:      items,
	}

	if err := h.publisher.Publish(c.Context(), nodeType, event); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(ExecutionAccepted{
		EventID:  event.ID,
		NodeType: nodeType,
		Items:    len(items),
	})
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	filter := persistence.ExecutionFilter{
		NodeType: c.Query("node_type"),
		Status:   models.ExecutionStatus(c.Query("status")),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return badRequest(c, "Invalid query parameters: limit must be a non-negative integer")
		}

		filter.Limit = limit
	}

	executions, err := h.persistence.Executions(c.Context(), filter)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.persistence.ExecutionByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetCredentials(c fiber.Ctx) error {
	types := h.registry.GetCredentialTypes()

	credentials := make([]CredentialResponse, 0, len(types))
	for _, credentialType := range types {
		_, err := h.credentials.Get(c.Context(), credentialType.Describe().Name)
		credentials = append(credentials, TransformCredentialResponse(credentialType, err == nil))
	}

	return c.JSON(credentials)
}

// TestCredential runs the credential type's test request and always answers
// 200 with the result once the credential data is known.
func (h *APIHandlers) TestCredential(c fiber.Ctx) error {
	name := c.Params("name")

	credentialType, err := h.registry.GetCredentialType(name)
	if err != nil {
		return handleError(c, err)
	}

	var req TestCredentialRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	data := models.CredentialData(req.Data)
	if len(data) == 0 {
		data, err = h.credentials.Get(c.Context(), name)
		if err != nil {
			return badRequest(c, "Credential '"+name+"' is not configured")
		}
	}

	return c.JSON(credentialType.Test(c.Context(), data))
}

// Ready reports whether the execution store is reachable.
func (h *APIHandlers) Ready(c fiber.Ctx) bool {
	return h.persistence.HealthCheck(c.Context()) == nil
}
