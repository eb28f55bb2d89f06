// Package main provides the Octagon node API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/operion-octagon/pkg/eventbus"
	"github.com/dukex/operion-octagon/pkg/metrics"
	"github.com/dukex/operion-octagon/pkg/persistence"
	"github.com/dukex/operion-octagon/pkg/protocol"
	"github.com/dukex/operion-octagon/pkg/registry"
	"github.com/dukex/operion-octagon/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	runner      web.Runner
	credentials protocol.CredentialStore
	eventBus    eventbus.EventBus
	collector   *metrics.Collector
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	runner web.Runner,
	credentials protocol.CredentialStore,
	eventBus eventbus.EventBus,
	collector *metrics.Collector,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		runner:      runner,
		credentials: credentials,
		eventBus:    eventBus,
		collector:   collector,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.registry, a.runner, a.persistence, a.credentials, a.eventBus, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: handlers.Ready,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Octagon API")
	})

	n := app.Group("/nodes")
	n.Get("/", handlers.GetNodes)
	n.Get("/:type", handlers.GetNode)
	n.Post("/:type/execute", handlers.ExecuteNode)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)

	c := app.Group("/credentials")
	c.Get("/", handlers.GetCredentials)
	c.Post("/:name/test", handlers.TestCredential)

	if a.collector != nil {
		app.Get("/metrics", adaptor.HTTPHandler(a.collector.Handler()))
	}

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
