// Package main provides the Tramio API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/tramio/tramio/pkg/assignment"
	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/engine"
	"github.com/tramio/tramio/pkg/eventbus"
	"github.com/tramio/tramio/pkg/inbox"
	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/visualization"
	"github.com/tramio/tramio/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *automation.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *automation.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	resolver := assignment.NewResolver(a.persistence, a.logger)
	runner := automation.NewRunner(a.registry, a.logger)
	eng := engine.New(a.persistence, resolver, runner, a.eventBus, a.logger)
	taskInbox := inbox.New(a.persistence, a.logger)
	reader := visualization.NewReader(a.persistence)

	handlers := web.NewAPIHandlers(eng, taskInbox, reader, a.persistence, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Tramio API")
	})

	p := app.Group("/processes")
	p.Post("/", handlers.StartProcess)
	p.Get("/:id", handlers.GetProcess)
	p.Get("/:id/view", handlers.GetProcessView)
	p.Post("/:id/advance", handlers.AdvanceProcess)
	p.Post("/:id/complete", handlers.CompleteProcess)
	p.Post("/:id/attend-all", handlers.AttendAll)
	p.Put("/:id/activities/:activityId/data", handlers.SaveProcessData)
	p.Get("/:id/activities/:activityId/data", handlers.GetProcessData)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)

	app.Get("/inbox/:userId", handlers.GetInbox)
	app.Get("/monitoring/automation-failures", handlers.GetAutomationFailures)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
