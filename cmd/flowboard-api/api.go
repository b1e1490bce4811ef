// Package main provides the Flowboard API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/services"
	"github.com/flowboard/flowboard/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

// NewAPI wires the services on top of persistence. eventBus and tracer may be
// nil, in which case no events are published and spans are dropped.
func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) serviceOptions() []services.Option {
	opts := []services.Option{services.WithLogger(a.logger)}

	if a.eventBus != nil {
		opts = append(opts, services.WithEventBus(a.eventBus))
	}

	if a.tracer != nil {
		opts = append(opts, services.WithTracer(a.tracer))
	}

	return opts
}

func (a *API) App() *fiber.App {
	opts := a.serviceOptions()

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(a.persistence, opts...),
		services.NewEditor(a.persistence, opts...),
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return a.persistence.HealthCheck(c.Context()) == nil
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowboard API")
	})

	handlers.Register(app)

	return app
}

// Start subscribes the audit log to the event bus, when there is one, and
// serves HTTP until the listener fails.
func (a *API) Start(ctx context.Context, port int) error {
	if a.eventBus != nil {
		if err := subscribeAuditLog(ctx, a.eventBus, a.logger); err != nil {
			return err
		}
	}

	return a.App().Listen(":" + strconv.Itoa(port))
}
