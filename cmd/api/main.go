package main

import (
	"context"
	"fmt"
	"log"

	"crm-reports/internal/bootstrap"
	common_api "crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/database"
	"crm-reports/internal/features/admin"
	"crm-reports/internal/features/file"
	"crm-reports/internal/features/notification"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/system"
	"crm-reports/internal/metrics"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartInProcessWorker consumes queued reports inside the API process when
// REPORTS_INPROCESS_WORKER is set.
func StartInProcessWorker(lc fx.Lifecycle, cfg *config.Config, queue report.Queue, exec report.Executor, logger *zap.Logger) {
	if cfg.ReportsInProcessWorker {
		bootstrap.RunWorker(lc, queue, exec, logger)
	}
}

func main() {
	app := fx.New(
		bootstrap.Core,
		fx.Provide(
			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Controller
			admin.NewAdminController,
			report.NewReportController,
			notification.NewNotificationController,
			func(db *database.MongodbDB, registry *report.Registry) *system.SystemController {
				return system.NewSystemController(db, registry)
			},

			// Initialize API Routes
			AsRoute(admin.NewAdminApi),
			AsRoute(report.NewReportApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(file.NewFileApi),
			AsRoute(metrics.NewMetricsApi),
			AsRoute(system.NewSystemApi),
		),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			bootstrap.StartCleanup,
			StartInProcessWorker,
		),
	)

	app.Run()
}
