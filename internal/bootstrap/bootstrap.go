// Package bootstrap holds the fx graph shared by the API server and the
// report CLI.
package bootstrap

import (
	"context"
	"fmt"

	"crm-reports/internal/apps/crm"
	"crm-reports/internal/config"
	"crm-reports/internal/database"
	"crm-reports/internal/features/admin"
	"crm-reports/internal/features/file"
	"crm-reports/internal/features/module"
	"crm-reports/internal/features/notification"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/report"
	"crm-reports/internal/features/user"
	"crm-reports/internal/logger"
	"crm-reports/internal/metrics"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Core provides everything needed to run reports, without the HTTP server.
var Core = fx.Options(
	fx.Provide(
		// Load Config
		config.LoadConfig,

		// Initialize Database & Logger
		database.NewDatabase,
		logger.NewLogger,

		// Initialize Repository
		module.NewModuleRepository,
		record.NewRecordRepository,
		user.NewUserRepository,
		notification.NewNotificationRepository,
		report.NewSavedReportRepository,

		// Initialize Service
		module.NewModuleService,
		record.NewRecordSelector,
		user.NewIdentity,
		file.NewStorage,
		notification.NewHub,
		notification.NewNotificationService,
		metrics.NewMetrics,
		report.NewSavedReportStore,
		report.NewRunner,
		NewQueue,
		report.NewReportService,
		report.NewCleanupScheduler,

		// Registries
		admin.NewSite,
		report.NewRegistry,
		NewDiscovery,
		NewApps,

		// Interface Adapters
		func(s report.ReportService) report.Invoker { return s },
		func(s report.ReportService) report.Executor { return s },
	),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),
	fx.Invoke(Discover),
)

// NewApps lists the apps taking part in admin and report discovery. A
// REPORTS_CONFIG file contributes its declarative reports as one more app.
func NewApps(cfg *config.Config) ([]admin.App, error) {
	apps := []admin.App{crm.New()}
	if cfg.ReportsConfig != "" {
		p, err := report.LoadFile(cfg.ReportsConfig)
		if err != nil {
			return nil, err
		}
		apps = append(apps, p)
	}
	return apps, nil
}

func NewDiscovery(registry *report.Registry, site *admin.Site, invoker report.Invoker, cfg *config.Config, logger *zap.Logger) *report.Discovery {
	return report.NewDiscovery(registry, site, invoker, cfg.AppVerboseName, logger)
}

// Discover registers model admins first so report actions have somewhere to go.
func Discover(site *admin.Site, discovery *report.Discovery, apps []admin.App) error {
	if err := site.Autodiscover(apps); err != nil {
		return err
	}
	return discovery.Discover(context.Background(), apps)
}

// NewQueue picks the task broker. The redis client is only dialed when the
// redis broker is selected.
func NewQueue(lc fx.Lifecycle, cfg *config.Config, runner *report.Runner, logger *zap.Logger) (report.Queue, error) {
	switch cfg.ReportsBroker {
	case "", "inline":
		return report.NewInlineQueue(runner, logger), nil
	case "redis":
		client, err := database.NewRedis(lc, cfg)
		if err != nil {
			return nil, err
		}
		return report.NewRedisQueue(client, cfg.ReportsQueue), nil
	}
	return nil, fmt.Errorf("unknown reports broker %q", cfg.ReportsBroker)
}

// StartCleanup runs saved report retention for the lifetime of the app.
func StartCleanup(lc fx.Lifecycle, scheduler *report.CleanupScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

// RunWorker consumes queued tasks until the app stops. It is a no-op for
// queues that execute inline.
func RunWorker(lc fx.Lifecycle, queue report.Queue, exec report.Executor, logger *zap.Logger) {
	source, ok := queue.(report.TaskSource)
	if !ok {
		logger.Info("Report queue runs inline, no worker started")
		return
	}
	worker := report.NewWorker(source, exec, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := worker.Run(ctx); err != nil {
					logger.Error("Report worker exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
