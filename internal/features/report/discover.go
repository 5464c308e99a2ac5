package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"crm-reports/internal/features/admin"

	"go.uber.org/zap"
)

// ReportProvider is implemented by apps that ship reports.
type ReportProvider interface {
	admin.App
	RegisterReports(reg *Registry) error
}

// Discovery collects reports from apps and turns them into admin actions.
// It runs once; later calls return the first result.
type Discovery struct {
	registry *Registry
	site     *admin.Site
	invoker  Invoker
	section  string
	logger   *zap.Logger

	once sync.Once
	err  error
}

func NewDiscovery(registry *Registry, site *admin.Site, invoker Invoker, section string, logger *zap.Logger) *Discovery {
	return &Discovery{
		registry: registry,
		site:     site,
		invoker:  invoker,
		section:  section,
		logger:   logger,
	}
}

func (d *Discovery) Discover(ctx context.Context, apps []admin.App) error {
	d.once.Do(func() {
		d.err = d.discover(ctx, apps)
	})
	return d.err
}

func (d *Discovery) discover(ctx context.Context, apps []admin.App) error {
	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, ok := app.(ReportProvider)
		if !ok {
			d.logger.Debug("App has no reports", zap.String("app", app.Label()))
			continue
		}
		if err := p.RegisterReports(d.registry); err != nil {
			return fmt.Errorf("report discovery for %s: %w", app.Label(), err)
		}
	}
	d.registry.Seal()
	d.addActions()
	return nil
}

func (d *Discovery) addActions() {
	for _, model := range d.registry.Models() {
		for _, def := range d.registry.For(model) {
			added, err := d.site.AddModelAction(model, NewAction(def, d.invoker, d.section))
			switch {
			case errors.Is(err, admin.ErrNotRegistered):
				d.logger.Warn("Report module has no admin", zap.String("module", model), zap.String("report", def.Name))
			case err != nil:
				d.logger.Error("Could not add report action", zap.String("module", model), zap.String("report", def.Name), zap.Error(err))
			case !added:
				d.logger.Debug("Report action already present", zap.String("module", model), zap.String("report", def.Name))
			}
		}
	}
	for _, def := range d.registry.Globals() {
		if !d.site.AddAction(NewAction(def, d.invoker, d.section)) {
			d.logger.Debug("Global report action already present", zap.String("report", def.Name))
		}
	}
}
