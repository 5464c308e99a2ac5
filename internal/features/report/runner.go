package report

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/config"
	"crm-reports/internal/features/module"
	"crm-reports/internal/features/notification"
	"crm-reports/internal/features/record"
	"crm-reports/internal/features/user"
	"crm-reports/internal/metrics"

	"go.uber.org/zap"
)

// Runner executes report runs and tells the user how they went. It is the
// outermost boundary of a run: nothing escapes it unlogged.
type Runner struct {
	registry *Registry
	selector record.Selector
	fields   FieldSource
	store    SavedReportStore
	notifier notification.NotificationService
	identity user.Identity
	metrics  *metrics.Metrics
	section  string
	logger   *zap.Logger
	now      func() time.Time
}

func NewRunner(
	registry *Registry,
	selector record.Selector,
	modules module.ModuleService,
	store SavedReportStore,
	notifier notification.NotificationService,
	identity user.Identity,
	metrics *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		registry: registry,
		selector: selector,
		fields:   modules,
		store:    store,
		notifier: notifier,
		identity: identity,
		metrics:  metrics,
		section:  cfg.AppVerboseName,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Runner) Execute(ctx context.Context, params Params) (saved *SavedReport, err error) {
	start := r.now()
	if params.TenantID != "" {
		ctx = context.WithValue(ctx, models.TenantIDKey, params.TenantID)
	}
	log := r.logger.With(
		zap.String("report", params.Report),
		zap.String("module", params.ModelName),
		zap.String("user_id", params.UserID),
	)

	var rep *Report
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("report panicked: %v", p)
			log.Error("Report run panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
		if err != nil {
			saved = nil
			r.fail(ctx, log, params, rep, err, start)
		}
	}()

	def, err := r.registry.Resolve(params.ModelName, params.Report)
	if err != nil {
		return nil, err
	}
	sel, err := r.selector.Select(ctx, params.Query)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	rep = NewReport(def, params, Deps{
		Fields: r.fields,
		Store:  r.store,
		Logger: r.logger,
		Now:    r.now,
	})
	saved, err = rep.Run(ctx, sel)
	if err != nil {
		return nil, err
	}

	r.succeed(ctx, log, rep, saved, start)
	return saved, nil
}

func (r *Runner) succeed(ctx context.Context, log *zap.Logger, rep *Report, saved *SavedReport, start time.Time) {
	log.Info("Report completed",
		zap.String("file", saved.FileName),
		zap.Int("rows", saved.RowCount),
		zap.Int("skipped", saved.SkippedRows))
	if r.metrics != nil {
		r.metrics.ObserveRun(rep.def.Name, "success", r.now().Sub(start), saved.RowCount, saved.SkippedRows)
	}

	params := rep.Params()
	_, err := r.notifier.MessageUser(ctx, notification.Message{
		UserID:     params.UserID,
		Title:      rep.def.Name,
		Text:       successMessage(r.section, saved.URL),
		Type:       notification.NotificationTypeSuccess,
		Link:       saved.URL,
		Safe:       true,
		Recipients: r.identity.Emails(ctx, params.UserID),
	})
	if err != nil {
		log.Error("Failed to notify report success", zap.Error(err))
	}
	rep.state = StateNotified
}

func (r *Runner) fail(ctx context.Context, log *zap.Logger, params Params, rep *Report, err error, start time.Time) {
	log.Error("Report failed",
		zap.String("app", params.AppLabel),
		zap.String("tenant_id", params.TenantID),
		zap.Strings("ids", params.Query.IDs),
		zap.Error(err))
	if r.metrics != nil {
		r.metrics.ObserveRun(params.Report, "error", r.now().Sub(start), 0, 0)
	}

	_, nerr := r.notifier.MessageUser(ctx, notification.Message{
		UserID:     params.UserID,
		Title:      params.Report,
		Text:       failureMessage,
		Type:       notification.NotificationTypeError,
		Recipients: r.identity.Emails(ctx, params.UserID),
	})
	if nerr != nil {
		log.Error("Failed to notify report failure", zap.Error(nerr))
	}
	if rep != nil {
		rep.state = StateNotifiedFailure
	}
}
