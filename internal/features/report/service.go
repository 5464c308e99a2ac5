package report

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/common/models"
	"crm-reports/internal/config"
	"crm-reports/internal/features/admin"
	"crm-reports/internal/metrics"

	"go.uber.org/zap"
)

type ReportService interface {
	Invoker
	Executor
	Definitions() []DefinitionView
	ListSaved(ctx context.Context, filter SavedReportFilter) ([]SavedReport, int64, error)
	GetSaved(ctx context.Context, id string) (*SavedReport, error)
	Download(ctx context.Context, id string) (*SavedReport, []byte, error)
	DeleteSaved(ctx context.Context, id string) error
	Cleanup(ctx context.Context, cutoff time.Time) (int, error)
}

type ReportServiceImpl struct {
	registry *Registry
	runner   *Runner
	queue    Queue
	repo     SavedReportRepository
	store    SavedReportStore
	metrics  *metrics.Metrics
	async    bool
	appLabel string
	logger   *zap.Logger
}

func NewReportService(
	registry *Registry,
	runner *Runner,
	queue Queue,
	repo SavedReportRepository,
	store SavedReportStore,
	metrics *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) ReportService {
	return &ReportServiceImpl{
		registry: registry,
		runner:   runner,
		queue:    queue,
		repo:     repo,
		store:    store,
		metrics:  metrics,
		async:    cfg.ReportsAsync,
		appLabel: cfg.AppId,
		logger:   logger,
	}
}

// Invoke checks the selection size, then runs the report in the request or
// queues it. A failed run is reported in the Outcome, not as an error.
func (s *ReportServiceImpl) Invoke(ctx context.Context, def *Definition, req admin.ActionRequest) (*Outcome, error) {
	if req.Selection == nil {
		return nil, fmt.Errorf("report %q invoked without a selection", def.Name)
	}

	count, err := req.Selection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count selection: %w", err)
	}

	params := Params{
		Report:    def.Name,
		UserID:    req.UserID,
		TenantID:  req.TenantID,
		AppLabel:  s.appLabel,
		ModelName: req.Module,
	}
	rep := NewReport(def, params, Deps{Logger: s.logger})
	if !rep.CheckLimit(count) {
		return s.limited(def, count), nil
	}

	ids, err := req.Selection.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	// the selection may have grown since it was counted
	if !rep.CheckLimit(int64(len(ids))) {
		return s.limited(def, int64(len(ids))), nil
	}
	if len(ids) == 0 {
		s.logger.Info("Report selection is empty", zap.String("report", def.Name), zap.String("module", req.Module))
		return &Outcome{Ran: false, Reason: ReasonEmpty}, nil
	}
	params.Query = req.Selection.Query().ByIDs(ids)
	params.Query.PrefetchRelated = def.PrefetchRelated

	if def.Async || s.async {
		task := NewTask(params)
		if err := s.queue.Enqueue(ctx, task); err != nil {
			return nil, fmt.Errorf("enqueue report: %w", err)
		}
		if s.metrics != nil {
			s.metrics.TaskEnqueued(def.Name)
		}
		return &Outcome{Ran: true, Queued: true, TaskID: task.ID}, nil
	}

	saved, err := s.runner.Execute(ctx, params)
	if err != nil {
		return &Outcome{Ran: true, Reason: ReasonFailed}, nil
	}
	return &Outcome{Ran: true, Saved: saved}, nil
}

func (s *ReportServiceImpl) limited(def *Definition, selected int64) *Outcome {
	s.logger.Info("Report selection over limit",
		zap.String("report", def.Name),
		zap.Int64("selected", selected),
		zap.Int("max_records", def.MaxRecords))
	if s.metrics != nil {
		s.metrics.Limited(def.Name)
	}
	return &Outcome{Ran: false, Reason: ReasonLimit}
}

func (s *ReportServiceImpl) Execute(ctx context.Context, params Params) (*SavedReport, error) {
	return s.runner.Execute(ctx, params)
}

func (s *ReportServiceImpl) Definitions() []DefinitionView {
	return s.registry.Views()
}

func (s *ReportServiceImpl) ListSaved(ctx context.Context, filter SavedReportFilter) ([]SavedReport, int64, error) {
	return s.repo.List(ctx, filter)
}

// GetSaved, Download and DeleteSaved only see reports of the tenant bound
// to ctx.
func (s *ReportServiceImpl) GetSaved(ctx context.Context, id string) (*SavedReport, error) {
	return s.repo.Get(ctx, contextTenant(ctx), id)
}

func (s *ReportServiceImpl) Download(ctx context.Context, id string) (*SavedReport, []byte, error) {
	saved, err := s.repo.Get(ctx, contextTenant(ctx), id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.Open(ctx, saved)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", saved.FileName, err)
	}
	return saved, data, nil
}

func (s *ReportServiceImpl) DeleteSaved(ctx context.Context, id string) error {
	saved, err := s.repo.Get(ctx, contextTenant(ctx), id)
	if err != nil {
		return err
	}
	return s.store.Remove(ctx, saved)
}

// Cleanup removes saved reports created before cutoff. It keeps going past
// individual failures and returns the first one.
func (s *ReportServiceImpl) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := s.repo.FindOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	removed := 0
	var firstErr error
	for i := range expired {
		if err := s.store.Remove(ctx, &expired[i]); err != nil {
			s.logger.Warn("Failed to remove expired report",
				zap.String("id", expired[i].ID.Hex()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

func contextTenant(ctx context.Context) string {
	tenant, _ := ctx.Value(models.TenantIDKey).(string)
	return tenant
}
