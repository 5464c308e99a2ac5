package report

import (
	"context"
	"fmt"
	"time"

	"crm-reports/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupScheduler deletes saved reports past their retention period.
type CleanupScheduler struct {
	service   ReportService
	schedule  string
	retention time.Duration
	scheduler *cron.Cron
	logger    *zap.Logger
}

func NewCleanupScheduler(service ReportService, cfg *config.Config, logger *zap.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		service:   service,
		schedule:  cfg.ReportsCleanupSchedule,
		retention: time.Duration(cfg.ReportsRetentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

func (s *CleanupScheduler) Start() error {
	if s.retention <= 0 || s.schedule == "" {
		s.logger.Info("Saved report cleanup disabled")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}

	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule report cleanup: %w", err)
	}
	s.scheduler.Start()
	s.logger.Info("Saved report cleanup scheduled",
		zap.String("schedule", s.schedule),
		zap.Duration("retention", s.retention))
	return nil
}

func (s *CleanupScheduler) Stop() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
}

func (s *CleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	removed, err := s.service.Cleanup(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.logger.Error("Saved report cleanup incomplete", zap.Int("removed", removed), zap.Error(err))
		return
	}
	s.logger.Info("Saved report cleanup finished", zap.Int("removed", removed))
}
