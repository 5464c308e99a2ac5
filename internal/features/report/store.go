package report

import (
	"context"
	"errors"
	"fmt"
	"path"

	"crm-reports/internal/config"
	"crm-reports/internal/features/file"
	"crm-reports/internal/features/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveRequest is a rendered report ready to be stored.
type SaveRequest struct {
	Report      string
	Module      string
	UserID      string
	TenantID    string
	FileName    string
	ContentType string
	Data        []byte
	RowCount    int
	SkippedRows int
}

// SavedReportStore keeps report files and their metadata together.
type SavedReportStore interface {
	Save(ctx context.Context, req SaveRequest) (*SavedReport, error)
	Open(ctx context.Context, saved *SavedReport) ([]byte, error)
	Remove(ctx context.Context, saved *SavedReport) error
}

type SavedReportStoreImpl struct {
	repo     SavedReportRepository
	storage  file.Storage
	identity user.Identity
	folder   string
	logger   *zap.Logger
}

func NewSavedReportStore(repo SavedReportRepository, storage file.Storage, identity user.Identity, cfg *config.Config, logger *zap.Logger) SavedReportStore {
	return &SavedReportStoreImpl{
		repo:     repo,
		storage:  storage,
		identity: identity,
		folder:   cfg.ReportsFolder,
		logger:   logger,
	}
}

// Save writes the file under <folder>/<uuid>/<filename> and records it.
func (s *SavedReportStoreImpl) Save(ctx context.Context, req SaveRequest) (*SavedReport, error) {
	key := path.Join(s.folder, uuid.NewString(), req.FileName)
	f, err := s.storage.Put(ctx, key, req.Data, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	saved := &SavedReport{
		TenantID:    req.TenantID,
		Report:      req.Report,
		Module:      req.Module,
		RunBy:       req.UserID,
		FileName:    req.FileName,
		FileKey:     f.Key,
		URL:         f.URL,
		ContentType: req.ContentType,
		StorageType: f.StorageType,
		SizeBytes:   f.Size,
		RowCount:    req.RowCount,
		SkippedRows: req.SkippedRows,
	}
	if emails := s.identity.Emails(ctx, req.UserID); len(emails) > 0 && req.UserID != "" {
		saved.RunByEmail = emails[0]
	}

	if err := s.repo.Create(ctx, saved); err != nil {
		if delErr := s.storage.Delete(ctx, f.Key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned report file", zap.String("key", f.Key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("record saved report: %w", err)
	}
	return saved, nil
}

func (s *SavedReportStoreImpl) Open(ctx context.Context, saved *SavedReport) ([]byte, error) {
	return s.storage.Get(ctx, saved.FileKey)
}

// Remove deletes the file first; a file that is already gone is not an error.
func (s *SavedReportStoreImpl) Remove(ctx context.Context, saved *SavedReport) error {
	if err := s.storage.Delete(ctx, saved.FileKey); err != nil && !errors.Is(err, file.ErrFileNotFound) {
		return fmt.Errorf("delete file: %w", err)
	}
	return s.repo.Delete(ctx, saved.TenantID, saved.ID.Hex())
}
