package file

import (
	"context"
	"fmt"
	"strings"

	"crm-reports/internal/config"

	"go.uber.org/zap"
)

// NewStorage picks the backend from STORAGE_MODE (local or s3).
func NewStorage(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.StorageMode))
	switch mode {
	case "", StorageTypeLocal:
		logger.Info("Report storage ready", zap.String("mode", StorageTypeLocal), zap.String("path", cfg.FSPath))
		return NewLocalStorage(cfg.FSPath, cfg.FSURL)
	case StorageTypeS3:
		store, err := NewS3Storage(context.Background(), S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("STORAGE_MODE=s3 init failed: %w", err)
		}
		logger.Info("Report storage ready", zap.String("mode", StorageTypeS3), zap.String("bucket", cfg.S3Bucket))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", mode)
	}
}
