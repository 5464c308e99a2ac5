package logger

import (
	"context"

	"crm-reports/internal/config"
	"crm-reports/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the console logger, tees it into a rotated file when
// LOG_FILE is set and wraps the result so entries are also shipped to mongo.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	baseLogger, err := newBaseLogger(cfg)
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = baseLogger.Sync()
			return dbWriter.Close(ctx)
		},
	})

	finalCore := NewDBCore(baseLogger.Core(), dbWriter)
	return zap.New(finalCore, zap.AddCaller()), nil
}

// NewConsoleLogger is used by the CLI where no database is wired yet.
func NewConsoleLogger(cfg *config.Config) (*zap.Logger, error) {
	baseLogger, err := newBaseLogger(cfg)
	if err != nil {
		return nil, err
	}
	return baseLogger.WithOptions(zap.AddCaller()), nil
}

func newBaseLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Important: Enable Caller to get Function Name
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		return baseLogger, nil
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapConfig.EncoderConfig),
		zapcore.AddSync(writer),
		zapConfig.Level,
	)
	return zap.New(zapcore.NewTee(baseLogger.Core(), fileCore)), nil
}
