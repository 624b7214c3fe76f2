package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// InitLogger builds the process-wide logger for the given environment:
// JSON with ISO8601 timestamps in production, colored console output
// everywhere else.
func InitLogger(env string) error {
	l, err := buildLogger(env)
	if err != nil {
		return err
	}

	logger = l
	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger, falling back to a development
// logger when InitLogger has not run (tests).
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
