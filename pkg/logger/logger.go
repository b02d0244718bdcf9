package logger

import (
	"pos-service/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// InitLogger initializes the logger with configuration
func InitLogger(config *config.Config) error {
	l, err := New(config.Log.Level, config.Server.Env, config.LogConfig()...)
	if err != nil {
		return err
	}

	log = l
	// Replace the global logger
	zap.ReplaceGlobals(log)
	return nil
}

// New builds a zap logger for the given level and environment without touching the globals
func New(logLevel, env string, fields ...zap.Field) (*zap.Logger, error) {
	var level zapcore.Level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	if env == "production" {
		prodConfig := zap.NewProductionConfig()
		prodConfig.Level = zap.NewAtomicLevelAt(level)
		prodConfig.EncoderConfig.TimeKey = "timestamp"
		prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return prodConfig.Build(zap.Fields(fields...))
	}

	// Development logger configuration with colors and human-friendly output
	devConfig := zap.NewDevelopmentConfig()
	devConfig.Level = zap.NewAtomicLevelAt(level)
	devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return devConfig.Build(zap.Fields(fields...))
}

// GetLogger returns the global logger instance, falling back to zap.L() before InitLogger runs
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.L()
	}
	return log
}
