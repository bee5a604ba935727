package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production json logger. LOG_LEVEL (debug, info, warn, error) overrides the level.
func New() (*zap.Logger, error) {
	return NewWithLevel(os.Getenv("LOG_LEVEL"))
}

func NewWithLevel(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "time"
	config.DisableStacktrace = true

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	return config.Build()
}
