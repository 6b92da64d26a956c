package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the narrow logging surface components depend on. It is
// satisfied by *zap.SugaredLogger; tests pass zap.NewNop().Sugar().
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NewLogger builds a zap sugared logger from the logging config.
// Level "off" (or an empty file with no level) returns a no-op logger.
func NewLogger(cfg LoggingConfig) (*zap.SugaredLogger, error) {
	level, off := parseLevel(cfg.Level)
	if off {
		return zap.NewNop().Sugar(), nil
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.File != "" {
		zcfg.OutputPaths = []string{ExpandHome(cfg.File)}
		zcfg.ErrorOutputPaths = []string{ExpandHome(cfg.File)}
	} else {
		zcfg.OutputPaths = []string{"stderr"}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func parseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return zapcore.InvalidLevel, true
	case "debug":
		return zapcore.DebugLevel, false
	case "info":
		return zapcore.InfoLevel, false
	case "warn":
		return zapcore.WarnLevel, false
	case "error", "":
		return zapcore.ErrorLevel, false
	default:
		return zapcore.ErrorLevel, false
	}
}
