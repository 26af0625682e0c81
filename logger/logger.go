package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// nolint:gochecknoglobals
var (
	Instance *zap.Logger
	level    zap.AtomicLevel
)

const defaultLevel = zap.InfoLevel

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "":
		return defaultLevel, nil
	case "debug":
		return zap.DebugLevel, nil
	case "info":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	case "fatal":
		return zap.FatalLevel, nil
	}

	return defaultLevel, fmt.Errorf("unknown log level '%s'", s)
}

// nolint:gochecknoinits
func init() {
	l, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		l = defaultLevel
	}

	level = zap.NewAtomicLevelAt(l)

	// Logs go to stderr, leaving stdout to the command summaries.
	Instance = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:        "ts",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "message",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.CapitalLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			}),
			zapcore.Lock(os.Stderr),
			level,
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.FatalLevel),
	)

	Instance.Debug("logger created", zap.String("log_level", l.String()))
}

// Changes the level of the process-wide logger, e.g. from the configuration.
func SetLevel(s string) error {
	l, err := parseLevel(s)
	if err != nil {
		return err
	}

	level.SetLevel(l)
	return nil
}

func Debug(msg string, fields ...zap.Field) {
	Instance.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Instance.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Instance.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Instance.Error(msg, fields...)
}

// Flushes buffered logs. Errors syncing a terminal are ignored.
func Sync() {
	_ = Instance.Sync()
}
