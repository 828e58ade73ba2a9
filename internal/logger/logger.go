package logger

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global = zap.NewNop().Sugar()

// Config holds logging configuration.
type Config struct {
	Level   string // DEBUG, INFO, WARN, ERROR
	Format  string // json or console
	Tracing bool
}

// LoadConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_TRACING_ENABLED.
func LoadConfigFromEnv() Config {
	return Config{
		Level:   getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:  getEnvOrDefault("LOG_FORMAT", "console"),
		Tracing: getEnvOrDefault("LOG_TRACING_ENABLED", "false") == "true",
	}
}

// Init builds the global logger. Tracing is initialised separately by InitTracing.
func Init(cfg Config) error {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zc.DisableStacktrace = true

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	global = l.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = global.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// traceFields extracts trace and span ids from ctx.
func traceFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func with(ctx context.Context, kv []any) []any {
	if tf := traceFields(ctx); tf != nil {
		return append(tf, kv...)
	}
	return kv
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, kv ...any) {
	global.Debugw(msg, with(ctx, kv)...)
}

// Info logs an info message.
func Info(ctx context.Context, msg string, kv ...any) {
	global.Infow(msg, with(ctx, kv)...)
}

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, kv ...any) {
	global.Warnw(msg, with(ctx, kv)...)
}

// Error logs an error message.
func Error(ctx context.Context, msg string, kv ...any) {
	global.Errorw(msg, with(ctx, kv)...)
}

// Fatal logs and exits.
func Fatal(msg string, kv ...any) {
	global.Fatalw(msg, kv...)
}
