// Package observability wires the process-wide slog default logger.
//
// Plain text/json handlers write to stderr; the otlp, otlp-grpc and stdout
// formats bridge slog into an OpenTelemetry log pipeline with a minimum
// severity filter, for deployments that ship logs to a collector.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// loggerName identifies this module in bridged OpenTelemetry log records.
const loggerName = "envauth"

// Instrument sets up the slog default logger according to format:
// "text" and "json" write directly to stderr, "otlp" exports over OTLP/HTTP,
// "otlp-grpc" over OTLP/gRPC, and "stdout" writes OpenTelemetry records to
// standard output. Records below level are dropped.
func Instrument(level slog.Level, format string) error {
	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	case "otlp", "otlp-grpc", "stdout":
		return instrumentOtel(level, format)
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}
}

func instrumentOtel(level slog.Level, format string) error {
	exporter, err := newExporter(context.Background(), format)
	if err != nil {
		return fmt.Errorf("creating log exporter: %w", err)
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))

	global.SetLoggerProvider(provider)
	slog.SetDefault(otelslog.NewLogger(loggerName, otelslog.WithLoggerProvider(provider)))
	return nil
}

func newExporter(ctx context.Context, format string) (sdklog.Exporter, error) {
	switch format {
	case "otlp":
		return otlploghttp.New(ctx)
	case "otlp-grpc":
		return otlploggrpc.New(ctx)
	case "stdout":
		return stdoutlog.New()
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// severity maps slog levels onto the minimum-severity filter.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level >= slog.LevelError:
		return minsev.SeverityError
	case level >= slog.LevelWarn:
		return minsev.SeverityWarn
	case level >= slog.LevelInfo:
		return minsev.SeverityInfo
	default:
		return minsev.SeverityDebug
	}
}
