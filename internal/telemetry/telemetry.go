// Package telemetry sets up OpenTelemetry tracing for the CLI.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Trace exporters understood by Init
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config controls tracing
type Config struct {
	ServiceName    string
	ServiceVersion string
	// TraceExporter is "none" or "stdout"; empty means none
	TraceExporter string
	// Writer receives stdout exporter output; nil means os.Stderr
	Writer io.Writer
}

// Init builds a tracer provider for cfg and installs it globally. The
// returned shutdown flushes pending spans and must be called before exit.
func Init(ctx context.Context, cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	if ctx == nil {
		return nil, nil, fmt.Errorf("telemetry: nil context")
	}

	switch cfg.TraceExporter {
	case "", ExporterNone:
		tp := noop.NewTracerProvider()
		return tp, func(context.Context) error { return nil }, nil

	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create exporter: %w", err)
		}

		res := resource.NewWithAttributes(
			"",
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		)
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		return tp, tp.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unknown trace exporter %q (want none or stdout)", cfg.TraceExporter)
	}
}
