// Package tracing wires the OpenTelemetry tracer provider used by satlens.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/satlens/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation scope for every satlens span.
const TracerName = "github.com/okian/satlens"

const shutdownTimeout = 5 * time.Second

// Config governs how tracing is initialised.
type Config struct {
	Enabled     bool
	ServiceName string
	// Exporter is "stdout" (default) or "none".
	Exporter    string
	SampleRatio float64
	// Writer receives stdout exporter output; defaults to os.Stdout.
	Writer io.Writer
}

// Init installs a tracer provider and propagators. The returned function
// flushes and stops the provider.
func Init(ctx context.Context, cfg Config, log logger.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logger.Nop()
	}

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		log.Debug(ctx, "tracing disabled; using noop tracer provider")
		return func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "satlens"
	}
	if cfg.SampleRatio <= 0 || cfg.SampleRatio > 1 {
		cfg.SampleRatio = 1
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	opts = append(opts, sdktrace.WithResource(res))

	switch strings.ToLower(cfg.Exporter) {
	case "", "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	case "none":
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info(ctx, "tracing enabled",
		logger.String("exporter", cfg.Exporter),
		logger.String("service_name", cfg.ServiceName),
		logger.Float64("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

// Tracer returns the satlens tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Shutdown runs shutdown with a bounded timeout and logs failures.
func Shutdown(ctx context.Context, shutdown func(context.Context) error, log logger.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logger.Error(err))
	}
}
