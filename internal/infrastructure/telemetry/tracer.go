// Package telemetry wires OpenTelemetry tracing for HTTP requests, service
// calls and database queries.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Tracing owns the process-wide tracer provider. When tracing is off the
// global no-op provider stays installed and every method still works.
type Tracing struct {
	sdk    *sdktrace.TracerProvider
	logger *zap.Logger
}

// Setup exports spans over OTLP/gRPC to cfg.CollectorEndpoint and installs
// the provider and the W3C propagators globally.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Tracing, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracing{logger: logger.Named("tracing")}
	if !cfg.Enabled {
		t.logger.Info("Tracing disabled")
		return t, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := serviceResource(cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	t.sdk = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(t.sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.logger.Info("Tracing enabled",
		zap.String("collector", cfg.CollectorEndpoint),
		zap.String("service", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio))
	return t, nil
}

func newExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	return exporter, nil
}

func serviceResource(name, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	return res, nil
}

// samplerFor follows the caller's sampling decision and samples new roots
// by ratio, clamped to [0, 1].
func samplerFor(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	if ratio >= 1 {
		root = sdktrace.AlwaysSample()
	} else if ratio <= 0 {
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

func (t *Tracing) Enabled() bool { return t.sdk != nil }

// Provider is the installed provider; the global one when disabled.
func (t *Tracing) Provider() trace.TracerProvider {
	if t.sdk == nil {
		return otel.GetTracerProvider()
	}
	return t.sdk
}

func (t *Tracing) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.Provider().Tracer(name, opts...)
}

// Shutdown flushes buffered spans, giving up after ten seconds.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := t.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("flush spans: %w", err)
	}
	t.logger.Info("Tracing stopped")
	return nil
}
