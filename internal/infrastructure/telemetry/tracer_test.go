package telemetry

import (
	"context"
	"testing"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestSetup_Disabled(t *testing.T) {
	tr, err := Setup(context.Background(), config.TelemetryConfig{}, "1.0.0", zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tr.Enabled())
	assert.Same(t, otel.GetTracerProvider(), tr.Provider())
	assert.NotNil(t, tr.Tracer("shop"))
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	tr, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "jewelry-test",
		Insecure:          true,
	}, "", nil)
	require.NoError(t, err)

	assert.True(t, tr.Enabled())
	assert.Same(t, tr.sdk, otel.GetTracerProvider())

	_, span := tr.Tracer("checkout").Start(context.Background(), "Checkout")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	// no collector is listening, so the flush may fail but must return
	_ = tr.Shutdown(context.Background())
}

func TestSamplerFor(t *testing.T) {
	always := sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()
	never := sdktrace.ParentBased(sdktrace.NeverSample()).Description()

	assert.Equal(t, always, samplerFor(1).Description())
	assert.Equal(t, always, samplerFor(3).Description())
	assert.Equal(t, never, samplerFor(0).Description())
	assert.Equal(t, never, samplerFor(-1).Description())
	assert.Equal(t, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description(), samplerFor(0.25).Description())
}
