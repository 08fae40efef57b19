package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.minekube.com/scriptsdk/pkg/bridge/config"
)

func TestInit_Disabled(t *testing.T) {
	before := otel.GetMeterProvider()
	cleanup, err := Init(context.Background(), config.DefaultConfig.Telemetry)
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetMeterProvider())
	assert.NoError(t, cleanup(context.Background()))
}

func TestInit_Enabled(t *testing.T) {
	cfg := config.Telemetry{
		Metrics: config.TelemetryMetrics{Enabled: true, Endpoint: "127.0.0.1:4317", Interval: time.Minute},
		Tracing: config.TelemetryTracing{Enabled: true, Endpoint: "127.0.0.1:4317"},
	}
	cleanup, err := Init(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &sdkmetric.MeterProvider{}, otel.GetMeterProvider())
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	// Nothing to flush to, don't wait for the collector.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = cleanup(ctx)
}
