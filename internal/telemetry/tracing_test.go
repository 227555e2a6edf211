package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/Togather-Foundation/eventos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	restoreGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "dev", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInitTracing_StdoutWritesSpans(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	cfg := config.TracingConfig{Enabled: true, Exporter: "stdout", ServiceName: "eventos", SampleRate: 1}
	shutdown, err := initTracing(context.Background(), cfg, "1.2.3", "test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "unit-span")
	assert.Contains(t, buf.String(), "eventos")
}

func TestInitTracing_Errors(t *testing.T) {
	restoreGlobals(t)

	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 2}, "", "test")
	assert.ErrorContains(t, err, "invalid sample rate")

	_, err = InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}, "", "test")
	assert.ErrorContains(t, err, "unsupported exporter")
}

func TestInitTracing_NoneExporter(t *testing.T) {
	restoreGlobals(t)

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 0.5}, "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestNewExporter_OTLPTransports(t *testing.T) {
	for _, name := range []string{"otlp", "otlp-http"} {
		t.Run(name, func(t *testing.T) {
			exporter, err := newExporter(context.Background(), config.TracingConfig{Exporter: name, OTLPEndpoint: "localhost:4318"}, nil)
			require.NoError(t, err)
			assert.NoError(t, exporter.Shutdown(context.Background()))
		})
	}
}
