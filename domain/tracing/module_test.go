package tracing

import (
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mesa-hq/mesa-server/internal/config"
)

func TestNewTracerProviderDisabledInstallsNoop(t *testing.T) {
	cfg := &config.Config{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	result, err := NewTracerProvider(cfg, log)
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	if result.SDKProvider != nil {
		t.Fatal("SDKProvider must be nil when tracing is disabled")
	}

	if _, ok := otel.GetTracerProvider().(noop.TracerProvider); !ok {
		t.Fatalf("global provider = %T, want noop", otel.GetTracerProvider())
	}
}

func TestOtelConfigEnabledGate(t *testing.T) {
	var oc config.OtelConfig
	if oc.Enabled() {
		t.Fatal("empty endpoint must disable tracing")
	}
	oc.ExporterEndpoint = "http://localhost:4318"
	if !oc.Enabled() {
		t.Fatal("endpoint set must enable tracing")
	}
}
