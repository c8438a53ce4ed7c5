package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"babylog/internal/platform/config"
)

func TestOTelRecordsLifecycleCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	rec, err := newOTel(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatalf("new otel: %v", err)
	}
	rec.SessionStarted(ctx, "nursing")
	rec.SessionFinalized(ctx, "nursing", 90*time.Second)
	rec.ConflictDetected(ctx, "sleep", "active_conflict")

	rm := metricdata.ResourceMetrics{}
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	seen := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			seen[m.Name] = true
		}
	}
	for _, name := range []string{
		"babylog_sessions_started_total",
		"babylog_sessions_finalized_total",
		"babylog_conflicts_total",
		"babylog_session_duration_seconds",
	} {
		if !seen[name] {
			t.Fatalf("expected metric %s, got %v", name, seen)
		}
	}
	if err := rec.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewOTelRequiresEndpoint(t *testing.T) {
	t.Parallel()
	if _, err := NewOTel(context.Background(), config.TelemetryConfig{Enabled: true}); err == nil {
		t.Fatalf("expected missing endpoint to fail")
	}
	var rec Recorder = Noop{}
	if err := rec.Close(context.Background()); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}
