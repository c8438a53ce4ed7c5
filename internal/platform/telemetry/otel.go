package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"babylog/internal/platform/config"
)

const serviceName = "babylog"

// OTel exports counters through an OTLP gRPC collector.
type OTel struct {
	provider  *sdkmetric.MeterProvider
	started   metric.Int64Counter
	finalized metric.Int64Counter
	conflicts metric.Int64Counter
	duration  metric.Float64Histogram
}

func NewOTel(ctx context.Context, cfg config.TelemetryConfig) (*OTel, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry is disabled or endpoint not configured")
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	return newOTel(provider)
}

func newOTel(provider *sdkmetric.MeterProvider) (*OTel, error) {
	meter := provider.Meter(serviceName)
	o := &OTel{provider: provider}
	var err error
	if o.started, err = meter.Int64Counter("babylog_sessions_started_total",
		metric.WithDescription("Timed sessions started"), metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	if o.finalized, err = meter.Int64Counter("babylog_sessions_finalized_total",
		metric.WithDescription("Timed sessions finalized into records"), metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("creating finalized counter: %w", err)
	}
	if o.conflicts, err = meter.Int64Counter("babylog_conflicts_total",
		metric.WithDescription("Conflicts reported by the evaluator"), metric.WithUnit("{conflict}")); err != nil {
		return nil, fmt.Errorf("creating conflicts counter: %w", err)
	}
	if o.duration, err = meter.Float64Histogram("babylog_session_duration_seconds",
		metric.WithDescription("Duration of finalized sessions"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return o, nil
}

func (o *OTel) SessionStarted(ctx context.Context, kind string) {
	o.started.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (o *OTel) SessionFinalized(ctx context.Context, kind string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	o.finalized.Add(ctx, 1, attrs)
	o.duration.Record(ctx, duration.Seconds(), attrs)
}

func (o *OTel) ConflictDetected(ctx context.Context, newKind, conflictKind string) {
	o.conflicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", newKind),
		attribute.String("conflict", conflictKind),
	))
}

func (o *OTel) Close(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}
