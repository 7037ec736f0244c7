// Package telemetry configures where the server's OpenTelemetry metrics go.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	ServiceName = "latency-benchmark"

	defaultExportInterval = time.Second * 10
)

// ShutdownFunc flushes any buffered metrics and releases the exporter.
type ShutdownFunc func(context.Context) error

// Setup returns the MeterProvider the server should record to. With an empty endpoint nothing is
// exported and the global provider, a no-op unless something else installed one, is returned.
//
// Otherwise metrics are pushed over OTLP/gRPC to endpoint (host:port, no TLS) and the new provider
// is also installed globally.
func Setup(ctx context.Context, endpoint, version string) (metric.MeterProvider, ShutdownFunc, error) {
	if endpoint == "" {
		return otel.GetMeterProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP metric exporter for %s: %w", endpoint, err)
	}

	mp := NewMeterProvider(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(defaultExportInterval)), version)
	otel.SetMeterProvider(mp)

	return mp, func(ctx context.Context) error {
		return errors.Join(mp.ForceFlush(ctx), mp.Shutdown(ctx))
	}, nil
}

// NewMeterProvider creates an SDK MeterProvider that reports through reader and tags everything
// with the service identity.
func NewMeterProvider(reader sdkmetric.Reader, version string) *sdkmetric.MeterProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
}
