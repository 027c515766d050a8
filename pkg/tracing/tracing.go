// Package tracing sets up the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config selects where spans go and how many are kept.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector.
	OTLPEndpoint string
	// SampleRate is the share of new root traces recorded.
	SampleRate float64
	Enabled    bool
}

// DefaultConfig points at a local collector with export switched off.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		SampleRate:     1.0,
	}
}

// Sampler follows the caller's decision for spans with a remote parent and
// samples new roots at rate.
func Sampler(rate float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(rate)
	if rate >= 1 {
		root = sdktrace.AlwaysSample()
	} else if rate <= 0 {
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

func noop(context.Context) error { return nil }

// InitTracer registers trace-context and baggage propagation. When cfg is
// enabled it also installs a batching provider that exports to the
// collector; call the returned func on exit to flush it.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	if !cfg.Enabled {
		return noop, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithTelemetrySDK(),
		resource.WithProcessRuntimeDescription(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("otlp exporter for %s: %w", cfg.OTLPEndpoint, err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// Tracer is shorthand for otel.Tracer.
func Tracer(name string) trace.Tracer { return otel.Tracer(name) }
