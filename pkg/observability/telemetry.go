package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/Alijeyrad/mindbook_backend/config"
	"github.com/Alijeyrad/mindbook_backend/pkg/constants"
)

const shutdownGrace = 5 * time.Second

type Config struct {
	Service     string
	Version     string
	Environment string

	Tracing bool
	// Endpoint is host:port of an OTLP/HTTP collector. Spans are sampled but
	// dropped when it is empty.
	Endpoint string
	Insecure bool
	// Ratio of root spans kept, 0 means keep all.
	Ratio float64

	Metrics bool
}

func FromCentralConfig(cfg *config.Config) Config {
	o := cfg.Observability
	name := o.ServiceName
	if name == "" {
		name = constants.AppName
	}
	return Config{
		Service:     name,
		Version:     o.ServiceVersion,
		Environment: cfg.Server.Environment,
		Tracing:     o.Tracing.Enabled,
		Endpoint:    o.Tracing.OTLPEndpoint,
		Insecure:    o.Tracing.OTLPInsecure,
		Ratio:       o.Tracing.SamplingRate,
		Metrics:     o.Metrics.Enabled,
	}
}

// Provider owns the SDK providers installed as otel globals. Either field is
// nil when that signal is switched off.
type Provider struct {
	Traces  *sdktrace.TracerProvider
	Metrics *sdkmetric.MeterProvider
}

// InitTelemetry installs the global tracer and meter providers. Metrics are
// read by the Prometheus exporter, which registers on the default registry
// served at /metrics.
func InitTelemetry(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes("",
		semconv.ServiceName(cfg.Service),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	p := &Provider{}
	if cfg.Tracing {
		if p.Traces, err = tracerProvider(ctx, res, cfg); err != nil {
			return nil, err
		}
		otel.SetTracerProvider(p.Traces)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		))
	}
	if cfg.Metrics {
		exp, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		p.Metrics = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exp))
		otel.SetMeterProvider(p.Metrics)
	}
	return p, nil
}

func tracerProvider(ctx context.Context, res *resource.Resource, cfg Config) (*sdktrace.TracerProvider, error) {
	ratio := cfg.Ratio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	}

	if cfg.Endpoint != "" {
		eopts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			eopts = append(eopts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, eopts...)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// Shutdown flushes pending spans and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	var errs []error
	if p.Traces != nil {
		errs = append(errs, p.Traces.Shutdown(ctx))
	}
	if p.Metrics != nil {
		errs = append(errs, p.Metrics.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
