package observability

import (
	"context"

	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
)

// InitTracer initializes an OTLP exporting tracer provider and installs it
// globally, so spans opened by the chain package are exported.
func InitTracer(ctx context.Context, cfg config.Observability, logger logger.Logger) (*sdktrace.TracerProvider, error) {
	// Create OTLP trace exporter
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracegrpc.WithHeaders(cfg.Tracing.Headers),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		logger.Error("Failed to create OTLP trace exporter", zap.Error(err))
		return nil, err
	}

	// Create resource
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName(cfg)),
		),
	)
	if err != nil {
		logger.Error("Failed to create resource for tracing", zap.Error(err))
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(newSampler(cfg.Tracing, logger)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

func newSampler(cfg config.TracingConfig, logger logger.Logger) sdktrace.Sampler {
	switch cfg.Sampler {
	case "always_on", "":
		return sdktrace.AlwaysSample()
	case "probability":
		return sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	default:
		logger.Warn("Unknown sampler type, defaulting to AlwaysSample", "sampler", cfg.Sampler)
		return sdktrace.AlwaysSample()
	}
}
