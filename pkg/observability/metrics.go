package observability

import (
	"context"

	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
)

// instruments are the mining and validation instruments.
type instruments struct {
	blocksSealed       metric.Int64Counter
	hashAttempts       metric.Int64Counter
	miningDuration     metric.Float64Histogram
	validationFailures metric.Int64Counter
}

// InitMetrics initializes an OTLP exporting meter provider and installs it
// globally.
func InitMetrics(ctx context.Context, cfg config.Observability, logger logger.Logger) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Metrics.Endpoint),
		otlpmetricgrpc.WithHeaders(cfg.Metrics.Headers),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		logger.Error("Failed to create OTLP metric exporter", zap.Error(err))
		return nil, err
	}

	// Create resource
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName(cfg)),
		),
	)
	if err != nil {
		logger.Error("Failed to create resource for metrics", zap.Error(err))
		return nil, err
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Metrics.ExportInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Metrics.ExportInterval))
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)

	otel.SetMeterProvider(meterProvider)
	return meterProvider, nil
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	var (
		inst instruments
		err  error
	)

	inst.blocksSealed, err = meter.Int64Counter(MetricBlocksSealed,
		metric.WithDescription("Counts the number of blocks mined and appended"),
	)
	if err != nil {
		return nil, err
	}

	inst.hashAttempts, err = meter.Int64Counter(MetricHashAttempts,
		metric.WithDescription("Counts the number of hashes computed while mining"),
	)
	if err != nil {
		return nil, err
	}

	inst.miningDuration, err = meter.Float64Histogram(MetricMiningDuration,
		metric.WithDescription("Time spent mining a single block"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inst.validationFailures, err = meter.Int64Counter(MetricValidationFailures,
		metric.WithDescription("Counts the number of failed chain validations"),
	)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}
