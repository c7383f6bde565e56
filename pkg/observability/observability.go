package observability

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/chain"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observability encapsulates metrics, tracing, and logging.
type Observability struct {
	Logger         logger.Logger
	Meter          metric.Meter
	Tracer         trace.Tracer
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	ServiceName    string

	instruments *instruments
}

// Init initializes all observability components based on the provided
// configuration. Disabled signals use the global, by default no-op, providers.
func Init(ctx context.Context, cfg config.Observability, logger logger.Logger) (*Observability, error) {
	var (
		meterProvider  metric.MeterProvider = otel.GetMeterProvider()
		tracerProvider trace.TracerProvider = otel.GetTracerProvider()
		mp             *sdkmetric.MeterProvider
		tp             *sdktrace.TracerProvider
		err            error
	)

	if cfg.Metrics.Enable {
		mp, err = InitMetrics(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return nil, err
		}
		meterProvider = mp
	}

	if cfg.Tracing.Enable {
		tp, err = InitTracer(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize tracer", zap.Error(err))
			if mp != nil {
				_ = mp.Shutdown(ctx)
			}
			return nil, err
		}
		tracerProvider = tp
	}

	obs, err := New(serviceName(cfg), meterProvider, tracerProvider, logger)
	if err != nil {
		return nil, err
	}
	obs.MeterProvider = mp
	obs.TracerProvider = tp

	logger.Debug(
		"Observability initialized",
		"service", obs.ServiceName,
		"metrics", cfg.Metrics.Enable,
		"tracing", cfg.Tracing.Enable,
	)
	return obs, nil
}

// New builds the instruments on top of existing providers.
func New(service string, mp metric.MeterProvider, tp trace.TracerProvider, logger logger.Logger) (*Observability, error) {
	obs := &Observability{
		Logger:      logger,
		Meter:       mp.Meter(service),
		Tracer:      tp.Tracer(service),
		ServiceName: service,
	}

	inst, err := newInstruments(obs.Meter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create instruments")
	}
	obs.instruments = inst

	return obs, nil
}

// Shutdown flushes and stops the providers created by Init.
func (o *Observability) Shutdown(ctx context.Context) error {
	var err error
	if o.MeterProvider != nil {
		if shutdownErr := o.MeterProvider.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
		}
	}
	if o.TracerProvider != nil {
		if shutdownErr := o.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
		}
	}
	return err
}

// RecordSeal records a mined block.
func (o *Observability) RecordSeal(ctx context.Context, attempts uint64, duration time.Duration) {
	o.instruments.blocksSealed.Add(ctx, 1)
	o.instruments.hashAttempts.Add(ctx, int64(attempts))
	o.instruments.miningDuration.Record(ctx, duration.Seconds())
}

// RecordValidation records the outcome of a chain validation. Only failures
// are counted, labelled with the violated rule when known.
func (o *Observability) RecordValidation(ctx context.Context, err error) {
	if err == nil {
		return
	}

	reason := "unknown"
	var verr *chain.ValidationError
	if errors.As(err, &verr) {
		reason = string(verr.Reason)
	} else if errors.Is(err, chain.ErrEmptyChain) {
		reason = "empty chain"
	}

	o.instruments.validationFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// ChainObserver adapts o into a seal observer for a chain of T.
func ChainObserver[T any](o *Observability) chain.Observer[T] {
	return func(event chain.SealEvent[T]) {
		o.RecordSeal(context.Background(), event.Attempts, event.Duration)
	}
}
