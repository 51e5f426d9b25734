package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Providers bundles the tracer, meter, and logger Init assembles, plus a
// Shutdown hook that stops any background HTTP server and flushes the
// tracer provider.
type Providers struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *Metrics
	Logger  *slog.Logger

	Shutdown func(context.Context) error
}

const tracerName = "databrook"
const meterName = "databrook"

// Init builds the tracing, metrics, and logging providers for cfg.
// Tracing uses a no-op provider unless cfg.TracingEnabled. Metrics are
// always live, backed by a Prometheus registry; if cfg.MetricsAddr is
// non-empty, Init starts an HTTP server exposing "/metrics" on it.
func Init(cfg Config) (Providers, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return Providers{}, err
	}

	res, err := buildResource(cfg)
	if err != nil {
		return Providers{}, err
	}

	tp, tracerShutdown := buildTracerProvider(cfg, res)

	meter, metricsShutdown, err := buildMeterProvider(res)
	if err != nil {
		return Providers{}, err
	}

	metrics, err := NewMetrics(meter)
	if err != nil {
		return Providers{}, err
	}

	var serverShutdown func(context.Context) error
	if cfg.MetricsAddr != "" {
		serverShutdown = serveMetrics(cfg.MetricsAddr, logger)
	}

	return Providers{
		Tracer:  tp.Tracer(tracerName),
		Meter:   meter,
		Metrics: metrics,
		Logger:  logger,
		Shutdown: func(ctx context.Context) error {
			var errs []error
			if serverShutdown != nil {
				errs = append(errs, serverShutdown(ctx))
			}

			errs = append(errs, metricsShutdown(ctx))
			errs = append(errs, tracerShutdown(ctx))

			return errors.Join(errs...)
		},
	}, nil
}

func buildResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("observability: build resource: %w", err)
	}

	return res, nil
}

func buildTracerProvider(cfg Config, res *resource.Resource) (trace.TracerProvider, func(context.Context) error) {
	if !cfg.TracingEnabled {
		return tracenoop.NewTracerProvider(), func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return tp, tp.Shutdown
}

func buildMeterProvider(res *resource.Resource) (metric.Meter, func(context.Context) error, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, nil, fmt.Errorf("observability: build prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	return mp.Meter(meterName), mp.Shutdown, nil
}

func serveMetrics(addr string, logger *slog.Logger) func(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	return srv.Shutdown
}
