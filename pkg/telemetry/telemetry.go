// Package telemetry installs the process-wide OpenTelemetry tracer provider.
// With no endpoint configured a noop provider is installed, so instrumented
// code paths run unchanged in tests and local development.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/estate/pkg/lifecycle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace/noop"
)

// System owns the tracer provider and flushes it on shutdown.
type System interface {
	Enabled() bool
	Start(lc *lifecycle.Coordinator) error
}

type provider struct {
	cfg    *Config
	tp     *sdktrace.TracerProvider
	logger *slog.Logger
}

// New configures tracing and registers the provider and propagators globally.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "telemetry")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &provider{cfg: cfg, logger: logger}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)

	return &provider{cfg: cfg, tp: tp, logger: logger}, nil
}

func (p *provider) Enabled() bool {
	return p.tp != nil
}

// Start registers a shutdown hook that flushes pending spans.
func (p *provider) Start(lc *lifecycle.Coordinator) error {
	if p.tp == nil {
		p.logger.Info("tracing disabled")
		return nil
	}

	p.logger.Info("tracing enabled", "endpoint", p.cfg.Endpoint, "service", p.cfg.ServiceName)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ShutdownTimeoutDuration())
		defer cancel()
		if err := p.tp.Shutdown(ctx); err != nil {
			p.logger.Error("tracer shutdown failed", "error", err)
			return
		}
		p.logger.Info("tracer flushed")
	})
	return nil
}
