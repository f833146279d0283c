// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter names accepted in Config.
const (
	ExporterNone       = "none"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

// Config is the telemetry section of lineage.yaml.
type Config struct {
	// ServiceName is the service.name resource attribute and the meter name.
	ServiceName string `yaml:"service_name" json:"service_name" validate:"required"`

	ServiceVersion string `yaml:"service_version" json:"service_version"`

	// Environment becomes deployment.environment, e.g. "development".
	Environment string `yaml:"environment" json:"environment"`

	// TraceExporter is otlp, stdout or none.
	TraceExporter string `yaml:"trace_exporter" json:"trace_exporter" validate:"oneof=otlp stdout none"`

	// MetricExporter is prometheus (served on /metrics), stdout or none.
	MetricExporter string `yaml:"metric_exporter" json:"metric_exporter" validate:"oneof=prometheus stdout none"`

	// OTLPEndpoint is host:port of the OTLP/gRPC trace receiver.
	OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`

	OTLPInsecure bool `yaml:"otlp_insecure" json:"otlp_insecure"`

	// SampleRatio is the fraction of root traces kept. Child spans follow
	// their parent's decision.
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio" validate:"gte=0,lte=1"`
}

// DefaultConfig returns traces off and Prometheus metrics on. LINEAGE_ENV,
// OTEL_TRACES_EXPORTER, OTEL_METRICS_EXPORTER and
// OTEL_EXPORTER_OTLP_ENDPOINT replace the matching defaults when set.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "lineage",
		ServiceVersion: "1.0.0",
		Environment:    envOr("LINEAGE_ENV", "development"),
		TraceExporter:  envOr("OTEL_TRACES_EXPORTER", ExporterNone),
		MetricExporter: envOr("OTEL_METRICS_EXPORTER", ExporterPrometheus),
		OTLPEndpoint:   envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   true,
		SampleRatio:    1,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// shutdownStack stops providers in reverse start order.
type shutdownStack []func(context.Context) error

func (s *shutdownStack) push(fn func(context.Context) error) {
	*s = append(*s, fn)
}

func (s shutdownStack) run(ctx context.Context) error {
	var errs []error
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Init installs the global tracer and meter providers for the lineage
// server.
//
// Description:
//
//	Always installs the W3C trace-context and baggage propagators so
//	otelgin can join incoming traces. Each exporter set to "none" leaves
//	the matching OTel global as a no-op. With the prometheus metric
//	exporter, MetricsHandler starts returning the /metrics handler.
//
// Inputs:
//
//	ctx - Used to dial the OTLP exporter.
//	cfg - Telemetry configuration, normally config.Config.Telemetry.
//
// Outputs:
//
//	shutdown - Flushes and stops what Init started. Call it once on exit.
//	error - ErrNilContext, ErrUnknownExporter or an exporter failure.
//	  Anything started before the failure is already stopped.
//
// Example:
//
//	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	var stack shutdownStack
	defer func() {
		if err != nil {
			_ = stack.run(ctx)
		}
	}()

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.TraceExporter != ExporterNone {
		exporter, err := newSpanExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		tp := trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
			trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))),
		)
		otel.SetTracerProvider(tp)
		stack.push(tp.Shutdown)
	}

	setMetricsHandler(nil)
	if cfg.MetricExporter != ExporterNone {
		reader, handler, err := newMetricReader(cfg)
		if err != nil {
			return nil, fmt.Errorf("init meter: %w", err)
		}
		mp := metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(reader))
		otel.SetMeterProvider(mp)
		stack.push(mp.Shutdown)
		setMetricsHandler(handler)
	}

	return stack.run, nil
}

// newSpanExporter builds the exporter named by cfg.TraceExporter.
func newSpanExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	var (
		exporter trace.SpanExporter
		err      error
	)
	switch cfg.TraceExporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: trace exporter %q", ErrUnknownExporter, cfg.TraceExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s span exporter: %w", cfg.TraceExporter, err)
	}
	return exporter, nil
}

// newMetricReader builds the reader named by cfg.MetricExporter. The
// handler is non-nil only for prometheus.
func newMetricReader(cfg Config) (metric.Reader, http.Handler, error) {
	switch cfg.MetricExporter {
	case ExporterPrometheus:
		// Each Init gets its own registry so a second Init does not trip
		// duplicate registration. The default gatherer adds the service's
		// promauto counters.
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		handler := promhttp.HandlerFor(
			prometheus.Gatherers{registry, prometheus.DefaultGatherer},
			promhttp.HandlerOpts{},
		)
		return exporter, handler, nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter), nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: metric exporter %q", ErrUnknownExporter, cfg.MetricExporter)
	}
}

type endpoint struct{ http.Handler }

var metricsEndpoint atomic.Pointer[endpoint]

func setMetricsHandler(h http.Handler) {
	if h == nil {
		metricsEndpoint.Store(nil)
		return
	}
	metricsEndpoint.Store(&endpoint{h})
}

// MetricsHandler returns the /metrics handler installed by the last Init,
// or nil when that Init did not enable the prometheus exporter.
func MetricsHandler() http.Handler {
	if e := metricsEndpoint.Load(); e != nil {
		return e.Handler
	}
	return nil
}
