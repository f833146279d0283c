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
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func prometheusConfig() Config {
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterNone
	cfg.MetricExporter = ExporterPrometheus
	return cfg
}

func TestInit(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // exercising the nil guard
		_, err := Init(nil, DefaultConfig())
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("unknown trace exporter", func(t *testing.T) {
		cfg := prometheusConfig()
		cfg.TraceExporter = "zipkin"
		_, err := Init(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrUnknownExporter)
	})

	t.Run("unknown metric exporter", func(t *testing.T) {
		cfg := prometheusConfig()
		cfg.MetricExporter = "statsd"
		_, err := Init(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrUnknownExporter)
	})

	t.Run("everything disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TraceExporter = ExporterNone
		cfg.MetricExporter = ExporterNone
		shutdown, err := Init(context.Background(), cfg)
		require.NoError(t, err)
		assert.Nil(t, MetricsHandler())
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("disabling prometheus clears the handler", func(t *testing.T) {
		shutdown, err := Init(context.Background(), prometheusConfig())
		require.NoError(t, err)
		require.NotNil(t, MetricsHandler())
		require.NoError(t, shutdown(context.Background()))

		cfg := prometheusConfig()
		cfg.MetricExporter = ExporterNone
		shutdown, err = Init(context.Background(), cfg)
		require.NoError(t, err)
		assert.Nil(t, MetricsHandler())
		require.NoError(t, shutdown(context.Background()))
	})

	t.Run("stdout exporters", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TraceExporter = ExporterStdout
		cfg.MetricExporter = ExporterStdout
		cfg.SampleRatio = 0.25
		shutdown, err := Init(context.Background(), cfg)
		require.NoError(t, err)
		assert.Nil(t, MetricsHandler())
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("prometheus can be initialized twice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			shutdown, err := Init(context.Background(), prometheusConfig())
			require.NoError(t, err)
			require.NotNil(t, MetricsHandler())
			require.NoError(t, shutdown(context.Background()))
		}
	})
}

func TestShutdownStack(t *testing.T) {
	var order []string
	var stack shutdownStack
	stack.push(func(context.Context) error { order = append(order, "tracer"); return nil })
	stack.push(func(context.Context) error { order = append(order, "meter"); return errors.New("flush failed") })

	err := stack.run(context.Background())
	assert.EqualError(t, err, "flush failed")
	assert.Equal(t, []string{"meter", "tracer"}, order)
}

func TestNewMetrics(t *testing.T) {
	shutdown, err := Init(context.Background(), prometheusConfig())
	require.NoError(t, err)
	defer shutdown(context.Background())

	metrics, err := NewMetrics(otel.Meter("lineage_test"))
	require.NoError(t, err)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.EngineBuildsTotal)
	assert.NotNil(t, metrics.EngineBuildDuration)
	assert.NotNil(t, metrics.QueriesTotal)
	assert.NotNil(t, metrics.QueryDuration)
	assert.NotNil(t, metrics.DroppedEdgesTotal)
	assert.NotNil(t, metrics.ErrorsTotal)

	ctx := context.Background()
	metrics.RecordQuery(ctx, "compare", 0.001, nil)
	metrics.RecordBuild(ctx, 0.01, 3, nil)
	metrics.RecordError(ctx, "dataset", "parse")

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "lineage_queries_total")
	assert.Contains(t, body, "lineage_dropped_edges_total")
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordQuery(ctx, "compare", 0, errors.New("x"))
		m.RecordBuild(ctx, 0, 1, nil)
		m.RecordError(ctx, "c", "k")
	})
}

func TestGinMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, err := GinMetrics(nil)
	assert.ErrorIs(t, err, ErrNilMetrics)

	shutdown, err := Init(context.Background(), prometheusConfig())
	require.NoError(t, err)
	defer shutdown(context.Background())

	metrics, err := NewMetrics(otel.Meter("lineage_gin_test"))
	require.NoError(t, err)

	mw, err := GinMetrics(metrics)
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/v1/lineage/nodes/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})

	for _, path := range []string{"/v1/lineage/nodes/plato", "/nowhere"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `path="/v1/lineage/nodes/:id"`)
	assert.Contains(t, text, `path="unmatched"`)
	assert.False(t, strings.Contains(text, `path="/v1/lineage/nodes/plato"`))
}

func TestLoggerWithTrace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("no span", func(t *testing.T) {
		assert.Same(t, base, LoggerWithTrace(context.Background(), base))
		assert.NotNil(t, LoggerWithTrace(context.Background(), nil))
		assert.Equal(t, "", TraceID(context.Background()))
		assert.Equal(t, "", SpanID(context.Background()))
	})

	t.Run("with span", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		defer tp.Shutdown(context.Background())

		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		LoggerWithTrace(ctx, base).Info("hello")
		RecordError(span, errors.New("boom"))
		span.End()

		_, okSpan := tp.Tracer("test").Start(context.Background(), "ok")
		SetSpanOK(okSpan)
		okSpan.End()

		assert.Contains(t, buf.String(), TraceID(ctx))
		assert.Contains(t, buf.String(), `"span_id"`)
		require.Len(t, recorder.Ended(), 2)
		assert.Equal(t, codes.Error, recorder.Ended()[0].Status().Code)
		assert.Equal(t, "boom", recorder.Ended()[0].Status().Description)
		assert.Equal(t, codes.Ok, recorder.Ended()[1].Status().Code)
	})
}
