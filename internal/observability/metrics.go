// Package observability provides OpenTelemetry metrics (Prometheus exporter) and
// structured-logging helpers for the survey hub.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	meterScope         = "github.com/techhbuddy/survey-hub/internal/observability"
	defaultServiceName = "survey-hub"
	cardinalityLimit   = 2000
)

// latencyHistogramBoundaries are Prometheus-style buckets (seconds) for request
// and aggregation duration histograms.
var latencyHistogramBoundaries = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// HubMetrics is the single metrics interface for the hub (HTTP, ingestion, aggregation).
type HubMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
	RecordRequestBodyTooLarge(ctx context.Context)
	RecordResponseIngested(ctx context.Context, completed bool)
	RecordReportComputed(ctx context.Context, trigger string, duration time.Duration)
	RecordReportCacheLookup(ctx context.Context, hit bool)
	RecordSnapshotRefresh(ctx context.Context, outcome string)
}

// MeterProviderShutdown is the subset of the SDK MeterProvider needed for shutdown.
type MeterProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// MeterProviderConfig holds configuration for creating the MeterProvider and metrics.
type MeterProviderConfig struct {
	// ServiceName is used in the resource (default: survey-hub).
	ServiceName string
}

// NewMeterProvider creates a MeterProvider with Prometheus exporter and returns the provider,
// an HTTP handler for /metrics, and HubMetrics that use the provider's Meter.
// Caller must call provider.Shutdown on exit.
func NewMeterProvider(_ context.Context, cfg MeterProviderConfig) (provider MeterProviderShutdown, metricsHandler http.Handler, metrics HubMetrics, err error) {
	serviceNameVal := cfg.ServiceName
	if serviceNameVal == "" {
		serviceNameVal = defaultServiceName
	}

	// Use a single resource to avoid Schema URL conflicts when merging with resource.Default().
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceNameVal),
	)

	reg := prometheus.NewRegistry()

	exporter, err := prometheusexporter.New(
		prometheusexporter.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "http.server.duration"},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyHistogramBoundaries}},
			),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "report_aggregation_duration_seconds"},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyHistogramBoundaries}},
			),
		),
	)
	provider = mp
	meter := mp.Meter(meterScope)

	metrics, err = newMetricsFromMeter(meter)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create metrics instruments: %w", err)
	}

	metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return provider, metricsHandler, metrics, nil
}

func newMetricsFromMeter(meter metric.Meter) (*hubMetricsImpl, error) {
	requestCount, err := meter.Int64Counter(
		"http.server.request_count",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("request_count: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("http.server.duration: %w", err)
	}

	bodyTooLarge, err := meter.Int64Counter(
		"requests_body_too_large_total",
		metric.WithDescription("Requests rejected for exceeding the body size limit"),
	)
	if err != nil {
		return nil, fmt.Errorf("requests_body_too_large_total: %w", err)
	}

	responsesIngested, err := meter.Int64Counter(
		"responses_ingested_total",
		metric.WithDescription("Survey responses ingested, by completion status"),
	)
	if err != nil {
		return nil, fmt.Errorf("responses_ingested_total: %w", err)
	}

	reportsComputed, err := meter.Int64Counter(
		"reports_computed_total",
		metric.WithDescription("Analytics reports computed, by trigger"),
	)
	if err != nil {
		return nil, fmt.Errorf("reports_computed_total: %w", err)
	}

	aggregationDuration, err := meter.Float64Histogram(
		"report_aggregation_duration_seconds",
		metric.WithDescription("Report aggregation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("report_aggregation_duration_seconds: %w", err)
	}

	cacheLookups, err := meter.Int64Counter(
		"report_cache_lookups_total",
		metric.WithDescription("Report cache lookups, by result (hit, miss)"),
	)
	if err != nil {
		return nil, fmt.Errorf("report_cache_lookups_total: %w", err)
	}

	snapshotRefreshes, err := meter.Int64Counter(
		"report_snapshot_refreshes_total",
		metric.WithDescription("Report snapshot refresh outcomes"),
	)
	if err != nil {
		return nil, fmt.Errorf("report_snapshot_refreshes_total: %w", err)
	}

	return &hubMetricsImpl{
		requestCount:        requestCount,
		requestDuration:     requestDuration,
		bodyTooLarge:        bodyTooLarge,
		responsesIngested:   responsesIngested,
		reportsComputed:     reportsComputed,
		aggregationDuration: aggregationDuration,
		cacheLookups:        cacheLookups,
		snapshotRefreshes:   snapshotRefreshes,
	}, nil
}

type hubMetricsImpl struct {
	requestCount        metric.Int64Counter
	requestDuration     metric.Float64Histogram
	bodyTooLarge        metric.Int64Counter
	responsesIngested   metric.Int64Counter
	reportsComputed     metric.Int64Counter
	aggregationDuration metric.Float64Histogram
	cacheLookups        metric.Int64Counter
	snapshotRefreshes   metric.Int64Counter
}

func (m *hubMetricsImpl) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass),
	)
	m.requestCount.Add(ctx, 1, metric.WithAttributeSet(attrs))

	durAttrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
	)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributeSet(durAttrs))
}

func (m *hubMetricsImpl) RecordRequestBodyTooLarge(ctx context.Context) {
	m.bodyTooLarge.Add(ctx, 1)
}

func (m *hubMetricsImpl) RecordResponseIngested(ctx context.Context, completed bool) {
	status := "partial"
	if completed {
		status = "completed"
	}

	m.responsesIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *hubMetricsImpl) RecordReportComputed(ctx context.Context, trigger string, duration time.Duration) {
	trigger = normalizeTrigger(trigger)
	m.reportsComputed.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
	m.aggregationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("trigger", trigger)))
}

func (m *hubMetricsImpl) RecordReportCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *hubMetricsImpl) RecordSnapshotRefresh(ctx context.Context, outcome string) {
	outcome = normalizeOutcome(outcome)
	m.snapshotRefreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// normalizeTrigger maps report triggers to a bounded set for cardinality control.
func normalizeTrigger(s string) string {
	switch s {
	case "on_demand", "snapshot_refresh":
		return s
	default:
		return "unknown"
	}
}

// normalizeOutcome maps snapshot refresh outcomes to a bounded set.
func normalizeOutcome(s string) string {
	switch s {
	case "success", "survey_deleted", "failed":
		return s
	default:
		return "unknown"
	}
}
