package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal     metric.Int64Counter
	HTTPRequestDuration   metric.Float64Histogram
	GenerationsTotal      metric.Int64Counter
	GenerationDuration    metric.Float64Histogram
	GenerationTokensTotal metric.Int64Counter
	SyncsTotal            metric.Int64Counter
	SyncDuration          metric.Float64Histogram
	StoreOpDuration       metric.Float64Histogram
	ActiveSessions        metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider, so it must
// run after the providers are installed to export anything.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("journeyx-pro")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.GenerationsTotal, err = meter.Int64Counter(
			"itinerary_generations_total",
			metric.WithDescription("Itinerary generation calls by outcome"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generations_total: %v", err)
		}

		m.GenerationDuration, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("Latency of the model call plus parsing"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_duration_seconds: %v", err)
		}

		m.GenerationTokensTotal, err = meter.Int64Counter(
			"itinerary_generation_tokens_total",
			metric.WithDescription("Tokens consumed by generation calls"),
			metric.WithUnit("{token}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_tokens_total: %v", err)
		}

		m.SyncsTotal, err = meter.Int64Counter(
			"book_syncs_total",
			metric.WithDescription("Travel book sync attempts by category"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create book_syncs_total: %v", err)
		}

		m.SyncDuration, err = meter.Float64Histogram(
			"book_sync_duration_seconds",
			metric.WithDescription("Duration of travel book sync attempts"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create book_sync_duration_seconds: %v", err)
		}

		m.StoreOpDuration, err = meter.Float64Histogram(
			"store_operation_duration_seconds",
			metric.WithDescription("Duration of saved trip store operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_operation_duration_seconds: %v", err)
		}

		m.ActiveSessions, err = meter.Int64UpDownCounter(
			"planner_sessions_active",
			metric.WithDescription("Planning sessions currently held in memory"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create planner_sessions_active: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it against whatever meter
// provider is installed (a no-op one in tests).
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
