package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TripsBuiltTotal          metric.Int64Counter
	TripBuildDurationSeconds metric.Float64Histogram
	DayBuildFailuresTotal    metric.Int64Counter
	RetrievalFallbacksTotal  metric.Int64Counter
	NarrativeFallbacksTotal  metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the metric instruments once, using the globally
// configured MeterProvider. Call after tracer.InitTracingAndMetrics; calling
// before falls back to the no-op provider, which keeps tests side-effect free.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("trip-planner")
		var err error
		m := &AppMetrics{}

		m.TripsBuiltTotal, err = meter.Int64Counter(
			"trips_built_total",
			metric.WithDescription("Total number of trip plans built"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trips_built_total: %v", err)
		}

		m.TripBuildDurationSeconds, err = meter.Float64Histogram(
			"trip_build_duration_seconds",
			metric.WithDescription("Duration of full trip builds in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_build_duration_seconds: %v", err)
		}

		m.DayBuildFailuresTotal, err = meter.Int64Counter(
			"day_build_failures_total",
			metric.WithDescription("Total number of daily plans replaced by an empty placeholder"),
			metric.WithUnit("{day}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create day_build_failures_total: %v", err)
		}

		m.RetrievalFallbacksTotal, err = meter.Int64Counter(
			"retrieval_fallbacks_total",
			metric.WithDescription("Total number of site retrievals that degraded past the ranked tier"),
			metric.WithUnit("{retrieval}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create retrieval_fallbacks_total: %v", err)
		}

		m.NarrativeFallbacksTotal, err = meter.Int64Counter(
			"narrative_fallbacks_total",
			metric.WithDescription("Total number of day narratives served from the deterministic template"),
			metric.WithUnit("{narrative}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create narrative_fallbacks_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the metrics instance, initializing against the current global
// MeterProvider on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
