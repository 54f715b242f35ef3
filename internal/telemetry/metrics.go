package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline and query counters. The parser itself stays side-effect free; the
// pipeline records these from the returned ParseStats.
var (
	IngestRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adspend_ingest_runs_total",
		Help: "Ingestion pipeline runs, successful or not.",
	})
	RowsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adspend_ingest_rows_accepted_total",
		Help: "Rows parsed and stored.",
	})
	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adspend_ingest_rows_skipped_total",
		Help: "Rows dropped for a field-count mismatch with the header.",
	})
	NumericDefaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adspend_ingest_numeric_defaults_total",
		Help: "Numeric fields that failed to parse and were defaulted to 0.",
	})
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adspend_ingest_duration_seconds",
		Help:    "Wall time of one fetch-parse-enrich-store run.",
		Buckets: prometheus.DefBuckets,
	})
	KPIQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adspend_kpi_queries_total",
		Help: "Period-over-period KPI comparisons served.",
	})
)
