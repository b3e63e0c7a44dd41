// Package metrics provides Prometheus metrics for the manifest pipelines
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

var (
	// Provider metrics
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_provider_calls_total",
			Help: "Total number of AI provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manifest_provider_call_duration_seconds",
			Help:    "Duration of AI provider calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	ProviderFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_provider_fallbacks_total",
			Help: "Total number of times a secondary provider was tried",
		},
		[]string{"primary", "secondary"},
	)

	// Enrichment metrics
	HSLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_hs_lookups_total",
			Help: "Total number of HS code lookups by outcome",
		},
		[]string{"outcome"},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_pipeline_runs_total",
			Help: "Total number of pipeline runs by status",
		},
		[]string{"pipeline", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manifest_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"pipeline"},
	)

	OrphansDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_orphans_dropped_total",
			Help: "Total number of CEISA child rows dropped because no house matched",
		},
		[]string{"kind"},
	)
)

// HS lookup outcomes.
const (
	LookupAdded   = "added"
	LookupCached  = "cached"
	LookupSkipped = "skipped"
	LookupFailed  = "failed"
)

// ObserveProviderCall records one provider call.
func ObserveProviderCall(provider, outcome string, duration time.Duration) {
	ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFallback records a switch from primary to secondary provider.
func RecordFallback(primary, secondary string) {
	ProviderFallbacksTotal.WithLabelValues(primary, secondary).Inc()
}

// RecordLookup records an HS lookup outcome.
func RecordLookup(outcome string) {
	HSLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordPipelineRun records the completion of a pipeline run.
func RecordPipelineRun(pipeline, status string, duration time.Duration) {
	PipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordOrphans records dropped orphan rows per kind.
func RecordOrphans(d domain.DroppedOrphans) {
	OrphansDroppedTotal.WithLabelValues("detil").Add(float64(d.Detils))
	OrphansDroppedTotal.WithLabelValues("barang").Add(float64(d.Barangs))
	OrphansDroppedTotal.WithLabelValues("kontainer").Add(float64(d.Containers))
	OrphansDroppedTotal.WithLabelValues("dokumen").Add(float64(d.Dokumens))
}

// WriteFile writes every registered metric to path in the Prometheus text
// format, for node_exporter's textfile collector.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
