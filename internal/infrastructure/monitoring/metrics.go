// Package monitoring provides Prometheus metrics for the suggestion
// pipeline: LLM call outcomes, repair stages, and fallback usage.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics collects pipeline counters and latencies. Each instance owns its
// registry so tests can construct collectors independently.
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	llmRequestsTotal   *prometheus.CounterVec
	repairOutcomes     *prometheus.CounterVec
	fallbackSelections prometheus.Counter
	mealsGenerated     *prometheus.CounterVec
	suggestionDuration prometheus.Histogram
	probeVerdicts      *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector
func NewMetrics(logger *zap.Logger) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		logger:   logger.Named("metrics"),
		registry: registry,

		llmRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total LLM completion requests by outcome",
			},
			[]string{"outcome"},
		),
		repairOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "json_repair_outcomes_total",
				Help: "JSON repair results by cascade stage",
			},
			[]string{"stage"},
		),
		fallbackSelections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fallback_selections_total",
				Help: "Total meals served from the static fallback library",
			},
		),
		mealsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meals_generated_total",
				Help: "Total meals produced by the engine, by source",
			},
			[]string{"source"},
		),
		suggestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meal_suggestion_duration_seconds",
				Help:    "End-to-end meal suggestion latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		probeVerdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "health_probe_verdicts_total",
				Help: "Health probe outcomes by diagnosis",
			},
			[]string{"diagnosis"},
		),
	}
}

// ObserveLLMRequest records one completion request outcome.
func (m *Metrics) ObserveLLMRequest(outcome string) {
	m.llmRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRepair records which cascade stage produced dishes.
func (m *Metrics) ObserveRepair(stage string) {
	m.repairOutcomes.WithLabelValues(stage).Inc()
}

// ObserveFallback records a meal served from the static library.
func (m *Metrics) ObserveFallback() {
	m.fallbackSelections.Inc()
}

// ObserveMeal records a generated meal by provenance.
func (m *Metrics) ObserveMeal(source string) {
	m.mealsGenerated.WithLabelValues(source).Inc()
}

// ObserveSuggestionDuration records the end-to-end latency of one call.
func (m *Metrics) ObserveSuggestionDuration(d time.Duration) {
	m.suggestionDuration.Observe(d.Seconds())
}

// ObserveProbeVerdict records a health probe diagnosis.
func (m *Metrics) ObserveProbeVerdict(diagnosis string) {
	m.probeVerdicts.WithLabelValues(diagnosis).Inc()
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
