package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// PipelineMetrics records the invoice capture pipeline: extraction calls,
// persisted invoices, review transitions and list cache usage.
type PipelineMetrics struct {
	extractionDuration *prometheus.HistogramVec
	extractions        *prometheus.CounterVec
	invoicesCreated    prometheus.Counter
	invoicesUpdated    prometheus.Counter
	statusChanges      *prometheus.CounterVec
	listCache          *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	extractionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoice_extraction_duration_seconds",
		Help:    "Duration of model extraction calls in seconds.",
		Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"outcome"})
	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_extractions_total",
		Help: "Model extraction calls by outcome.",
	}, []string{"outcome"})
	invoicesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_created_total",
		Help: "Invoices persisted through the capture flow.",
	})
	invoicesUpdated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_updated_total",
		Help: "Full invoice edits saved by reviewers.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_status_changes_total",
		Help: "Review status transitions by target status.",
	}, []string{"status"})
	listCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_list_cache_total",
		Help: "Invoice list cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(extractionDuration, extractions, invoicesCreated, invoicesUpdated, statusChanges, listCache)
	return &PipelineMetrics{
		extractionDuration: extractionDuration,
		extractions:        extractions,
		invoicesCreated:    invoicesCreated,
		invoicesUpdated:    invoicesUpdated,
		statusChanges:      statusChanges,
		listCache:          listCache,
	}
}

// ObserveExtraction records one extraction call and its outcome.
func (m *PipelineMetrics) ObserveExtraction(duration time.Duration, err error) {
	if m == nil || m.extractions == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.extractions.WithLabelValues(outcome).Inc()
	m.extractionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncCreated counts a persisted invoice.
func (m *PipelineMetrics) IncCreated() {
	if m == nil || m.invoicesCreated == nil {
		return
	}
	m.invoicesCreated.Inc()
}

// IncUpdated counts a saved full edit.
func (m *PipelineMetrics) IncUpdated() {
	if m == nil || m.invoicesUpdated == nil {
		return
	}
	m.invoicesUpdated.Inc()
}

// IncStatusChange counts a review transition to status.
func (m *PipelineMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveListCache counts a cache hit or miss.
func (m *PipelineMetrics) ObserveListCache(hit bool) {
	if m == nil || m.listCache == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.listCache.WithLabelValues(result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
