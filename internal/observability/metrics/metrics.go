package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the lead-intake pipeline.
type PipelineMetrics struct {
	submissionsTotal *prometheus.CounterVec
	syncAttempts     prometheus.Histogram
	syncLatency      *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "submission",
			Name:      "total",
			Help:      "Total contact form submissions by outcome",
		}, []string{"outcome"}),
		syncAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "crm",
			Name:      "sync_attempts",
			Help:      "Attempts used per CRM sync run",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		syncLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "crm",
			Name:      "sync_latency_seconds",
			Help:      "Latency of CRM sync runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.syncAttempts, m.syncLatency)
	return m
}

// ObserveSubmission records a submission outcome: accepted, rejected_origin,
// rejected_honeypot, rate_limited, or failed.
func (m *PipelineMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSync records the attempt count and latency of one CRM sync run.
func (m *PipelineMetrics) ObserveSync(status string, attempts int, seconds float64) {
	if m == nil {
		return
	}
	m.syncAttempts.Observe(float64(attempts))
	m.syncLatency.WithLabelValues(status).Observe(seconds)
}
