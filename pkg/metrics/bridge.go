package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BridgeMetrics records metadata for natural language query translations.
type BridgeMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewBridgeMetrics registers the query bridge metrics on the provided registerer.
func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	if reg == nil {
		return &BridgeMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_generation_duration_seconds",
		Help:    "Duration of model generations in seconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"model"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_generation_success",
		Help: "Successful query translations.",
	}, []string{"model"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_generation_failure",
		Help: "Failed query translations by reason.",
	}, []string{"model", "reason"})
	reg.MustRegister(duration, success, failure)
	return &BridgeMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records a generation duration for the named model.
func (b *BridgeMetrics) ObserveDuration(model string, elapsed time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(model)).Observe(elapsed.Seconds())
}

// IncSuccess increments the success counter for the named model.
func (b *BridgeMetrics) IncSuccess(model string) {
	if b == nil || b.success == nil {
		return
	}
	b.success.WithLabelValues(normalizeLabel(model)).Inc()
}

// IncFailure increments the failure counter for the named model and reason.
func (b *BridgeMetrics) IncFailure(model, reason string) {
	if b == nil || b.failure == nil {
		return
	}
	b.failure.WithLabelValues(normalizeLabel(model), normalizeLabel(reason)).Inc()
}
