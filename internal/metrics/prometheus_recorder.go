package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	errorsTotal   *prom.CounterVec
	recoveries    *prom.CounterVec
	cascades      prom.Counter
	recoveryDelay prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.errorsTotal = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "imageforge",
			Name:      "errors_total",
			Help:      "Handled failures by kind and severity",
		}, []string{"kind", "severity"})
		pr.recoveries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "imageforge",
			Name:      "recoveries_total",
			Help:      "Recovery attempts by outcome",
		}, []string{"outcome"})
		pr.cascades = prom.NewCounter(prom.CounterOpts{
			Namespace: "imageforge",
			Name:      "cascades_total",
			Help:      "Detected failure cascades",
		})
		pr.recoveryDelay = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "imageforge",
			Name:      "recovery_delay_seconds",
			Help:      "Delay slept before retries",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.errorsTotal, pr.recoveries, pr.cascades, pr.recoveryDelay)
	})
	return pr
}

func (p *PrometheusRecorder) IncError(kind, severity string) {
	if p == nil || p.errorsTotal == nil {
		return
	}
	p.errorsTotal.WithLabelValues(kind, severity).Inc()
}

func (p *PrometheusRecorder) IncRecovery(outcome RecoveryOutcome) {
	if p == nil || p.recoveries == nil {
		return
	}
	p.recoveries.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCascade() {
	if p == nil || p.cascades == nil {
		return
	}
	p.cascades.Inc()
}

func (p *PrometheusRecorder) ObserveRecoveryDelay(d time.Duration) {
	if p == nil || p.recoveryDelay == nil {
		return
	}
	p.recoveryDelay.Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler serving the registry's metrics. Used by
// watch mode to expose a scrape endpoint.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		reg = prom.DefaultRegisterer.(*prom.Registry)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
