package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncError("network", "medium")
	pr.IncError("network", "medium")
	pr.IncError("security", "high")
	pr.IncRecovery(RecoveryRecovered)
	pr.IncRecovery(RecoveryExhausted)
	pr.IncCascade()
	pr.ObserveRecoveryDelay(2 * time.Second)

	if got := testutil.ToFloat64(pr.errorsTotal.WithLabelValues("network", "medium")); got != 2 {
		t.Errorf("errors_total{network,medium} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pr.errorsTotal.WithLabelValues("security", "high")); got != 1 {
		t.Errorf("errors_total{security,high} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pr.recoveries.WithLabelValues("recovered")); got != 1 {
		t.Errorf("recoveries_total{recovered} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pr.cascades); got != 1 {
		t.Errorf("cascades_total = %v, want 1", got)
	}
}

func TestNilRecorderSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncError("network", "low")
	pr.IncRecovery(RecoverySkipped)
	pr.IncCascade()
	pr.ObserveRecoveryDelay(time.Second)
}
