package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg, Config{ServiceName: "test", Environment: "test"})

	m.IncCaseTransition("PAYMENT_PENDING", "PAID")
	m.IncCaseTransition("PAYMENT_PENDING", "PAID")
	m.IncPaymentEvent("accepted")
	m.IncFraudAlert()

	got := testutil.ToFloat64(m.caseTransitions.WithLabelValues("PAYMENT_PENDING", "PAID"))
	if got != 2 {
		t.Fatalf("case transitions = %v, want 2", got)
	}
	if testutil.ToFloat64(m.fraudAlerts) != 1 {
		t.Fatalf("fraud alerts = %v, want 1", testutil.ToFloat64(m.fraudAlerts))
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.IncCaseTransition("a", "b")
	m.IncPaymentEvent("ignored")
	m.IncFraudAlert()
	m.IncRateLimited()
}
