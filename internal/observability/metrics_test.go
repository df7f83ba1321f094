package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterCollectorReturnsExisting(t *testing.T) {
	opts := prometheus.GaugeOpts{
		Name: "observability_test_gauge",
		Help: "Gauge used by the registration test.",
	}

	first, err := RegisterCollector(prometheus.NewGauge(opts))
	if err != nil {
		t.Fatalf("registering gauge: %v", err)
	}
	t.Cleanup(func() { prometheus.Unregister(first) })

	second, err := RegisterCollector(prometheus.NewGauge(opts))
	if err != nil {
		t.Fatalf("re-registering gauge: %v", err)
	}

	first.Set(3)
	if second != first {
		t.Fatal("expected the already registered gauge to be returned")
	}
}
