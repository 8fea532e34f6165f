package bounded

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/goexec/internal/testutil"
	"github.com/vnykmshr/goexec/pkg/metrics"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	testutil.AssertNoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMetricsQueueDelegates(t *testing.T) {
	reg := prometheus.NewRegistry()
	q := NewWithConfigAndMetrics[int](2, "test_queue", metrics.Config{
		Enabled:  true,
		Registry: reg,
	})

	testutil.AssertEqual(t, q.Cap(), 2)

	q.Put(1)
	testutil.AssertTrue(t, q.TryPut(2), "TryPut should succeed")
	testutil.AssertTrue(t, !q.TryPut(3), "TryPut should fail at capacity")

	testutil.AssertEqual(t, q.Get(), 1)
	v, ok := q.Poll(time.Now().Add(10 * time.Millisecond))
	testutil.AssertTrue(t, ok, "Poll should find the queued item")
	testutil.AssertEqual(t, v, 2)

	testutil.AssertEqual(t, gaugeValue(t, reg, "goexec_queue_depth"), 0.0)
	testutil.AssertEqual(t, gaugeValue(t, reg, "goexec_queue_capacity"), 2.0)
}

func TestInstrumentQueueWrapsBothBackings(t *testing.T) {
	for _, b := range backings {
		t.Run(b.name, func(t *testing.T) {
			base, err := b.new(4)
			testutil.AssertNoError(t, err)

			reg := prometheus.NewRegistry()
			q := InstrumentQueue(base, "wrapped", metrics.Config{Enabled: true, Registry: reg})

			q.Put(7)
			testutil.AssertEqual(t, q.Len(), 1)
			testutil.AssertEqual(t, q.Get(), 7)
		})
	}
}

func TestInstrumentQueueDisabledReturnsBase(t *testing.T) {
	base := NewMonitor[int](1)
	q := InstrumentQueue(base, "noop", metrics.Config{Enabled: false})
	if q != base {
		t.Error("disabled metrics should return the base queue unchanged")
	}
}
