package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkoz/signalk-plugin-base/errors"
)

func TestRegisterCounter(t *testing.T) {
	r := NewRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_events_total",
		Help: "test",
	})
	require.NoError(t, r.RegisterCounter("anchor-watch", "events", counter))

	counter.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(counter))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	r := NewRegistry()

	c1 := prometheus.NewCounter(prometheus.CounterOpts{Name: "dup_total", Help: "t"})
	require.NoError(t, r.RegisterCounter("p", "dup", c1))

	c2 := prometheus.NewCounter(prometheus.CounterOpts{Name: "other_total", Help: "t"})
	err := r.RegisterCounter("p", "dup", c2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "temp", Help: "t"})
	require.NoError(t, r.RegisterGauge("p", "temp", g))

	assert.True(t, r.Unregister("p", "temp"))
	assert.False(t, r.Unregister("p", "temp"))

	// Slot is free again after unregistering
	g2 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "temp", Help: "t"})
	assert.NoError(t, r.RegisterGauge("p", "temp", g2))
}

func TestCoreMetricsLifecycle(t *testing.T) {
	r := NewRegistry()
	core := r.CoreMetrics()
	require.NotNil(t, core)

	core.RecordStart("demo", 5*time.Millisecond)
	core.RecordSubscriptions("demo", 2)
	core.RecordDelta("demo")
	assert.Equal(t, 1.0, testutil.ToFloat64(core.PluginStarts.WithLabelValues("demo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.PluginRunning.WithLabelValues("demo")))
	assert.Equal(t, 2.0, testutil.ToFloat64(core.ActiveSubscriptions.WithLabelValues("demo")))

	core.RecordStop("demo")
	assert.Equal(t, 0.0, testutil.ToFloat64(core.PluginRunning.WithLabelValues("demo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(core.ActiveSubscriptions.WithLabelValues("demo")))
}

func TestNilRegistryCoreMetrics(t *testing.T) {
	var r *Registry
	assert.Nil(t, r.CoreMetrics())
}

func TestHandlerServesExposition(t *testing.T) {
	r := NewRegistry()
	r.CoreMetrics().RecordStart("demo", time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signalk_plugin_starts_total")
}
