package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveAttempt("zhipu", "success", 120*time.Millisecond)
	m.ObserveAttempt("zhipu", "rate_limited", 30*time.Millisecond)
	m.ObserveAttempt("hunyuan", "success", 200*time.Millisecond)
	m.IncReroutes()
	m.IncReroutes()
	m.IncDrops()
	m.AddKeywords(6)
	m.SetQueueDepth(3)
	m.SetExclusionSize(12)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.AttemptsTotal.WithLabelValues("zhipu", "success")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.AttemptsTotal.WithLabelValues("zhipu", "rate_limited")), 0.001)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ReroutesTotal), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DropsTotal), 0.001)
	assert.InDelta(t, 6.0, testutil.ToFloat64(m.KeywordsTotal), 0.001)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.QueueDepth), 0.001)
	assert.InDelta(t, 12.0, testutil.ToFloat64(m.ExclusionSize), 0.001)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("p", "success", time.Millisecond)
		m.IncReroutes()
		m.IncDrops()
		m.AddKeywords(1)
		m.SetQueueDepth(1)
		m.SetExclusionSize(1)
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAttempt("zhipu", "success", 50*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "keyscope_attempts_total")
	assert.Contains(t, body, `provider="zhipu"`)
}
