package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCall_IncrementsCountByOutcome(t *testing.T) {
	r := NewRecorder()

	r.ObserveCall("act", true, 0.1)
	r.ObserveCall("act", false, 0.2)
	r.ObserveCall("act", true, 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.calls.WithLabelValues("act", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.calls.WithLabelValues("act", "failure")))
}

func TestIncCounters(t *testing.T) {
	r := NewRecorder()

	r.IncDispatchRetry()
	r.IncDispatchRetry()
	r.IncChunksExhausted()
	r.IncVerifierRejection()

	assert.Equal(t, float64(2), testutil.ToFloat64(r.dispatchRetries))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.chunksExhausted))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.verifierRejections))
}

func TestHandler_ServesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveCall("extract", true, 0.3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "browserloop_calls_total")
}
