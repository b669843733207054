package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := NewManager()
	m.RecordWhoAmI("lookup")
	m.RecordWhoAmI("lookup")
	m.RecordReport("ok")
	m.RecordFinding("webrtc-leak")
	m.ObserveRequest("/api/whoami", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.whoamiTotal.WithLabelValues("lookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.findingsTotal.WithLabelValues("webrtc-leak")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/whoami", "200")))
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	m.RecordWhoAmI("unknown")
	m.RecordReport("ok")
	m.RecordFinding("x")
	m.ObserveRequest("/", 200, time.Second)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewManager()
	m.RecordWhoAmI("headers")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), `privacymirror_whoami_total{method="headers"} 1`)
}

func TestManagersDoNotShareState(t *testing.T) {
	a, b := NewManager(), NewManager()
	a.RecordReport("ok")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.reportsTotal.WithLabelValues("ok")))
}
