package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/usecase"
	"github.com/stretchr/testify/require"
)

var _ usecase.DispatchMetrics = (*DispatchMetrics)(nil)

func TestDispatchMetrics_Counts(t *testing.T) {
	m := NewDispatchMetrics("test")

	m.ObserveDispatch(dispatch.KindMatch, "completed", 120*time.Millisecond)
	m.ObserveDispatch(dispatch.KindMatch, "completed", 80*time.Millisecond)
	m.ObserveDispatch(dispatch.KindTournament, "failed", time.Second)
	m.ObserveRejection(dispatch.KindMatch, "duplicate_request")

	require.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("match", "completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("tournament", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("match", "duplicate_request")))
}

func TestDispatchMetrics_Handler(t *testing.T) {
	m := NewDispatchMetrics("")
	m.ObserveRejection(dispatch.KindScrimmage, "action_disabled")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `awap_dispatch_rejections_total{kind="scrimmage",reason="action_disabled"} 1`), body)
	require.True(t, strings.Contains(body, "go_goroutines"))
}

func TestDebugMux_MountsMetricsWhenGiven(t *testing.T) {
	m := NewDispatchMetrics("")

	rec := httptest.NewRecorder()
	newDebugMux(m.Handler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newDebugMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
