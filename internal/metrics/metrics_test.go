package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveExpirySuggestion(true)
	m.ObserveExpirySuggestion(true)
	m.ObserveExpirySuggestion(false)
	m.ObservePickupValidation("ok")
	m.ObservePickupValidation("AFTER_EXPIRY")
	m.ObserveAttention("EXPIRY_PASSED")
	m.ObserveSnapshotUpdate("Completed")

	require.Equal(t, 2.0, testutil.ToFloat64(m.ExpirySuggestions.WithLabelValues("true")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ExpirySuggestions.WithLabelValues("false")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.PickupValidations.WithLabelValues("AFTER_EXPIRY")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SweeperAttention.WithLabelValues("EXPIRY_PASSED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotUpdates.WithLabelValues("Completed")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveExpirySuggestion(true)
		m.ObservePickupValidation("ok")
		m.ObserveAttention("x")
		m.ObserveSnapshotUpdate("Claimed")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObservePickupValidation("ok")

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `foodbridge_pickup_validations_total{result="ok"} 1`)
}
