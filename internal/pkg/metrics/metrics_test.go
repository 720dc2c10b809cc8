package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBookingOutcome(t *testing.T) {
	m := New()

	m.RecordBookingOutcome("propose", "ok")
	m.RecordBookingOutcome("propose", "ok")
	m.RecordBookingOutcome("propose", "slot_unavailable")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingOutcomes.WithLabelValues("propose", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingOutcomes.WithLabelValues("propose", "slot_unavailable")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.RecordBookingOutcome("cancel", "forbidden")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `booking_operations_total{operation="cancel",outcome="forbidden"} 1`)
}
