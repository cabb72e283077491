package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	EnvelopeOperations.WithLabelValues("encrypt", "standard").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chainnote_envelope_operations_total")
}

func TestCounters_AcceptExpectedLabels(t *testing.T) {
	assert.NotPanics(t, func() {
		EnvelopeErrors.WithLabelValues("decrypt", "aead_open_failed").Inc()
		RatchetRejections.WithLabelValues("replay").Inc()
		DiscoveryScans.WithLabelValues("verified").Inc()
		PskManagerOperations.WithLabelValues("next_send_counter").Inc()
		EnvelopeOperationDuration.WithLabelValues("encrypt", "psk").Observe(0.001)
	})
}
