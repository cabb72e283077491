// Package metrics exposes Prometheus instrumentation for envelope
// encryption/decryption, the PSK ratchet, and key discovery, following the
// teacher project's internal/metrics package (promauto-registered
// counters/histograms on a dedicated registry).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chainnote"

// Registry is the dedicated registry all chainnote metrics register on,
// kept separate from prometheus.DefaultRegisterer so embedding
// applications can mount it wherever they like.
var Registry = prometheus.NewRegistry()

var (
	// EnvelopeOperations counts envelope-level encrypt/decrypt calls.
	EnvelopeOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envelope",
			Name:      "operations_total",
			Help:      "Total number of envelope encrypt/decrypt operations",
		},
		[]string{"operation", "protocol"}, // encrypt/decrypt, standard/psk
	)

	// EnvelopeErrors counts failed envelope operations by error kind.
	EnvelopeErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envelope",
			Name:      "errors_total",
			Help:      "Total number of envelope operation failures",
		},
		[]string{"operation", "reason"},
	)

	// EnvelopeOperationDuration tracks encrypt/decrypt latency.
	EnvelopeOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "envelope",
			Name:      "operation_duration_seconds",
			Help:      "Envelope encrypt/decrypt duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"operation", "protocol"},
	)

	// RatchetRejections counts PSK ratchet receive rejections by reason.
	RatchetRejections = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratchet",
			Name:      "rejections_total",
			Help:      "Total number of PSK ratchet counter rejections",
		},
		[]string{"reason"}, // replay, out_of_range
	)

	// DiscoveryScans counts key-discovery scans by outcome.
	DiscoveryScans = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "scans_total",
			Help:      "Total number of key discovery scans by outcome",
		},
		[]string{"outcome"}, // verified, unverified, not_found
	)

	// PskManagerOperations counts PSK manager persist/cache operations.
	PskManagerOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pskmanager",
			Name:      "operations_total",
			Help:      "Total number of PSK manager operations",
		},
		[]string{"operation"}, // next_send_counter, validate, record, add_contact
	)
)

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format, suitable for mounting at "/metrics".
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
