package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Signing metrics
	signaturesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esewa_signatures_created_total",
		Help: "Total payment request signatures created",
	}, []string{
		"product_code", // Which merchant
		"environment",  // test, production
	})

	// Callback verification metrics
	callbackVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esewa_callback_verifications_total",
		Help: "Total gateway callback verification attempts",
	}, []string{
		"product_code",
		"result", // verified, rejected
		"mode",   // echo, recompute
	})

	// Transaction status metrics
	statusFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esewa_status_fetches_total",
		Help: "Total transaction status lookups against the gateway",
	}, []string{
		"product_code",
		"status", // COMPLETE, PENDING, NOT_FOUND, UNKNOWN, error
	})

	statusFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "esewa_status_fetch_duration_seconds",
		Help: "Time to fetch a transaction status from the gateway",
		// Buckets: 100ms to 30s (gateway round-trip times)
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"product_code",
	})
)

// RecordSignatureCreated records a signed payment request
func RecordSignatureCreated(productCode, environment string) {
	signaturesCreatedTotal.WithLabelValues(productCode, environment).Inc()
}

// RecordCallbackVerification records one callback verification attempt
func RecordCallbackVerification(productCode string, verified bool, mode string) {
	result := "rejected"
	if verified {
		result = "verified"
	}
	callbackVerificationsTotal.WithLabelValues(productCode, result, mode).Inc()
}

// RecordStatusFetch records a transaction status lookup and its duration
func RecordStatusFetch(productCode, status string, duration float64) {
	statusFetchesTotal.WithLabelValues(productCode, status).Inc()
	statusFetchDuration.WithLabelValues(productCode).Observe(duration)
}
