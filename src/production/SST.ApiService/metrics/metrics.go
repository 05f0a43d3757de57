package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SamplesIngested counts readings successfully appended to the store.
	SamplesIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sst_samples_ingested_total",
		Help: "Total sensor samples appended to the time-series store.",
	}, []string{"domain"})

	// IngestFailures counts rejected ingest requests by failure kind.
	IngestFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sst_ingest_failures_total",
		Help: "Total ingest requests that failed before a sample was written.",
	}, []string{"reason"})

	// KeysIssued counts ordinary API keys created through the admin API.
	KeysIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sst_api_keys_issued_total",
		Help: "Total ordinary API keys issued.",
	})

	// KeysRevoked counts ordinary API keys revoked through the admin API.
	KeysRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sst_api_keys_revoked_total",
		Help: "Total ordinary API keys revoked.",
	})
)

func init() {
	prometheus.MustRegister(SamplesIngested, IngestFailures, KeysIssued, KeysRevoked)
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
