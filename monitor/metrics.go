// Package monitor exposes prometheus metrics for the API client runtime.
package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Request attempts by method and status code (0 = no HTTP exchange).",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Wall time of single request attempts.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "retries_total",
		Help:      "Retries by reason: transport, rate_limited, server_error.",
	}, []string{"reason"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "token_refreshes_total",
		Help:      "Credential refresh cycles by outcome.",
	}, []string{"outcome"})

	forcedLogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "forced_logouts_total",
		Help:      "Irrecoverable 401s that cleared the credential store.",
	})

	uploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qrshare",
		Subsystem: "client",
		Name:      "uploaded_bytes_total",
		Help:      "Multipart upload bytes handed to the transport.",
	})
)

func ObserveRequest(method string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func CountRetry(reason string) {
	retriesTotal.WithLabelValues(reason).Inc()
}

func CountRefresh(outcome string) {
	refreshesTotal.WithLabelValues(outcome).Inc()
}

func CountForcedLogout() {
	forcedLogoutsTotal.Inc()
}

func AddUploadBytes(n int64) {
	if n > 0 {
		uploadedBytesTotal.Add(float64(n))
	}
}
