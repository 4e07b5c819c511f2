package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Auth operations by name and outcome.",
	}, []string{"operation", "outcome"})

	RefreshTokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "auth",
		Name:      "refresh_tokens_revoked_total",
		Help:      "Refresh tokens revoked by logout, revoke-all, rotation or expiry cleanup.",
	})

	RefreshTokensPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "auth",
		Name:      "refresh_tokens_purged_total",
		Help:      "Expired and revoked refresh tokens deleted.",
	})

	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel",
		Subsystem: "access",
		Name:      "decisions_total",
		Help:      "Trip access checks by guard and result.",
	}, []string{"guard", "result"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "travel",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route, method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
