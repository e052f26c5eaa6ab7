package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	RewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_granted_total",
			Help: "Reward grants by journal type",
		},
		[]string{"type"},
	)
	RewardsDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_denied_total",
			Help: "Reward attempts denied by eligibility or idempotency checks",
		},
		[]string{"type", "reason"},
	)
)

// RegisterMetrics installs the collectors on the default registry.
// MustRegister would panic on double init in tests.
func RegisterMetrics() {
	for _, c := range []prometheus.Collector{RLRequests, RLBlocked, RewardsGranted, RewardsDenied} {
		_ = prometheus.Register(c)
	}
}
