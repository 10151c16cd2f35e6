package metrics

import "github.com/prometheus/client_golang/prometheus"

// Policy channel Prometheus metrics.
var (
	PolicyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "policy_requests_total",
			Help:      "Total number of policy channel requests",
		},
		[]string{"channel", "model", "status"},
	)

	PolicyRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexdex",
			Name:      "policy_request_duration_seconds",
			Help:      "Policy channel request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"channel", "model"},
	)

	PolicyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "policy_errors_total",
			Help:      "Total policy channel errors",
		},
		[]string{"channel", "model", "error_type"},
	)

	PolicyTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "policy_tokens_total",
			Help:      "Total tokens consumed by the policy channel",
		},
		[]string{"channel", "model", "type"},
	)

	PolicyCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "policy_cache_total",
			Help:      "Policy response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	PolicyBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lexdex",
			Name:      "policy_budget_tokens_remaining",
			Help:      "Policy channel tokens left in the current budget period (-1 if unlimited)",
		},
		[]string{"channel", "period"},
	)
)
