package metrics

import "github.com/prometheus/client_golang/prometheus"

// Admission and index Prometheus metrics.
var (
	AdmissionDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "admission_decisions_total",
			Help:      "Admission decisions by vendor and outcome",
		},
		[]string{"vendor", "outcome"}, // outcome: "released" / "rejected" / "error"
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexdex",
			Name:      "index_documents",
			Help:      "Number of articles in the published index",
		},
	)

	IndexVocabulary = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexdex",
			Name:      "index_vocabulary_terms",
			Help:      "Vocabulary size of the published index",
		},
	)

	IndexReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexdex",
			Name:      "index_reloads_total",
			Help:      "Index publish attempts by source and status",
		},
		[]string{"source", "status"}, // source: "build" / "artifact"
	)
)

var registered bool

// Register registers the domain metrics with the default registry. Must be
// called once from main; repeated calls are no-ops.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		PolicyRequestsTotal,
		PolicyRequestDuration,
		PolicyErrorsTotal,
		PolicyTokensTotal,
		PolicyCacheTotal,
		PolicyBudgetTokensRemaining,
		AdmissionDecisionsTotal,
		IndexDocuments,
		IndexVocabulary,
		IndexReloadsTotal,
	)
	registered = true
}
