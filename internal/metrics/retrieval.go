package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	// RetrievalVerdictsTotal counts router verdicts by outcome:
	// "sufficient", "low_confidence", "empty_index", "below_threshold".
	RetrievalVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blograg",
			Name:      "retrieval_verdicts_total",
			Help:      "Retrieval router verdicts by outcome",
		},
		[]string{"outcome"},
	)

	// AnswerProvenanceTotal counts assembled answers by provenance tag.
	AnswerProvenanceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blograg",
			Name:      "answer_provenance_total",
			Help:      "Assembled answers by provenance",
		},
		[]string{"provenance"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalVerdictsTotal)
	prometheus.MustRegister(AnswerProvenanceTotal)
	retrievalMetricsRegistered = true
}
