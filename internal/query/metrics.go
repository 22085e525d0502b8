package query

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	filterEvaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "query",
		Name:      "filter_evaluations_total",
		Help:      "Filter evaluations by operator and verdict.",
	}, []string{"operator", "matched"})

	boundComparisons = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "query",
		Name:      "bound_comparisons_total",
		Help:      "Cursor bound comparisons against documents.",
	})
)

func init() {
	prometheus.MustRegister(filterEvaluations, boundComparisons)
}

func evaluated(op Operator, matched bool) bool {
	filterEvaluations.WithLabelValues(string(op), strconv.FormatBool(matched)).Inc()
	return matched
}

func recordBoundComparison() {
	boundComparisons.Inc()
}
