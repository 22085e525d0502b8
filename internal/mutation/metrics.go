package mutation

import "github.com/prometheus/client_golang/prometheus"

const (
	kindSet       = "set"
	kindPatch     = "patch"
	kindDelete    = "delete"
	kindTransform = "transform"

	modeLocal  = "local"
	modeRemote = "remote"
)

var (
	applyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutation",
		Name:      "apply_total",
		Help:      "Mutation applications by mutation kind and application mode.",
	}, []string{"kind", "mode"})

	preconditionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mutation",
		Name:      "precondition_failures_total",
		Help:      "Mutation applications whose precondition did not hold locally.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(applyTotal, preconditionFailures)
}

func recordApply(kind, mode string) {
	applyTotal.WithLabelValues(kind, mode).Inc()
}

func recordPreconditionFailure(kind string) {
	preconditionFailures.WithLabelValues(kind).Inc()
}
