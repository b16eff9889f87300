package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// CascadeRuns counts cascade deletions by root kind and outcome
	CascadeRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campustrack",
		Name:      "cascade_runs_total",
		Help:      "Cascade deletions by root entity kind and outcome.",
	}, []string{"root", "outcome"})

	// BlobOperations counts blob store calls by operation and outcome
	BlobOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campustrack",
		Name:      "blob_operations_total",
		Help:      "Blob store uploads and releases by outcome.",
	}, []string{"op", "outcome"})
)

func init() {
	prometheus.MustRegister(CascadeRuns, BlobOperations)
}

// Outcome maps an error to its outcome label
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
