package provider

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_provider_submissions_total",
			Help: "Total provider submissions by classified outcome.",
		},
		[]string{"outcome"},
	)

	pollRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prism_provider_poll_rounds",
			Help:    "Poll rounds taken per task before the session ended.",
			Buckets: prometheus.LinearBuckets(0, 10, 7),
		},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(pollRounds)
}
