package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once
	submissions *prometheus.CounterVec
)

// submissionCounter counts comment submissions by result.
// Labels: result (created, rejected, failed)
func submissionCounter() *prometheus.CounterVec {
	metricsOnce.Do(func() {
		submissions = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notion_blog",
				Subsystem: "comments",
				Name:      "submissions_total",
				Help:      "Total number of comment submissions by result",
			},
			[]string{"result"},
		)
	})

	return submissions
}
