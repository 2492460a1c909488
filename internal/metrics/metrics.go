// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "submissions_total",
		Help:      "Scored answer submissions per category.",
	}, []string{"category"})

	scorePercentage = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quiz",
		Name:      "score_percentage",
		Help:      "Distribution of submission scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"category"})

	highScores = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "high_scores_total",
		Help:      "New high scores recorded per category.",
	}, []string{"category"})

	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Name:      "ai_generations_total",
		Help:      "AI question generations by outcome.",
	}, []string{"outcome"})
)

// ObserveSubmission records one scored submission.
func ObserveSubmission(category string, score float64, newHighScore bool) {
	submissions.WithLabelValues(category).Inc()
	scorePercentage.WithLabelValues(category).Observe(score)
	if newHighScore {
		highScores.WithLabelValues(category).Inc()
	}
}

// ObserveGeneration records the outcome of an AI batch.
func ObserveGeneration(ok, failed int) {
	generations.WithLabelValues("ok").Add(float64(ok))
	generations.WithLabelValues("failed").Add(float64(failed))
}
