// Package metrics holds the Prometheus collectors for the gamification core
// and its collaborators. Collectors register with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ascend"

// XPAwarded counts experience points granted, labelled by the event source.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_awarded_total",
	Help:      "Total experience points awarded.",
}, []string{"source"})

var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

var AchievementsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "achievements_awarded_total",
	Help:      "Total achievements recorded.",
}, []string{"type"})

var BurnoutEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "burnout_evaluations_total",
	Help:      "Burnout evaluations by resulting tier.",
}, []string{"level"})

// TextGenRequests counts text-generation lookups by outcome: hit, ok, error or fallback.
var TextGenRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "textgen_requests_total",
	Help:      "Text-generation lookups by outcome.",
}, []string{"outcome"})

var TextGenLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "textgen_latency_seconds",
	Help:      "Outbound text-generation call duration in seconds.",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
})

// RecordXPAward is the single entry point used by the gamification service.
func RecordXPAward(source string, amount int64, levelUp bool) {
	if source == "" {
		source = "unknown"
	}
	XPAwarded.WithLabelValues(source).Add(float64(amount))
	if levelUp {
		LevelUps.Inc()
	}
}
