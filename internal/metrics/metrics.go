// Package metrics registers the service's Prometheus instruments,
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service counters. Label values are low-cardinality
// enums only (mode, trigger, source).
type Metrics struct {
	SessionsStarted   prometheus.Counter
	AttemptsFinalized *prometheus.CounterVec // labels: mode, trigger (user|timer)
	QuestionsParsed   *prometheus.CounterVec // label: source (text|csv|xlsx)
	QuizzesCreated    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions successfully initialized.",
		}),
		AttemptsFinalized: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_attempts_finalized_total",
			Help: "Attempts recorded, by session mode and finalize trigger.",
		}, []string{"mode", "trigger"}),
		QuestionsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_questions_parsed_total",
			Help: "Questions produced by the authoring parser, by input source.",
		}, []string{"source"}),
		QuizzesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_quizzes_created_total",
			Help: "Quizzes committed to the catalog.",
		}),
	}
}
