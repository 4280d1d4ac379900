package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mock_interview"

var (
	ResumeGateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_gate_decisions_total",
		Help:      "Resume screening outcomes against the interview gate",
	}, []string{"decision"})

	ResumeScoreParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_score_parses_total",
		Help:      "Which stage recovered the resume score (structured, text or default)",
	}, []string{"stage"})

	QuestionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_issued_total",
		Help:      "Interview questions handed to candidates",
	})

	QuestionsExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_exhausted_total",
		Help:      "Question requests that found no unseen question for the domain",
	})

	AnswersScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_scored_total",
		Help:      "Answers evaluated by the scorer, split by ok or fallback",
	}, []string{"result"})

	InterviewsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_persisted_total",
		Help:      "Completed interviews written to durable storage",
	})

	EvaluationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_jobs_total",
		Help:      "Evaluation worker job outcomes",
	}, []string{"status"})
)
