package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess     = "success"
	OutcomeNoSQL       = "no_sql"
	OutcomeRejected    = "rejected"
	OutcomeModelError  = "model_error"
	OutcomeRetrieval   = "retrieval_error"
	OutcomeQueryFailed = "query_failed"
	OutcomeCanceled    = "canceled"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookquery_generations_total",
			Help: "Total number of question-to-SQL generations by outcome.",
		},
		[]string{"outcome"},
	)
	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookquery_generation_duration_seconds",
			Help:    "Latency of a full generation (retrieval, prompt, model call, extraction).",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
	retrievedExamples = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookquery_retrieved_examples",
			Help:    "Number of few-shot examples placed in each prompt.",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookquery_executions_total",
			Help: "Total number of SQL executions by outcome.",
		},
		[]string{"outcome"},
	)
	executionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookquery_execution_duration_seconds",
			Help:    "Latency of a single SQL execution including connect and close.",
			Buckets: prometheus.DefBuckets,
		},
	)
	executionRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookquery_execution_rows",
			Help:    "Rows returned per SQL execution.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)
	archiveFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookquery_archive_failures_total",
			Help: "Total number of query runs that could not be archived.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		generationsTotal,
		generationDurationSeconds,
		retrievedExamples,
		executionsTotal,
		executionDurationSeconds,
		executionRows,
		archiveFailuresTotal,
	)
}

func ObserveGeneration(outcome string, examples int, elapsed time.Duration) {
	generationsTotal.WithLabelValues(outcome).Inc()
	generationDurationSeconds.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		retrievedExamples.Observe(float64(examples))
	}
}

func ObserveExecution(outcome string, rows int, elapsed time.Duration) {
	executionsTotal.WithLabelValues(outcome).Inc()
	executionDurationSeconds.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		executionRows.Observe(float64(rows))
	}
}

func IncrementArchiveFailure() {
	archiveFailuresTotal.Inc()
}
