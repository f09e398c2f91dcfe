package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	EvaluationsTotal *prometheus.CounterVec
	EvaluationScore  prometheus.Histogram

	RetryAttemptsTotal *prometheus.CounterVec

	WorkflowRunsTotal  *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	RulesReloadsTotal  *prometheus.CounterVec

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medpress_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"route"},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "medpress_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		EvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_evaluations_total",
				Help: "Total number of article evaluations by result",
			},
			[]string{"result"},
		),
		EvaluationScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "medpress_evaluation_score",
				Help:    "Distribution of total evaluation scores",
				Buckets: []float64{40, 50, 60, 70, 80, 85, 90, 95, 100},
			},
		),

		RetryAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_retry_attempts_total",
				Help: "Total number of generation retry attempts by final status",
			},
			[]string{"final_status"},
		),

		WorkflowRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_workflow_runs_total",
				Help: "Total number of article workflow runs by outcome",
			},
			[]string{"status"},
		),
		GenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "medpress_generation_duration_seconds",
				Help:    "End-to-end article generation duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		RulesReloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_rules_reloads_total",
				Help: "Total number of validation rule reloads",
			},
			[]string{"status"},
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medpress_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_search_requests_total",
				Help: "Total number of research search requests",
			},
			[]string{"status"},
		),
		SearchRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "medpress_search_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "medpress_cache_hits_total",
				Help: "Total number of research cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "medpress_cache_misses_total",
				Help: "Total number of research cache misses",
			},
		),

		RateLimitHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "medpress_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"client"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordEvaluation(passed bool, score int) {
	result := "fail"
	if passed {
		result = "pass"
	}
	m.EvaluationsTotal.WithLabelValues(result).Inc()
	m.EvaluationScore.Observe(float64(score))
}

func (m *Metrics) RecordRetryAttempts(finalStatus string, attempts int) {
	m.RetryAttemptsTotal.WithLabelValues(finalStatus).Add(float64(attempts))
}

func (m *Metrics) RecordWorkflowRun(status string, duration time.Duration) {
	m.WorkflowRunsTotal.WithLabelValues(status).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordRulesReload(ok bool) {
	status := "error"
	if ok {
		status = "ok"
	}
	m.RulesReloadsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordSearchRequest(status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
	m.SearchRequestDuration.WithLabelValues().Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit(client string) {
	m.RateLimitHitsTotal.WithLabelValues(client).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
