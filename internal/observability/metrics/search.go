package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

// SearchMetrics implements ports.SearchObserver on top of Prometheus collectors.
type SearchMetrics struct {
	service string

	searchesTotal     *prometheus.CounterVec
	candidates        *prometheus.HistogramVec
	results           *prometheus.HistogramVec
	zeroResultsTotal  *prometheus.CounterVec
	retrievalFailures *prometheus.CounterVec
	stageRemoved      *prometheus.HistogramVec
	summarizerCalls   *prometheus.CounterVec
	retriesTotal      *prometheus.CounterVec
	breakerChanges    *prometheus.CounterVec
}

var _ ports.SearchObserver = (*SearchMetrics)(nil)

var countBuckets = []float64{0, 1, 2, 5, 10, 20, 50, 100, 200}

func NewSearchMetrics(service string, reg prometheus.Registerer) *SearchMetrics {
	m := &SearchMetrics{
		service: service,
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Completed searches by query category and strategy.",
		}, []string{"service", "category", "strategy"}),
		candidates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates",
			Help:      "Candidates returned by the vector stage per search.",
			Buckets:   countBuckets,
		}, []string{"service", "strategy"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Records returned per search.",
			Buckets:   countBuckets,
		}, []string{"service", "strategy"}),
		zeroResultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "zero_results_total",
			Help:      "Searches that returned no records.",
		}, []string{"service", "category"}),
		retrievalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "retrieval_failures_total",
			Help:      "Searches that failed in the vector stage.",
		}, []string{"service", "strategy"}),
		stageRemoved: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "filter_removed",
			Help:      "Records removed by each filter stage.",
			Buckets:   countBuckets,
		}, []string{"service", "stage"}),
		summarizerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "summaries_total",
			Help:      "Summarizer calls by status.",
		}, []string{"service", "status"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Retried adapter calls by operation.",
		}, []string{"service", "operation"}),
		breakerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions.",
		}, []string{"service", "operation", "to"}),
	}

	reg.MustRegister(
		m.searchesTotal,
		m.candidates,
		m.results,
		m.zeroResultsTotal,
		m.retrievalFailures,
		m.stageRemoved,
		m.summarizerCalls,
		m.retriesTotal,
		m.breakerChanges,
	)
	return m
}

func (m *SearchMetrics) ObserveSearch(category domain.QueryCategory, strategy string, candidates, results int) {
	m.searchesTotal.WithLabelValues(m.service, string(category), strategy).Inc()
	m.candidates.WithLabelValues(m.service, strategy).Observe(float64(candidates))
	m.results.WithLabelValues(m.service, strategy).Observe(float64(results))
	if results == 0 {
		m.zeroResultsTotal.WithLabelValues(m.service, string(category)).Inc()
	}
}

func (m *SearchMetrics) ObserveRetrievalFailure(operation string) {
	m.retrievalFailures.WithLabelValues(m.service, operation).Inc()
}

func (m *SearchMetrics) ObserveStage(stage string, before, after int) {
	m.stageRemoved.WithLabelValues(m.service, stage).Observe(float64(before - after))
}

func (m *SearchMetrics) RecordRetry(operation string, _ int) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *SearchMetrics) RecordBreakerTransition(operation, _, to string) {
	m.breakerChanges.WithLabelValues(m.service, operation, to).Inc()
}

// InstrumentSummarizer counts summarizer calls by outcome.
func (m *SearchMetrics) InstrumentSummarizer(next ports.Summarizer) ports.Summarizer {
	return &instrumentedSummarizer{next: next, metrics: m}
}

type instrumentedSummarizer struct {
	next    ports.Summarizer
	metrics *SearchMetrics
}

func (s *instrumentedSummarizer) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	answer, err := s.next.Summarize(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.summarizerCalls.WithLabelValues(s.metrics.service, status).Inc()
	return answer, err
}
