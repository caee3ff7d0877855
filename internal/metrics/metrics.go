// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starmatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Ranking
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starmatch_ranking_duration_seconds",
			Help:    "Duration of ranking operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"}, // "brand", "description", "candidate"
	)

	// Внешние вызовы
	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starmatch_external_calls_total",
			Help: "Total number of calls to external providers",
		},
		[]string{"provider", "outcome"}, // provider: "embedding", "pitch"; outcome: "ok", "error"
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starmatch_external_call_duration_seconds",
			Help:    "Duration of calls to external providers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Кэш эмбеддингов
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "starmatch_embedding_cache_hits_total",
			Help: "Total number of text embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "starmatch_embedding_cache_misses_total",
			Help: "Total number of text embedding cache misses",
		},
	)

	CatalogRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "starmatch_catalog_rows",
			Help: "Number of rows in the loaded catalog",
		},
	)
)

// RecordAPIRequest записывает метрики HTTP-запроса.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRanking записывает длительность операции ранжирования.
func RecordRanking(operation string, duration time.Duration) {
	RankingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordExternalCall записывает исход и длительность вызова внешнего провайдера.
func RecordExternalCall(provider string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	ExternalCallsTotal.WithLabelValues(provider, outcome).Inc()
	ExternalCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCacheLookup учитывает попадание или промах кэша эмбеддингов.
func RecordCacheLookup(hit bool) {
	if hit {
		EmbeddingCacheHits.Inc()
		return
	}
	EmbeddingCacheMisses.Inc()
}
