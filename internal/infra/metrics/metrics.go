package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_cycles_total",
		Help: "Количество завершённых циклов голосования",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "voter_cycle_duration_seconds",
		Help:    "Длительность одного цикла",
		Buckets: prometheus.DefBuckets,
	})
	CyclesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_cycles_skipped_total",
		Help: "Пропуски тиков из-за ещё идущего цикла",
	})
	VotesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_votes_submitted_total",
		Help: "Количество отданных голосов",
	})
	BoostsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_boosts_applied_total",
		Help: "Количество применённых бустов",
	})
	ChallengeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_challenge_failures_total",
		Help: "Челленджи, завершившиеся ошибкой внутри цикла",
	})
	InsufficientPools = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voter_insufficient_pools_total",
		Help: "Пулы, которых не хватило для достижения целевой экспозиции",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voter_network_request_duration_seconds",
		Help:    "Длительность запросов к платформе",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voter_network_request_total",
		Help: "Количество запросов к платформе",
	}, []string{"operation", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CyclesTotal,
		CycleDuration,
		CyclesSkipped,
		VotesSubmitted,
		BoostsApplied,
		ChallengeFailures,
		InsufficientPools,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус запроса к платформе.
func ObserveNetworkRequest(operation string, start time.Time, err error) {
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(operation, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(operation, status).Inc()
}
