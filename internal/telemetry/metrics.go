package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Prometheus. Регистрируются в DefaultRegisterer при импорте
// пакета и экспортируются на /metrics.
var (
	// RunsStarted — количество запущенных workflow.
	RunsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_runs_started_total",
		Help: "Количество запущенных workflow",
	}, []string{"workflow_id"})

	// RunsCompleted — количество успешно завершённых запусков.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_runs_completed_total",
		Help: "Количество успешно завершённых запусков",
	}, []string{"workflow_id"})

	// RunsFailed — количество запусков, завершившихся ошибкой узла.
	RunsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_runs_failed_total",
		Help: "Количество запусков, завершившихся ошибкой узла",
	}, []string{"workflow_id"})

	// EventsEmitted — количество событий, отданных потребителям.
	EventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cascade_events_emitted_total",
		Help: "Количество событий выполнения, отданных потребителям",
	})

	// RunDuration — длительность запусков workflow.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cascade_run_duration_seconds",
		Help:    "Длительность запусков workflow",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow_id"})

	// HTTPRequests — количество HTTP запросов по маршрутам.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_http_requests_total",
		Help: "Количество HTTP запросов",
	}, []string{"method", "path", "status"})
)
