package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crm_reports"

// Metrics holds the report pipeline collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	runs          *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rows          *prometheus.CounterVec
	skippedRows   *prometheus.CounterVec
	tasksEnqueued *prometheus.CounterVec
	limited       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Report runs by outcome.",
		}, []string{"report", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time from selection to stored file.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows written to report files.",
		}, []string{"report"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Rows left out because a value could not be resolved.",
		}, []string{"report"}),
		tasksEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_enqueued_total",
			Help:      "Report runs handed to the worker queue.",
		}, []string{"report"}),
		limited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "limited_total",
			Help:      "Invocations refused because the selection was too large.",
		}, []string{"report"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runs, m.duration, m.rows, m.skippedRows, m.tasksEnqueued, m.limited,
	)
	return m
}

func (m *Metrics) ObserveRun(report, status string, elapsed time.Duration, rows, skipped int) {
	m.runs.WithLabelValues(report, status).Inc()
	m.duration.WithLabelValues(report).Observe(elapsed.Seconds())
	m.rows.WithLabelValues(report).Add(float64(rows))
	m.skippedRows.WithLabelValues(report).Add(float64(skipped))
}

func (m *Metrics) TaskEnqueued(report string) {
	m.tasksEnqueued.WithLabelValues(report).Inc()
}

func (m *Metrics) Limited(report string) {
	m.limited.WithLabelValues(report).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
