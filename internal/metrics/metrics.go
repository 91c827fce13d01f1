// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Chat stream outcomes.
const (
	OutcomeDone     = "done"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	Registry *prometheus.Registry

	ChatStreams   *prometheus.CounterVec
	ChatDeltas    prometheus.Counter
	ChatActive    prometheus.Gauge
	ChatDuration  prometheus.Histogram
	FeedWrites    *prometheus.CounterVec
	JobRuns       *prometheus.CounterVec
	ImportedPosts prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ChatStreams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentflow",
			Name:      "chat_streams_total",
			Help:      "Chat proxy requests by outcome.",
		}, []string{"outcome"}),
		ChatDeltas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contentflow",
			Name:      "chat_deltas_total",
			Help:      "Text deltas relayed to clients.",
		}),
		ChatActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "contentflow",
			Name:      "chat_streams_active",
			Help:      "Chat streams currently open.",
		}),
		ChatDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contentflow",
			Name:      "chat_stream_duration_seconds",
			Help:      "Time from request to end of stream.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		FeedWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentflow",
			Name:      "api_writes_total",
			Help:      "Mutating API calls by operation and result.",
		}, []string{"operation", "result"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentflow",
			Name:      "planner_job_runs_total",
			Help:      "Planner job runs by job and result.",
		}, []string{"job", "result"}),
		ImportedPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contentflow",
			Name:      "imported_posts_total",
			Help:      "Posts created from imported feeds.",
		}),
	}

	m.Registry.MustRegister(
		m.ChatStreams,
		m.ChatDeltas,
		m.ChatActive,
		m.ChatDuration,
		m.FeedWrites,
		m.JobRuns,
		m.ImportedPosts,
	)
	return m
}

// Result labels a call by whether it failed.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
