package workers

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeCancel  = "cancel"
	outcomeLiteral = "literal"
)

type Metrics struct {
	Invocations  *prometheus.CounterVec
	LiveContexts prometheus.Gauge
	Queued       prometheus.Gauge
	Duration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them to reg, if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgpipe",
			Name:      "invocations_total",
			Help:      "Invocations by outcome.",
		}, []string{"outcome"}),
		LiveContexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bgpipe",
			Name:      "live_contexts",
			Help:      "Execution contexts currently alive.",
		}),
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bgpipe",
			Name:      "queued_invocations",
			Help:      "Invocations waiting for a context slot.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bgpipe",
			Name:      "invocation_duration_seconds",
			Help:      "Time from dispatch to resolution.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Invocations,
			m.LiveContexts,
			m.Queued,
			m.Duration,
		)
	}
	return m
}
