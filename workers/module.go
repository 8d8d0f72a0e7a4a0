package workers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
	Logs      logs.Module
	Envelopes envelopes.Module
}

// Options is overridden by configuration forks.
func (Module) Options() Options {
	return DefaultOptions()
}

func (Module) MetricsRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func (Module) Metrics(
	reg *prometheus.Registry,
) *Metrics {
	return NewMetrics(reg)
}

func (Module) Executor(
	options Options,
	registry *envelopes.Registry,
	logger logs.Logger,
	newSpan logs.NewSpan,
	metrics *Metrics,
) *Executor {
	return New(options, registry, logger, newSpan, metrics)
}
