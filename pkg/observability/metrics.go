// Package observability exposes Prometheus metrics for the compile and
// run surfaces.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors the service surfaces record into.
type Metrics struct {
	CompilesTotal *prometheus.CounterVec
	RunsTotal     *prometheus.CounterVec
	RunSteps      prometheus.Histogram
	MachineStates prometheus.Histogram
}

// NewMetrics builds the collectors and registers them on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CompilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spool_compiles_total",
				Help: "Total number of compile requests",
			},
			[]string{"status"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spool_runs_total",
				Help: "Total number of simulator runs",
			},
			[]string{"verdict"},
		),
		RunSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spool_run_steps",
				Help:    "Steps taken per simulator run",
				Buckets: prometheus.ExponentialBuckets(10, 10, 7),
			},
		),
		MachineStates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spool_machine_states",
				Help:    "State count of compiled machines",
				Buckets: prometheus.ExponentialBuckets(10, 4, 6),
			},
		),
	}
	reg.MustRegister(m.CompilesTotal, m.RunsTotal, m.RunSteps, m.MachineStates)
	return m
}

// ObserveCompile records one compile outcome.
func (m *Metrics) ObserveCompile(err error, states int) {
	if err != nil {
		m.CompilesTotal.WithLabelValues("error").Inc()
		return
	}
	m.CompilesTotal.WithLabelValues("ok").Inc()
	m.MachineStates.Observe(float64(states))
}

// ObserveRun records one simulator run.
func (m *Metrics) ObserveRun(accepted, hitLimit bool, steps int) {
	verdict := "reject"
	switch {
	case hitLimit:
		verdict = "limit"
	case accepted:
		verdict = "accept"
	}
	m.RunsTotal.WithLabelValues(verdict).Inc()
	m.RunSteps.Observe(float64(steps))
}
