package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	solveTime   prometheus.Histogram
	buildTime   prometheus.Histogram
	nodes       prometheus.Histogram
	variables   prometheus.Gauge
	constraints prometheus.Gauge
}

// NewPromSink registers solve metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadshift_solve_runs_total",
			Help: "Total number of solve runs by final status",
		}, []string{"status"}),
		solveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loadshift_solve_duration_seconds",
			Help:    "Wall time spent in the solver",
			Buckets: prometheus.DefBuckets,
		}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loadshift_build_duration_seconds",
			Help:    "Wall time spent building the constraint system",
			Buckets: prometheus.DefBuckets,
		}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loadshift_branch_nodes",
			Help:    "Branch-and-bound nodes explored per run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		variables: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loadshift_model_variables",
			Help: "Variables in the last built model",
		}),
		constraints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loadshift_model_constraints",
			Help: "Constraints in the last built model",
		}),
	}
	if err := reg.Register(s.runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(s.solveTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.solveTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(s.buildTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.buildTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(s.nodes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.nodes = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(s.variables); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.variables = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(s.constraints); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			s.constraints = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	return s, nil
}

// RecordSolve updates all collectors from the run record.
func (s *PromSink) RecordSolve(rec SolveRecord) error {
	s.runs.WithLabelValues(rec.Status).Inc()
	s.solveTime.Observe(rec.SolveTime.Seconds())
	s.buildTime.Observe(rec.BuildTime.Seconds())
	s.nodes.Observe(float64(rec.Nodes))
	s.variables.Set(float64(rec.Variables))
	s.constraints.Set(float64(rec.Constraints))
	return nil
}
