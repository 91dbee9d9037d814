package metrics

import "time"

// SolveRecord captures the outcome of one optimization run.
type SolveRecord struct {
	RunID       string
	Zones       int
	Steps       int
	Cycles      int
	Variables   int
	Constraints int
	Binaries    int
	Nodes       int
	BuildTime   time.Duration
	SolveTime   time.Duration
	Objective   float64
	// Status is "optimal", "infeasible", "unbounded" or "error".
	Status string
}

// SolveSink records solve outcomes for observability purposes.
type SolveSink interface {
	RecordSolve(rec SolveRecord) error
}

// NopSink implements SolveSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }

// MultiSink fans a record out to several sinks, returning the first error.
type MultiSink struct {
	sinks []SolveSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...SolveSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordSolve(rec SolveRecord) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordSolve(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Config selects and configures the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}
