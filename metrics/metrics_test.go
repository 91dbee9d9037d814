package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() SolveRecord {
	return SolveRecord{
		RunID:       "run-1",
		Zones:       2,
		Steps:       24,
		Cycles:      1,
		Variables:   240,
		Constraints: 300,
		Binaries:    48,
		Nodes:       17,
		BuildTime:   5 * time.Millisecond,
		SolveTime:   40 * time.Millisecond,
		Objective:   1234.5,
		Status:      "optimal",
	}
}

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSink(reg)
	require.NoError(t, err)
	require.NoError(t, s.RecordSolve(sampleRecord()))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("optimal")))
	assert.Equal(t, 240.0, testutil.ToFloat64(s.variables))
	assert.Equal(t, 300.0, testutil.ToFloat64(s.constraints))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSink(reg)
	require.NoError(t, err)
	s2, err := NewPromSink(reg)
	require.NoError(t, err, "second sink on the same registry must reuse collectors")

	// recording through the second sink must reach the registry, not a
	// detached duplicate collector
	require.NoError(t, s2.RecordSolve(sampleRecord()))
	n, err := testutil.GatherAndCount(reg, "loadshift_solve_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(s1.runs.WithLabelValues("optimal")))
	assert.Equal(t, 240.0, testutil.ToFloat64(s1.variables))
}

type failSink struct{ err error }

func (f failSink) RecordSolve(SolveRecord) error { return f.err }

type countSink struct{ n int }

func (c *countSink) RecordSolve(SolveRecord) error {
	c.n++
	return nil
}

func TestMultiSink_FansOutAndKeepsFirstError(t *testing.T) {
	boom := errors.New("boom")
	c := &countSink{}
	m := NewMultiSink(failSink{boom}, c, failSink{errors.New("later")})

	err := m.RecordSolve(sampleRecord())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.n, "sinks after a failing one must still record")
}

func TestNopSink(t *testing.T) {
	require.NoError(t, (NopSink{}).RecordSolve(sampleRecord()))
}
