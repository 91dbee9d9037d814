// Package app wires the input loader, the shift formulation, the solver and
// the result writers into one service.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/loadshift/config"
	"github.com/kilianp07/loadshift/core/balance"
	"github.com/kilianp07/loadshift/core/milp"
	"github.com/kilianp07/loadshift/core/shift"
	"github.com/kilianp07/loadshift/infra/input"
	"github.com/kilianp07/loadshift/infra/logger"
	"github.com/kilianp07/loadshift/internal/eventbus"
	"github.com/kilianp07/loadshift/metrics"
	"github.com/kilianp07/loadshift/pkg/export"
)

// Service runs one optimization per invocation.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	sink metrics.SolveSink
	bus  *eventbus.Bus
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []metrics.SolveSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink metrics.SolveSink = metrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	s := &Service{cfg: cfg, log: logg, sink: sink, bus: eventbus.New()}
	go s.watch(s.bus.Subscribe(16))
	return s, nil
}

// watch logs solve lifecycle events published on the bus.
func (s *Service) watch(events <-chan any) {
	for e := range events {
		switch ev := e.(type) {
		case ModelBuilt:
			s.log.Debugw("model built", map[string]any{
				"run_id": ev.RunID, "variables": ev.Variables,
				"constraints": ev.Constraints, "binaries": ev.Binaries,
			})
		case RunFinished:
			s.log.Infof("run %s finished: %s (objective=%v, nodes=%d, %v)",
				ev.RunID, ev.Status, ev.Objective, ev.Nodes, ev.Duration)
		}
	}
}

// Run loads the inputs, builds and solves the model, writes the schedule and
// records the outcome.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	runID := uuid.NewString()
	s.log.Infof("run %s: loading inputs from %s", runID, s.cfg.Inputs.Dir)
	data, err := input.Load(s.cfg.Inputs)
	if err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	buildStart := time.Now()
	m := milp.NewModel()
	reg := balance.New()
	builder, err := shift.NewBuilder(data.Grid, data.Params, s.cfg.Shift, s.log)
	if err != nil {
		return err
	}
	vars, err := builder.Build(m, reg)
	if err != nil {
		return err
	}
	if err := s.buildHost(m, reg, data, vars); err != nil {
		return err
	}
	buildTime := time.Since(buildStart)

	s.bus.Publish(ModelBuilt{
		RunID:       runID,
		Variables:   m.NumVars(),
		Constraints: m.NumConstraints(),
		Binaries:    m.NumBinaries(),
	})

	if err := ctx.Err(); err != nil {
		return err
	}

	solver := &milp.Solver{MaxNodes: s.cfg.Solve.MaxNodes}
	solveStart := time.Now()
	sol, solveErr := solver.Solve(m)
	solveTime := time.Since(solveStart)

	rec := metrics.SolveRecord{
		RunID:       runID,
		Zones:       len(data.Params.Zones),
		Steps:       data.Grid.Len(),
		Cycles:      len(data.Grid.Cycles()),
		Variables:   m.NumVars(),
		Constraints: m.NumConstraints(),
		Binaries:    m.NumBinaries(),
		BuildTime:   buildTime,
		SolveTime:   solveTime,
		Status:      solveStatus(solveErr),
	}
	if sol != nil {
		rec.Nodes = sol.Nodes
		rec.Objective = sol.Objective
	}
	if err := s.sink.RecordSolve(rec); err != nil {
		s.log.Warnf("record solve: %v", err)
	}
	s.bus.Publish(RunFinished{
		RunID: runID, Status: rec.Status,
		Objective: rec.Objective, Nodes: rec.Nodes, Duration: solveTime,
	})
	if solveErr != nil {
		return fmt.Errorf("solve: %w", solveErr)
	}

	records := vars.Records(data.Grid, data.Params.Zones, sol.X)
	if err := s.writeOutput(records); err != nil {
		return err
	}
	s.log.Infof("run %s: schedule written to %s", runID, s.cfg.Output.Path)
	return nil
}

// buildHost adds the priced grid supply, resolves the zonal balance and sets
// the objective: energy cost plus the activation and magnitude penalties that
// keep the linearizations tight.
func (s *Service) buildHost(m *milp.Model, reg *balance.Registry, data *input.Data, vars *shift.Vars) error {
	supply := make(map[shift.Key]int)
	for _, z := range data.Params.Zones {
		for t := 0; t < data.Grid.Len(); t++ {
			supply[shift.Key{Zone: z, Step: t}] = m.AddContinuous(
				fmt.Sprintf("supply[%s][%d]", z, t), 0, math.Inf(1))
		}
	}
	reg.AddInjection("GridSupply", func(z string, t int) *milp.Expr {
		return milp.Term(supply[shift.Key{Zone: z, Step: t}], 1)
	})
	if err := reg.Resolve(m, data.Params.Zones, data.Grid, data.Params.Demand); err != nil {
		return err
	}

	obj := milp.NewExpr()
	for _, z := range data.Params.Zones {
		for t := 0; t < data.Grid.Len(); t++ {
			k := shift.Key{Zone: z, Step: t}
			dur := data.Grid.Step(t).DurationHours
			obj.Add(supply[k], data.Price[k]*dur)
			obj.Add(vars.Active[k], s.cfg.Solve.ActivationCost)
			obj.Add(vars.Abs[k], s.cfg.Solve.AbsPenalty)
		}
	}
	m.Minimize(obj)
	return nil
}

func (s *Service) writeOutput(records []shift.Record) error {
	f, err := os.Create(s.cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	switch s.cfg.Output.Format {
	case "json":
		err = export.WriteJSON(f, records)
	default:
		err = export.WriteCSV(f, records)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func solveStatus(err error) string {
	switch {
	case err == nil:
		return "optimal"
	case errors.Is(err, milp.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, milp.ErrUnbounded):
		return "unbounded"
	default:
		return "error"
	}
}

// Close releases the event bus.
func (s *Service) Close() error {
	s.bus.Close()
	return nil
}
