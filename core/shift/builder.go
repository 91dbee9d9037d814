package shift

import (
	"fmt"
	"math"

	"github.com/kilianp07/loadshift/core/balance"
	"github.com/kilianp07/loadshift/core/logger"
	"github.com/kilianp07/loadshift/core/milp"
	"github.com/kilianp07/loadshift/core/timegrid"
)

// Config holds the formulation knobs.
type Config struct {
	// CooldownSteps is the trailing window length for the minimum-interval
	// constraint. 0 selects the default, a negative value disables the
	// constraint.
	CooldownSteps int `json:"cooldown_steps"`
	// ActivationTolerance is the numerical slack of the activation floor
	// coupling, so negligible shifts do not force the indicator on.
	ActivationTolerance float64 `json:"activation_tolerance"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.CooldownSteps == 0 {
		c.CooldownSteps = 6
	}
	if c.ActivationTolerance == 0 {
		c.ActivationTolerance = 1e-6
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.ActivationTolerance < 0 {
		return fmt.Errorf("activation_tolerance must be non-negative")
	}
	return nil
}

// Vars holds the ids of the decision variables declared by the builder.
type Vars struct {
	Up       map[Key]int
	Down     map[Key]int
	Abs      map[Key]int
	Recovery map[Key]int
	Active   map[Key]int
}

// ShiftExpr returns the signed net shift shiftUp - shiftDown at (z, t).
func (v *Vars) ShiftExpr(z string, t int) *milp.Expr {
	return milp.Term(v.Up[Key{z, t}], 1).Add(v.Down[Key{z, t}], -1)
}

// Builder declares the shiftable-load variables and constraints on a model.
type Builder struct {
	grid   *timegrid.Grid
	params *Params
	cfg    Config
	log    logger.Logger
}

// NewBuilder validates the inputs and returns a builder.
func NewBuilder(grid *timegrid.Grid, params *Params, cfg Config, log logger.Logger) (*Builder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("shift: config: %w", err)
	}
	if err := params.Validate(grid); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Builder{grid: grid, params: params, cfg: cfg, log: log}, nil
}

// Build declares all variables and constraints and registers the net shift
// and the recovery draw as withdrawals on the zonal balance registry.
func (b *Builder) Build(m *milp.Model, reg *balance.Registry) (*Vars, error) {
	g, p := b.grid, b.params
	v := &Vars{
		Up:       make(map[Key]int),
		Down:     make(map[Key]int),
		Abs:      make(map[Key]int),
		Recovery: make(map[Key]int),
		Active:   make(map[Key]int),
	}

	for _, z := range p.Zones {
		for t := 0; t < g.Len(); t++ {
			k := Key{z, t}
			v.Up[k] = m.AddContinuous(fmt.Sprintf("shift_up[%s][%d]", z, t), 0, p.Up(z, t))
			v.Down[k] = m.AddContinuous(fmt.Sprintf("shift_down[%s][%d]", z, t), 0, p.Down(z, t))
			v.Abs[k] = m.AddContinuous(fmt.Sprintf("shift_abs[%s][%d]", z, t), 0, math.Inf(1))
			v.Recovery[k] = m.AddContinuous(fmt.Sprintf("recovery[%s][%d]", z, t), math.Inf(-1), math.Inf(1))
			v.Active[k] = m.AddBinary(fmt.Sprintf("dr_active[%s][%d]", z, t))
		}
	}

	for _, z := range p.Zones {
		for t := 0; t < g.Len(); t++ {
			k := Key{z, t}
			up, down, abs, act := v.Up[k], v.Down[k], v.Abs[k], v.Active[k]

			// abs >= |up - down|, the standard linear relaxation. It binds
			// tightly only under objective pressure on abs.
			m.AddConstraint(fmt.Sprintf("shift_abs_pos[%s][%d]", z, t),
				milp.Term(abs, 1).Add(up, -1).Add(down, 1), milp.GE, 0)
			m.AddConstraint(fmt.Sprintf("shift_abs_neg[%s][%d]", z, t),
				milp.Term(abs, 1).Add(up, 1).Add(down, -1), milp.GE, 0)

			b.linkActivation(m, z, t, up, down, abs, act)
			b.cooldown(m, v, z, t)
			b.lockouts(m, z, t, act)
			b.recoveryTrajectory(m, v, z, t)
		}
		b.cycleBalance(m, v, z)
		b.cycleShiftBudget(m, v, z)
	}

	reg.AddWithdrawal("ShiftDemand", func(z string, t int) *milp.Expr {
		return v.ShiftExpr(z, t)
	})
	reg.AddWithdrawal("RecoveryDemand", func(z string, t int) *milp.Expr {
		return milp.Term(v.Recovery[Key{z, t}], 1)
	})

	b.log.Infof("shift model built: %d zones, %d steps, %d cycles, %d vars, %d constraints",
		len(p.Zones), g.Len(), len(g.Cycles()), m.NumVars(), m.NumConstraints())
	return v, nil
}

// linkActivation couples the continuous shift magnitudes to the binary
// indicator: the big-M bounds in both directions, plus the activation floor
// forcing the indicator on for non-trivial shifts.
func (b *Builder) linkActivation(m *milp.Model, z string, t, up, down, abs, act int) {
	upLim := b.params.Up(z, t)
	downLim := b.params.Down(z, t)

	if math.IsInf(upLim, 1) {
		// No finite big-M exists; the indicator cannot bound an unbounded
		// up-shift and the magnitude/limit ratio is undefined.
		b.log.Warnf("zone %s step %d: unbounded up limit, skipping activation linkage", z, t)
	} else if upLim > 0 {
		m.AddConstraint(fmt.Sprintf("active_link_up[%s][%d]", z, t),
			milp.Term(up, 1).Add(act, -upLim), milp.LE, 0)
		// act >= abs/upLim - eps
		m.AddConstraint(fmt.Sprintf("activation_floor[%s][%d]", z, t),
			milp.Term(act, 1).Add(abs, -1/upLim), milp.GE, -b.cfg.ActivationTolerance)
	}
	// upLim == 0: shift_up is fixed to 0 by its bound and the indicator
	// stays uncoupled, the step is treated as always-inactive on the up side.

	m.AddConstraint(fmt.Sprintf("active_link_down[%s][%d]", z, t),
		milp.Term(down, 1).Add(act, -downLim), milp.LE, 0)
}

// cooldown constrains the sum of the indicator over the previous
// CooldownSteps steps (wrapping within the cycle) to at most one activation.
func (b *Builder) cooldown(m *milp.Model, v *Vars, z string, t int) {
	k := b.cfg.CooldownSteps
	if k <= 0 {
		return
	}
	// Collect distinct predecessors; under wrap a short cycle may revisit a
	// step or reach t itself, and counting those again would make the
	// constraint spuriously contradictory.
	seen := map[int]bool{t: true}
	e := milp.NewExpr()
	n := 0
	for i := 1; i <= k; i++ {
		prev := b.grid.Prev(t, i)
		if seen[prev] {
			continue
		}
		seen[prev] = true
		e.Add(v.Active[Key{z, prev}], 1)
		n++
	}
	if n == 0 {
		return // degenerate window, vacuously satisfied
	}
	m.AddConstraint(fmt.Sprintf("cooldown[%s][%d]", z, t), e, milp.LE, 1)
}

// lockouts force the indicator to zero during the response delay at the
// start of the horizon and within the recovery window of the horizon end.
func (b *Builder) lockouts(m *milp.Model, z string, t, act int) {
	if b.grid.Elapsed(t) < b.params.ResponseDelay(z, t) {
		m.AddConstraint(fmt.Sprintf("response_delay[%s][%d]", z, t),
			milp.Term(act, 1), milp.EQ, 0)
		return
	}
	if b.grid.Remaining(t) < b.params.RecoveryHours(z, t) {
		m.AddConstraint(fmt.Sprintf("recovery_lockout[%s][%d]", z, t),
			milp.Term(act, 1), milp.EQ, 0)
	}
}

// recoveryTrajectory defines the recovery draw at t as the decaying sum of
// the shifts over the preceding whole steps covered by the recovery window:
//
//	recovery[t] = sum_{i=1..n} shift[prev(t,i)] * (1 - i*dur(prev(t,i))/R)
//
// with n = floor(R / dur(t)). A shift made i steps ago contributes a fraction
// of itself that fades linearly to zero as the window elapses.
func (b *Builder) recoveryTrajectory(m *milp.Model, v *Vars, z string, t int) {
	k := Key{z, t}
	rec := v.Recovery[k]
	r := b.params.RecoveryHours(z, t)
	name := fmt.Sprintf("recovery_def[%s][%d]", z, t)
	if r <= 0 {
		m.AddConstraint(name, milp.Term(rec, 1), milp.EQ, 0)
		return
	}
	n := int(r / b.grid.Step(t).DurationHours)
	e := milp.Term(rec, 1)
	for i := 1; i <= n; i++ {
		prev := b.grid.Prev(t, i)
		w := 1 - float64(i)*b.grid.Step(prev).DurationHours/r
		if w <= 0 {
			continue
		}
		e.AddScaled(v.ShiftExpr(z, prev), -w)
	}
	m.AddConstraint(name, e, milp.EQ, 0)
}

// cycleBalance enforces energy conservation of the shifting action: within
// each cycle the net shift plus recovery sums to zero.
func (b *Builder) cycleBalance(m *milp.Model, v *Vars, z string) {
	for _, c := range b.grid.Cycles() {
		e := milp.NewExpr()
		for _, t := range b.grid.CycleSteps(c) {
			e.AddExpr(v.ShiftExpr(z, t))
			e.Add(v.Recovery[Key{z, t}], 1)
		}
		m.AddConstraint(fmt.Sprintf("cycle_balance[%s][%d]", z, c), e, milp.EQ, 0)
	}
}

// cycleShiftBudget caps the total shift per direction within each cycle at
// the limit of the cycle's first step. The per-step bounds cap single moves;
// this caps their accumulation over the cycle. The up side is skipped when
// the limit is unbounded.
func (b *Builder) cycleShiftBudget(m *milp.Model, v *Vars, z string) {
	for _, c := range b.grid.Cycles() {
		steps := b.grid.CycleSteps(c)
		upLim := b.params.Up(z, steps[0])
		downLim := b.params.Down(z, steps[0])

		up := milp.NewExpr()
		down := milp.NewExpr()
		for _, t := range steps {
			up.Add(v.Up[Key{z, t}], 1)
			down.Add(v.Down[Key{z, t}], 1)
		}
		if !math.IsInf(upLim, 1) {
			m.AddConstraint(fmt.Sprintf("cycle_up_budget[%s][%d]", z, c), up, milp.LE, upLim)
		}
		m.AddConstraint(fmt.Sprintf("cycle_down_budget[%s][%d]", z, c), down, milp.LE, downLim)
	}
}
