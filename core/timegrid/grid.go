package timegrid

import (
	"errors"
	"fmt"
)

// Step is one atomic unit of simulated time. Steps are ordered globally over
// the horizon and grouped into contiguous cycles (typically representative
// operating days). DurationHours must be positive.
type Step struct {
	Index         int
	Cycle         int
	DurationHours float64
}

// Grid holds the ordered time steps of one optimization horizon.
//
// Lookback queries wrap within the enclosing cycle: steps of one cycle never
// see steps of another. This is the single boundary policy used everywhere in
// the model (cooldown windows, recovery windows).
type Grid struct {
	steps      []Step
	cycleSteps map[int][]int
	cycleOrder []int
	pos        []int     // position of step i within its cycle
	elapsed    []float64 // hours from horizon start to the start of step i
	total      float64
}

// New validates the step sequence and builds a Grid. Steps must be contiguous
// per cycle: once a cycle ends, its id may not reappear later.
func New(steps []Step) (*Grid, error) {
	if len(steps) == 0 {
		return nil, errors.New("timegrid: empty horizon")
	}
	g := &Grid{
		steps:      make([]Step, len(steps)),
		cycleSteps: make(map[int][]int),
		pos:        make([]int, len(steps)),
		elapsed:    make([]float64, len(steps)),
	}
	seen := make(map[int]bool)
	prevCycle := steps[0].Cycle - 1
	var acc float64
	for i, st := range steps {
		if st.DurationHours <= 0 {
			return nil, fmt.Errorf("timegrid: step %d has non-positive duration %v", i, st.DurationHours)
		}
		if st.Cycle != prevCycle {
			if seen[st.Cycle] {
				return nil, fmt.Errorf("timegrid: cycle %d is not contiguous", st.Cycle)
			}
			seen[st.Cycle] = true
			g.cycleOrder = append(g.cycleOrder, st.Cycle)
			prevCycle = st.Cycle
		}
		st.Index = i
		g.steps[i] = st
		g.pos[i] = len(g.cycleSteps[st.Cycle])
		g.cycleSteps[st.Cycle] = append(g.cycleSteps[st.Cycle], i)
		g.elapsed[i] = acc
		acc += st.DurationHours
	}
	g.total = acc
	return g, nil
}

// Len returns the number of steps in the horizon.
func (g *Grid) Len() int { return len(g.steps) }

// Step returns the step at global index i.
func (g *Grid) Step(i int) Step { return g.steps[i] }

// Cycles returns the cycle ids in horizon order.
func (g *Grid) Cycles() []int { return g.cycleOrder }

// CycleSteps returns the ordered global indices of the steps in cycle c.
func (g *Grid) CycleSteps(c int) []int { return g.cycleSteps[c] }

// Prev returns the global index of the step i positions before t, wrapping
// within t's cycle. Prev(t, 0) is t itself.
func (g *Grid) Prev(t, i int) int {
	cycle := g.cycleSteps[g.steps[t].Cycle]
	n := len(cycle)
	return cycle[((g.pos[t]-i)%n+n)%n]
}

// Elapsed returns the hours between the horizon start and the start of step t.
func (g *Grid) Elapsed(t int) float64 { return g.elapsed[t] }

// Remaining returns the hours between the end of step t and the horizon end.
func (g *Grid) Remaining(t int) float64 {
	return g.total - g.elapsed[t] - g.steps[t].DurationHours
}

// TotalHours returns the length of the whole horizon in hours.
func (g *Grid) TotalHours() float64 { return g.total }
