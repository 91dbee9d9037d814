package shift

import "github.com/kilianp07/loadshift/core/timegrid"

// Record is the solved shifting behavior at one (zone, step).
type Record struct {
	Zone        string  `json:"zone"`
	Step        int     `json:"step"`
	Cycle       int     `json:"cycle"`
	ShiftUpMW   float64 `json:"shift_up_mw"`
	ShiftDownMW float64 `json:"shift_down_mw"`
	NetShiftMW  float64 `json:"net_shift_mw"`
	RecoveryMW  float64 `json:"recovery_mw"`
	Active      bool    `json:"active"`
}

// Records extracts per-step results from the solver point x, ordered by zone
// then step.
func (v *Vars) Records(g *timegrid.Grid, zones []string, x []float64) []Record {
	out := make([]Record, 0, len(zones)*g.Len())
	for _, z := range zones {
		for t := 0; t < g.Len(); t++ {
			k := Key{z, t}
			up := x[v.Up[k]]
			down := x[v.Down[k]]
			out = append(out, Record{
				Zone:        z,
				Step:        t,
				Cycle:       g.Step(t).Cycle,
				ShiftUpMW:   up,
				ShiftDownMW: down,
				NetShiftMW:  up - down,
				RecoveryMW:  x[v.Recovery[k]],
				Active:      x[v.Active[k]] > 0.5,
			})
		}
	}
	return out
}
