package shift

import (
	"fmt"
	"math"

	"github.com/kilianp07/loadshift/core/timegrid"
)

// Defaults applied when a (zone, step) entry is absent from the input tables.
const (
	DefaultResponseDelayHours = 1.0
	DefaultRecoveryHours      = 2.0
)

// Key indexes per-zone, per-step data.
type Key struct {
	Zone string
	Step int
}

// Params holds the immutable shiftable-load data for one optimization run.
// BaseDemand is required for every (zone, step); the remaining tables are
// sparse and fall back to defaults.
type Params struct {
	Zones      []string
	BaseDemand map[Key]float64 // MW
	DownLimit  map[Key]float64 // MW, default 0
	UpLimit    map[Key]float64 // MW, default unbounded
	Delay      map[Key]float64 // hours, default DefaultResponseDelayHours
	Recovery   map[Key]float64 // hours, default DefaultRecoveryHours
}

// Demand returns the base (unshifted) demand at (z, t).
func (p *Params) Demand(z string, t int) float64 { return p.BaseDemand[Key{z, t}] }

// Down returns the maximum down-shift at (z, t).
func (p *Params) Down(z string, t int) float64 { return p.DownLimit[Key{z, t}] }

// Up returns the maximum up-shift at (z, t).
func (p *Params) Up(z string, t int) float64 {
	if v, ok := p.UpLimit[Key{z, t}]; ok {
		return v
	}
	return math.Inf(1)
}

// ResponseDelay returns the dispatch lead time in hours at (z, t).
func (p *Params) ResponseDelay(z string, t int) float64 {
	if v, ok := p.Delay[Key{z, t}]; ok {
		return v
	}
	return DefaultResponseDelayHours
}

// RecoveryHours returns the recovery window in hours at (z, t).
func (p *Params) RecoveryHours(z string, t int) float64 {
	if v, ok := p.Recovery[Key{z, t}]; ok {
		return v
	}
	return DefaultRecoveryHours
}

// Validate checks the parameter tables against the grid. A down-shift limit
// above the base demand is a configuration violation and aborts the model
// build.
func (p *Params) Validate(g *timegrid.Grid) error {
	if len(p.Zones) == 0 {
		return fmt.Errorf("shift: no zones defined")
	}
	for _, z := range p.Zones {
		for t := 0; t < g.Len(); t++ {
			k := Key{z, t}
			d, ok := p.BaseDemand[k]
			if !ok {
				return fmt.Errorf("shift: missing base demand for zone %s step %d", z, t)
			}
			if d < 0 {
				return fmt.Errorf("shift: negative base demand %v for zone %s step %d", d, z, t)
			}
			if down := p.Down(z, t); down < 0 || down > d {
				return fmt.Errorf("shift: down limit %v for zone %s step %d outside [0, demand=%v]", down, z, t, d)
			}
			if up := p.Up(z, t); up < 0 {
				return fmt.Errorf("shift: negative up limit %v for zone %s step %d", up, z, t)
			}
			if rd := p.ResponseDelay(z, t); rd < 0 {
				return fmt.Errorf("shift: negative response delay %v for zone %s step %d", rd, z, t)
			}
			if rc := p.RecoveryHours(z, t); rc < 0 {
				return fmt.Errorf("shift: negative recovery duration %v for zone %s step %d", rc, z, t)
			}
		}
	}
	return nil
}
