package shift

import (
	"math"
	"strings"
	"testing"

	"github.com/kilianp07/loadshift/core/timegrid"
)

func grid1h(t *testing.T, n, cycleLen int) *timegrid.Grid {
	t.Helper()
	steps := make([]timegrid.Step, n)
	for i := range steps {
		steps[i] = timegrid.Step{Cycle: i / cycleLen, DurationHours: 1}
	}
	g, err := timegrid.New(steps)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func uniformParams(zone string, n int, demand, down, up, delay, recovery float64) *Params {
	p := &Params{
		Zones:      []string{zone},
		BaseDemand: make(map[Key]float64),
		DownLimit:  make(map[Key]float64),
		UpLimit:    make(map[Key]float64),
		Delay:      make(map[Key]float64),
		Recovery:   make(map[Key]float64),
	}
	for t := 0; t < n; t++ {
		k := Key{zone, t}
		p.BaseDemand[k] = demand
		p.DownLimit[k] = down
		p.UpLimit[k] = up
		p.Delay[k] = delay
		p.Recovery[k] = recovery
	}
	return p
}

func TestParams_Defaults(t *testing.T) {
	p := &Params{
		Zones:      []string{"Z"},
		BaseDemand: map[Key]float64{{"Z", 0}: 50},
	}
	if got := p.Down("Z", 0); got != 0 {
		t.Fatalf("default down = %v, want 0", got)
	}
	if got := p.Up("Z", 0); !math.IsInf(got, 1) {
		t.Fatalf("default up = %v, want +Inf", got)
	}
	if got := p.ResponseDelay("Z", 0); got != DefaultResponseDelayHours {
		t.Fatalf("default delay = %v", got)
	}
	if got := p.RecoveryHours("Z", 0); got != DefaultRecoveryHours {
		t.Fatalf("default recovery = %v", got)
	}
}

func TestParams_Validate(t *testing.T) {
	g := grid1h(t, 2, 2)

	p := uniformParams("Z", 2, 100, 10, 20, 1, 2)
	if err := p.Validate(g); err != nil {
		t.Fatalf("expected valid params, got %v", err)
	}

	// down limit above demand is a configuration violation
	p.DownLimit[Key{"Z", 1}] = 150
	err := p.Validate(g)
	if err == nil || !strings.Contains(err.Error(), "down limit") {
		t.Fatalf("expected down-limit violation, got %v", err)
	}

	p = uniformParams("Z", 2, 100, 10, 20, 1, 2)
	delete(p.BaseDemand, Key{"Z", 1})
	if err := p.Validate(g); err == nil {
		t.Fatalf("expected missing demand error")
	}

	p = uniformParams("Z", 2, 100, 10, 20, 1, 2)
	p.Recovery[Key{"Z", 0}] = -1
	if err := p.Validate(g); err == nil {
		t.Fatalf("expected negative recovery error")
	}

	if err := (&Params{}).Validate(g); err == nil {
		t.Fatalf("expected error for empty zone set")
	}
}
