package timegrid

import "testing"

func hourly(n, cycleLen int) []Step {
	steps := make([]Step, n)
	for i := range steps {
		steps[i] = Step{Cycle: i / cycleLen, DurationHours: 1}
	}
	return steps
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for empty horizon")
	}
	if _, err := New([]Step{{Cycle: 0, DurationHours: 0}}); err == nil {
		t.Fatalf("expected error for zero duration")
	}
	steps := []Step{
		{Cycle: 0, DurationHours: 1},
		{Cycle: 1, DurationHours: 1},
		{Cycle: 0, DurationHours: 1},
	}
	if _, err := New(steps); err == nil {
		t.Fatalf("expected error for non-contiguous cycle")
	}
}

func TestPrev_WrapsWithinCycle(t *testing.T) {
	g, err := New(hourly(8, 4))
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	if got := g.Prev(2, 1); got != 1 {
		t.Fatalf("Prev(2,1) = %d, want 1", got)
	}
	// Step 4 opens the second cycle; its predecessor wraps to step 7.
	if got := g.Prev(4, 1); got != 7 {
		t.Fatalf("Prev(4,1) = %d, want 7", got)
	}
	if got := g.Prev(0, 2); got != 2 {
		t.Fatalf("Prev(0,2) = %d, want 2", got)
	}
	if got := g.Prev(5, 0); got != 5 {
		t.Fatalf("Prev(5,0) = %d, want 5", got)
	}
	// Lookback farther than the cycle length wraps around again.
	if got := g.Prev(5, 4); got != 5 {
		t.Fatalf("Prev(5,4) = %d, want 5", got)
	}
}

func TestElapsedRemaining(t *testing.T) {
	g, err := New([]Step{
		{Cycle: 0, DurationHours: 2},
		{Cycle: 0, DurationHours: 1},
		{Cycle: 0, DurationHours: 0.5},
	})
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	if g.Elapsed(0) != 0 || g.Elapsed(1) != 2 || g.Elapsed(2) != 3 {
		t.Fatalf("unexpected elapsed: %v %v %v", g.Elapsed(0), g.Elapsed(1), g.Elapsed(2))
	}
	if g.Remaining(0) != 1.5 || g.Remaining(2) != 0 {
		t.Fatalf("unexpected remaining: %v %v", g.Remaining(0), g.Remaining(2))
	}
	if g.TotalHours() != 3.5 {
		t.Fatalf("total = %v, want 3.5", g.TotalHours())
	}
}

func TestCycleLayout(t *testing.T) {
	g, err := New(hourly(6, 3))
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	cycles := g.Cycles()
	if len(cycles) != 2 || cycles[0] != 0 || cycles[1] != 1 {
		t.Fatalf("unexpected cycles %v", cycles)
	}
	second := g.CycleSteps(1)
	if len(second) != 3 || second[0] != 3 || second[2] != 5 {
		t.Fatalf("unexpected cycle steps %v", second)
	}
	if g.Step(4).Cycle != 1 {
		t.Fatalf("step 4 in cycle %d, want 1", g.Step(4).Cycle)
	}
}
