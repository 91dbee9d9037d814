package milp

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolve_CapacityAllocation(t *testing.T) {
	// Allocate 60 between two units capped at 70, preferring the cheaper one.
	m := NewModel()
	a := m.AddContinuous("a", 0, 70)
	b := m.AddContinuous("b", 0, 70)
	m.AddConstraint("target", Term(a, 1).Add(b, 1), EQ, 60)
	m.Minimize(Term(a, 1).Add(b, 2))

	sol, err := Solve(m)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(sol.X[a]-60) > 1e-6 || math.Abs(sol.X[b]) > 1e-6 {
		t.Fatalf("unexpected allocation a=%v b=%v", sol.X[a], sol.X[b])
	}
	if math.Abs(sol.Objective-60) > 1e-6 {
		t.Fatalf("objective = %v, want 60", sol.Objective)
	}
	if sol.Nodes != 1 {
		t.Fatalf("pure LP explored %d nodes", sol.Nodes)
	}
}

func TestSolve_EqualityWithBound(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x", 0, 4)
	y := m.AddContinuous("y", 0, math.Inf(1))
	m.AddConstraint("sum", Term(x, 1).Add(y, 1), EQ, 10)
	m.Minimize(Term(y, 1))

	sol, err := Solve(m)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(sol.X[x]-4) > 1e-6 || math.Abs(sol.X[y]-6) > 1e-6 {
		t.Fatalf("unexpected solution x=%v y=%v", sol.X[x], sol.X[y])
	}
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x", 0, 1)
	m.AddConstraint("lo", Term(x, 1), GE, 2)
	m.Minimize(Term(x, 1))

	if _, err := Solve(m); !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolve_Unbounded(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x", 0, math.Inf(1))
	m.Minimize(Term(x, -1))

	if _, err := Solve(m); !errors.Is(err, ErrUnbounded) {
		t.Fatalf("expected ErrUnbounded, got %v", err)
	}
}

func TestSolve_BranchesOnBinaries(t *testing.T) {
	// The relaxation puts b at 0.5; branching must land on a=1, b=0.
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.AddConstraint("budget", Term(a, 4).Add(b, 2), LE, 5)
	m.Minimize(Term(a, -2).Add(b, -1))

	sol, err := Solve(m)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.X[a] != 1 || sol.X[b] != 0 {
		t.Fatalf("unexpected incumbent a=%v b=%v", sol.X[a], sol.X[b])
	}
	if math.Abs(sol.Objective-(-2)) > 1e-6 {
		t.Fatalf("objective = %v, want -2", sol.Objective)
	}
	if sol.Nodes < 2 {
		t.Fatalf("expected branching, explored %d nodes", sol.Nodes)
	}
	if err := m.Feasible(sol.X, 1e-6); err != nil {
		t.Fatalf("incumbent infeasible: %v", err)
	}
}

func TestSolve_BinaryInfeasible(t *testing.T) {
	m := NewModel()
	a := m.AddBinary("a")
	b := m.AddBinary("b")
	m.AddConstraint("exactly", Term(a, 1).Add(b, 1), EQ, 1)
	m.AddConstraint("both", Term(a, 1).Add(b, 1), GE, 2)
	m.Minimize(Term(a, 1))

	if _, err := Solve(m); !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolve_SimplexFailurePropagates(t *testing.T) {
	old := simplexSolve
	simplexSolve = func([]float64, mat.Matrix, []float64, float64, []int) (float64, []float64, error) {
		return 0, nil, errors.New("boom")
	}
	defer func() { simplexSolve = old }()

	m := NewModel()
	x := m.AddContinuous("x", 0, 1)
	m.Minimize(Term(x, 1))
	if _, err := Solve(m); err == nil {
		t.Fatalf("expected propagated solver error")
	}
}
