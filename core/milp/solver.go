package milp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrInfeasible indicates the constraint set admits no solution.
var ErrInfeasible = errors.New("milp: infeasible")

// ErrUnbounded indicates the objective can be improved without limit.
var ErrUnbounded = errors.New("milp: unbounded")

// ErrNodeLimit indicates the branch-and-bound search exceeded its node budget.
var ErrNodeLimit = errors.New("milp: node limit exceeded")

// simplexSolve points to the LP solver. It can be overridden in tests to
// simulate solver failures.
var simplexSolve = lp.Simplex

// Solution is the result of a successful solve.
type Solution struct {
	X         []float64
	Objective float64
	// Nodes is the number of branch-and-bound nodes explored (1 for pure LPs).
	Nodes int
}

// Solver solves models via simplex on the LP relaxation plus branch-and-bound
// over the binary variables.
type Solver struct {
	// Tol is the simplex convergence tolerance.
	Tol float64
	// IntTol decides when a relaxed binary counts as integral.
	IntTol float64
	// MaxNodes bounds the branch-and-bound search.
	MaxNodes int
}

// Solve solves m with default settings.
func Solve(m *Model) (*Solution, error) {
	s := &Solver{}
	return s.Solve(m)
}

// Solve minimizes the model objective subject to all constraints and bounds.
func (s *Solver) Solve(m *Model) (*Solution, error) {
	tol := s.Tol
	if tol == 0 {
		tol = 1e-7
	}
	intTol := s.IntTol
	if intTol == 0 {
		intTol = 1e-6
	}
	maxNodes := s.MaxNodes
	if maxNodes == 0 {
		maxNodes = 10000
	}
	if m.NumVars() == 0 {
		return &Solution{X: nil, Objective: m.obj.Const, Nodes: 0}, nil
	}

	type node struct {
		fixes map[int]float64
	}
	stack := []node{{fixes: nil}}
	var best *Solution
	bestObj := math.Inf(1)
	nodes := 0

	for len(stack) > 0 {
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++
		if nodes > maxNodes {
			return nil, ErrNodeLimit
		}

		obj, x, err := s.solveRelaxation(m, nd.fixes, tol)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrUnbounded
		case err != nil:
			return nil, fmt.Errorf("milp: simplex: %w", err)
		}
		if obj >= bestObj-1e-9 {
			continue
		}

		branch := -1
		frac := intTol
		for id := 0; id < m.NumVars(); id++ {
			if m.Var(id).Type != Binary {
				continue
			}
			if _, ok := nd.fixes[id]; ok {
				continue
			}
			f := math.Abs(x[id] - math.Round(x[id]))
			if f > frac {
				frac = f
				branch = id
			}
		}
		if branch < 0 {
			sol := &Solution{X: x, Objective: obj}
			for id := 0; id < m.NumVars(); id++ {
				if m.Var(id).Type == Binary {
					sol.X[id] = math.Round(sol.X[id])
				}
			}
			best = sol
			bestObj = obj
			continue
		}

		near := math.Round(x[branch])
		far := 1 - near
		// LIFO: push the far branch first so the near one is explored next.
		stack = append(stack, node{fixes: withFix(nd.fixes, branch, far)})
		stack = append(stack, node{fixes: withFix(nd.fixes, branch, near)})
	}

	if best == nil {
		return nil, ErrInfeasible
	}
	best.Nodes = nodes
	return best, nil
}

func withFix(fixes map[int]float64, id int, val float64) map[int]float64 {
	cp := make(map[int]float64, len(fixes)+1)
	for k, v := range fixes {
		cp[k] = v
	}
	cp[id] = val
	return cp
}

// solveRelaxation solves the LP relaxation of m with the given binary fixes.
// The standard form uses a split x = x⁺ − x⁻ and one slack per row, so every
// row carries a unique slack column and A always has full row rank.
func (s *Solver) solveRelaxation(m *Model, fixes map[int]float64, tol float64) (float64, []float64, error) {
	n := m.NumVars()

	type row struct {
		expr *Expr
		rhs  float64
	}
	var rows []row
	addLE := func(e *Expr, rhs float64) { rows = append(rows, row{expr: e, rhs: rhs}) }

	for _, c := range m.cons {
		switch c.Sense {
		case LE:
			addLE(c.Expr, c.RHS)
		case GE:
			addLE(NewExpr().AddScaled(c.Expr, -1), -c.RHS)
		case EQ:
			addLE(c.Expr, c.RHS)
			addLE(NewExpr().AddScaled(c.Expr, -1), -c.RHS)
		}
	}
	for id := 0; id < n; id++ {
		v := m.Var(id)
		lo, hi := v.Lo, v.Hi
		if fv, ok := fixes[id]; ok {
			lo, hi = fv, fv
		}
		if !math.IsInf(hi, 1) {
			addLE(Term(id, 1), hi)
		}
		if !math.IsInf(lo, -1) {
			addLE(Term(id, -1), -lo)
		}
	}

	nr := len(rows)
	if nr == 0 {
		if len(m.obj.Vars()) > 0 {
			return 0, nil, lp.ErrUnbounded
		}
		return m.obj.Const, make([]float64, n), nil
	}
	cols := 2*n + nr
	a := mat.NewDense(nr, cols, nil)
	b := make([]float64, nr)
	for r, rw := range rows {
		for _, id := range rw.expr.Vars() {
			coef := rw.expr.Coef(id)
			a.Set(r, id, coef)
			a.Set(r, n+id, -coef)
		}
		a.Set(r, 2*n+r, 1)
		b[r] = rw.rhs
	}
	c := make([]float64, cols)
	for _, id := range m.obj.Vars() {
		c[id] = m.obj.Coef(id)
		c[n+id] = -m.obj.Coef(id)
	}

	opt, xStd, err := simplexSolve(c, a, b, tol, nil)
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, n)
	for id := 0; id < n; id++ {
		x[id] = xStd[id] - xStd[n+id]
	}
	return opt + m.obj.Const, x, nil
}
