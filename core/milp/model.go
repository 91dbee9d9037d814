// Package milp holds a small write-once container for mixed-integer linear
// programs and a solver built on gonum's simplex implementation. Producers
// declare bounded variables and linear constraints during model construction;
// the model is then handed to Solve as a single batch.
package milp

import (
	"fmt"
	"math"
)

// VarType distinguishes continuous and binary decision variables.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

// Var is a decision variable with inclusive bounds. Binary variables are
// bounded to [0, 1] and restricted to integer values by the solver.
type Var struct {
	ID   int
	Name string
	Lo   float64
	Hi   float64
	Type VarType
}

// Sense is the relation of a constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "=="
	}
}

// Constraint relates a linear expression to a right-hand side.
type Constraint struct {
	Name  string
	Expr  *Expr
	Sense Sense
	RHS   float64
}

// Model is a container for variables, constraints and a linear objective.
// Construction is single-threaded; the model is read-only once handed to the
// solver.
type Model struct {
	vars []Var
	cons []Constraint
	obj  *Expr
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{obj: NewExpr()} }

// AddContinuous declares a continuous variable bounded to [lo, hi] and
// returns its id. Use math.Inf for unbounded sides.
func (m *Model) AddContinuous(name string, lo, hi float64) int {
	id := len(m.vars)
	m.vars = append(m.vars, Var{ID: id, Name: name, Lo: lo, Hi: hi, Type: Continuous})
	return id
}

// AddBinary declares a binary variable and returns its id.
func (m *Model) AddBinary(name string) int {
	id := len(m.vars)
	m.vars = append(m.vars, Var{ID: id, Name: name, Lo: 0, Hi: 1, Type: Binary})
	return id
}

// AddConstraint records expr sense rhs. The expression's constant term is
// folded into the right-hand side.
func (m *Model) AddConstraint(name string, expr *Expr, sense Sense, rhs float64) {
	e := expr.Clone()
	rhs -= e.Const
	e.Const = 0
	m.cons = append(m.cons, Constraint{Name: name, Expr: e, Sense: sense, RHS: rhs})
}

// Minimize sets the objective to be minimized.
func (m *Model) Minimize(expr *Expr) { m.obj = expr.Clone() }

// Objective returns the current objective expression.
func (m *Model) Objective() *Expr { return m.obj }

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of recorded constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// NumBinaries returns the number of binary variables.
func (m *Model) NumBinaries() int {
	n := 0
	for _, v := range m.vars {
		if v.Type == Binary {
			n++
		}
	}
	return n
}

// Var returns the variable with the given id.
func (m *Model) Var(id int) Var { return m.vars[id] }

// Constraints returns the recorded constraints.
func (m *Model) Constraints() []Constraint { return m.cons }

// Feasible reports whether x satisfies all bounds and constraints within tol.
// It returns nil when feasible and an error naming the first violation
// otherwise.
func (m *Model) Feasible(x []float64, tol float64) error {
	if len(x) != len(m.vars) {
		return fmt.Errorf("milp: point has %d values, model has %d variables", len(x), len(m.vars))
	}
	for _, v := range m.vars {
		if x[v.ID] < v.Lo-tol || x[v.ID] > v.Hi+tol {
			return fmt.Errorf("milp: %s = %v outside [%v, %v]", v.Name, x[v.ID], v.Lo, v.Hi)
		}
		if v.Type == Binary && math.Abs(x[v.ID]-math.Round(x[v.ID])) > tol {
			return fmt.Errorf("milp: %s = %v is not integral", v.Name, x[v.ID])
		}
	}
	for _, c := range m.cons {
		lhs := c.Expr.Value(x)
		switch c.Sense {
		case LE:
			if lhs > c.RHS+tol {
				return fmt.Errorf("milp: %s violated: %v %s %v", c.Name, lhs, c.Sense, c.RHS)
			}
		case GE:
			if lhs < c.RHS-tol {
				return fmt.Errorf("milp: %s violated: %v %s %v", c.Name, lhs, c.Sense, c.RHS)
			}
		case EQ:
			if math.Abs(lhs-c.RHS) > tol {
				return fmt.Errorf("milp: %s violated: %v %s %v", c.Name, lhs, c.Sense, c.RHS)
			}
		}
	}
	return nil
}
