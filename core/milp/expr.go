package milp

import "sort"

// Expr is a sparse linear expression over model variables plus a constant.
type Expr struct {
	coefs map[int]float64
	Const float64
}

// NewExpr returns an empty expression.
func NewExpr() *Expr { return &Expr{coefs: make(map[int]float64)} }

// Term returns the expression coef*x[v].
func Term(v int, coef float64) *Expr {
	return NewExpr().Add(v, coef)
}

// Add accumulates coef*x[v] into the expression and returns it for chaining.
func (e *Expr) Add(v int, coef float64) *Expr {
	e.coefs[v] += coef
	return e
}

// AddConst accumulates a constant term.
func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// AddScaled accumulates f*o into the expression.
func (e *Expr) AddScaled(o *Expr, f float64) *Expr {
	for v, c := range o.coefs {
		e.coefs[v] += c * f
	}
	e.Const += o.Const * f
	return e
}

// AddExpr accumulates another expression term by term.
func (e *Expr) AddExpr(o *Expr) *Expr { return e.AddScaled(o, 1) }

// Coef returns the coefficient of variable v, zero if absent.
func (e *Expr) Coef(v int) float64 { return e.coefs[v] }

// Vars returns the variable ids with non-zero coefficients in ascending order.
func (e *Expr) Vars() []int {
	ids := make([]int, 0, len(e.coefs))
	for v, c := range e.coefs {
		if c != 0 {
			ids = append(ids, v)
		}
	}
	sort.Ints(ids)
	return ids
}

// Value evaluates the expression at the point x.
func (e *Expr) Value(x []float64) float64 {
	s := e.Const
	for v, c := range e.coefs {
		s += c * x[v]
	}
	return s
}

// Clone returns an independent copy of the expression.
func (e *Expr) Clone() *Expr {
	cp := &Expr{coefs: make(map[int]float64, len(e.coefs)), Const: e.Const}
	for v, c := range e.coefs {
		cp.coefs[v] = c
	}
	return cp
}
