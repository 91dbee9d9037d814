// Package balance matches named supply and demand terms per zone and time
// step. Producers register their contributions during model construction; the
// registry is resolved exactly once after all producers have registered,
// emitting one balance constraint per (zone, step).
package balance

import (
	"errors"
	"fmt"

	"github.com/kilianp07/loadshift/core/milp"
	"github.com/kilianp07/loadshift/core/timegrid"
)

// Term produces the linear contribution of one producer at (zone, step).
// A nil return means no contribution at that index.
type Term func(zone string, step int) *milp.Expr

type namedTerm struct {
	name string
	term Term
}

// Registry collects injection and withdrawal terms for the zonal power
// balance. Registration is single-threaded by convention of the model build.
type Registry struct {
	injections  []namedTerm
	withdrawals []namedTerm
	resolved    bool
}

// New returns an empty registry.
func New() *Registry { return &Registry{} }

// AddInjection registers a named supply term.
func (r *Registry) AddInjection(name string, t Term) {
	r.injections = append(r.injections, namedTerm{name: name, term: t})
}

// AddWithdrawal registers a named demand term.
func (r *Registry) AddWithdrawal(name string, t Term) {
	r.withdrawals = append(r.withdrawals, namedTerm{name: name, term: t})
}

// Injections returns the names of the registered injection terms.
func (r *Registry) Injections() []string { return names(r.injections) }

// Withdrawals returns the names of the registered withdrawal terms.
func (r *Registry) Withdrawals() []string { return names(r.withdrawals) }

func names(ts []namedTerm) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.name
	}
	return out
}

// Resolve emits, for every zone and step, the constraint
//
//	sum(injections) - sum(withdrawals) == baseDemand(zone, step)
//
// It may be called only once per registry.
func (r *Registry) Resolve(m *milp.Model, zones []string, grid *timegrid.Grid, baseDemand func(zone string, step int) float64) error {
	if r.resolved {
		return errors.New("balance: registry already resolved")
	}
	r.resolved = true
	for _, z := range zones {
		for t := 0; t < grid.Len(); t++ {
			e := milp.NewExpr()
			for _, inj := range r.injections {
				if c := inj.term(z, t); c != nil {
					e.AddExpr(c)
				}
			}
			for _, wd := range r.withdrawals {
				if c := wd.term(z, t); c != nil {
					e.AddScaled(c, -1)
				}
			}
			m.AddConstraint(fmt.Sprintf("balance[%s][%d]", z, t), e, milp.EQ, baseDemand(z, t))
		}
	}
	return nil
}
