/*
Copyright © 2019 the InMAP authors.
This file is part of equilibrium.

equilibrium is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

equilibrium is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with equilibrium.  If not, see <http://www.gnu.org/licenses/>.
*/

package equilibrium

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// checkMoles makes sure the initial molar amounts match the species
// of the reaction and are physical.
func (r *Reaction) checkMoles(reacInit, prodInit []float64) error {
	if len(reacInit) != len(r.Reactants) {
		return fmt.Errorf("equilibrium: %w: %d reactant amounts for %d reactants",
			ErrLength, len(reacInit), len(r.Reactants))
	}
	if len(prodInit) != len(r.Products) {
		return fmt.Errorf("equilibrium: %w: %d product amounts for %d products",
			ErrLength, len(prodInit), len(r.Products))
	}
	for _, n := range append(append([]float64{}, reacInit...), prodInit...) {
		if !(n >= 0) || math.IsInf(n, 0) {
			return fmt.Errorf("equilibrium: %w: %g", ErrMoles, n)
		}
	}
	return nil
}

// Quotient returns the reaction quotient at extent of reaction chi [mol],
// total pressure pressure, and initial molar amounts reacInit and prodInit.
// The pressure must be in the units of the standard state, typically atm
// or bar. The result is not finite where the quotient is undefined, for
// example where a species amount is zero or negative.
func (r *Reaction) Quotient(chi, pressure float64, reacInit, prodInit []float64) (float64, error) {
	if err := r.checkMoles(reacInit, prodInit); err != nil {
		return math.NaN(), err
	}
	return r.eos().Quotient(r, chi, pressure, reacInit, prodInit), nil
}

// Bounds returns the range of extents of reaction [mol] for which no
// reactant or product amount is negative, narrowed by Epsilon at each
// end. chiMax is set by the limiting reactant and chiMin by the product
// that can run the reaction furthest in reverse.
func (r *Reaction) Bounds(reacInit, prodInit []float64) (chiMin, chiMax float64, err error) {
	if err = r.checkMoles(reacInit, prodInit); err != nil {
		return math.NaN(), math.NaN(), err
	}
	limit := make([]float64, len(r.Reactants))
	for j, s := range r.Reactants {
		limit[j] = reacInit[j] / s.order
	}
	reverse := make([]float64, len(r.Products))
	for i, s := range r.Products {
		reverse[i] = prodInit[i] / s.order
	}
	chiMin = -floats.Max(reverse) + Epsilon
	chiMax = floats.Min(limit) - Epsilon
	if !(chiMin < chiMax) {
		return chiMin, chiMax, fmt.Errorf("equilibrium: %w: [%g, %g]", ErrBounds, chiMin, chiMax)
	}
	return chiMin, chiMax, nil
}

// Solution is the result of an equilibrium calculation.
type Solution struct {
	// Chi is the equilibrium extent of reaction [mol].
	Chi float64

	// K is the equilibrium constant that was solved for.
	K float64

	// ChiMin and ChiMax are the ends of the search range [mol].
	ChiMin, ChiMax float64

	// Iterations is the number of root finding iterations.
	Iterations int
}

// Conversion returns the extent of reaction [mol] at which the reaction
// quotient equals the equilibrium constant k at the given pressure and
// initial molar amounts. The result lies strictly inside the range
// returned by Bounds. An error matching ErrNoSignChange is returned if k
// cannot be reached inside that range, and ErrNoConvergence if the root
// search does not converge.
func (r *Reaction) Conversion(pressure float64, reacInit, prodInit []float64, k float64) (float64, error) {
	s, err := r.SolveK(pressure, reacInit, prodInit, k)
	if err != nil {
		return math.NaN(), err
	}
	return s.Chi, nil
}

// Solve calculates the equilibrium constant at r.Temperature and
// solves for the equilibrium extent of reaction.
func (r *Reaction) Solve(pressure float64, reacInit, prodInit []float64) (Solution, error) {
	k, err := r.K()
	if err != nil {
		return Solution{}, err
	}
	return r.SolveK(pressure, reacInit, prodInit, k)
}

// SolveK is the same as Conversion but returns the full Solution.
func (r *Reaction) SolveK(pressure float64, reacInit, prodInit []float64, k float64) (Solution, error) {
	if !(pressure > 0) || math.IsInf(pressure, 0) {
		return Solution{}, fmt.Errorf("equilibrium: %w: %g", ErrPressure, pressure)
	}
	chiMin, chiMax, err := r.Bounds(reacInit, prodInit)
	if err != nil {
		return Solution{}, err
	}
	eos := r.eos()

	// Where the quotient is not finite the residual is replaced by
	// Penalty so the root search never sees NaN or Inf.
	residual := func(chi float64) float64 {
		v := eos.Quotient(r, chi, pressure, reacInit, prodInit) - k
		if !finite(v) {
			return Penalty
		}
		return v
	}

	fMin, fMax := residual(chiMin), residual(chiMax)
	log := r.log().WithFields(logrus.Fields{
		"reaction": r.String(),
		"pressure": pressure,
		"K":        k,
		"chiMin":   chiMin,
		"chiMax":   chiMax,
	})
	if fMin*fMax > 0 {
		log.WithFields(logrus.Fields{"fMin": fMin, "fMax": fMax}).Debug("equilibrium: no sign change in bracket")
		return Solution{}, &BracketError{ChiMin: chiMin, ChiMax: chiMax, FMin: fMin, FMax: fMax}
	}

	chi, iter, err := brent(residual, chiMin, chiMax, fMin, fMax, xTol, rTol, maxIter)
	if err != nil {
		return Solution{}, fmt.Errorf("equilibrium: %s: %w", r, err)
	}
	log.WithFields(logrus.Fields{"chi": chi, "iterations": iter}).Debug("equilibrium: solved extent of reaction")
	return Solution{Chi: chi, K: k, ChiMin: chiMin, ChiMax: chiMax, Iterations: iter}, nil
}

// ReactantConversion returns the fraction of reactant i that has been
// consumed at extent of reaction chi [mol].
func (r *Reaction) ReactantConversion(i int, chi float64, reacInit []float64) (float64, error) {
	if i < 0 || i >= len(r.Reactants) || len(reacInit) != len(r.Reactants) {
		return math.NaN(), fmt.Errorf("equilibrium: %w: reactant index %d", ErrLength, i)
	}
	if !(reacInit[i] > 0) || math.IsInf(reacInit[i], 0) {
		return math.NaN(), fmt.Errorf("equilibrium: reactant %s: %w: %g",
			r.Reactants[i].name, ErrMoles, reacInit[i])
	}
	return r.Reactants[i].order * chi / reacInit[i], nil
}

// Composition holds the amounts of each species at some extent of reaction.
type Composition struct {
	Reactants, Products []float64 // mol
	Total               float64   // mol
}

// MoleFractions returns the mole fractions of the reactants and products.
func (c Composition) MoleFractions() (reactants, products []float64) {
	reactants = append([]float64{}, c.Reactants...)
	products = append([]float64{}, c.Products...)
	floats.Scale(1/c.Total, reactants)
	floats.Scale(1/c.Total, products)
	return reactants, products
}

// Composition returns the species amounts at extent of reaction chi [mol].
func (r *Reaction) Composition(chi float64, reacInit, prodInit []float64) (Composition, error) {
	if err := r.checkMoles(reacInit, prodInit); err != nil {
		return Composition{}, err
	}
	c := Composition{
		Reactants: make([]float64, len(r.Reactants)),
		Products:  make([]float64, len(r.Products)),
	}
	for j, s := range r.Reactants {
		c.Reactants[j] = reacInit[j] - s.order*chi
	}
	for i, s := range r.Products {
		c.Products[i] = prodInit[i] + s.order*chi
	}
	c.Total = floats.Sum(c.Reactants) + floats.Sum(c.Products)
	return c, nil
}
