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

// Package equilibrium calculates the equilibrium extent of a single
// reversible gas-phase reaction from standard-state reaction data,
// Shomate heat capacity correlations for each species, the reaction
// temperature and pressure, and the initial composition of the mixture.
//
// The temperature dependence of the reaction enthalpy and entropy is
// found with a Hess cycle: reactants are brought from the reaction
// temperature to the reference temperature, react at the reference
// temperature, and the products are brought back to the reaction
// temperature. The equilibrium extent of reaction is then found by
// solving Q(χ) = K with Brent's method inside the range of extents
// where no species amount is negative.
package equilibrium

import (
	"errors"
	"fmt"
	"math"
)

// Version gives the version number.
const Version = "0.3.0"

// Physical constants.
const (
	// R is the universal gas constant [J/(mol K)].
	R = 8.314

	// StdTemp is the default reference temperature for standard-state
	// reaction data [K].
	StdTemp = 298.15
)

// Solver settings.
const (
	// Epsilon is the margin [mol] by which the admissible extent of reaction
	// range is narrowed at each end so that no species amount reaches zero.
	Epsilon = 1e-5

	// Penalty is substituted for the residual whenever the reaction quotient
	// is not finite.
	Penalty = 1e10

	// Brent's method tolerances and iteration budget.
	xTol    = 2e-12
	rTol    = 4 * 2.220446049250313e-16
	maxIter = 100
)

// Errors returned by this package. Use errors.Is to test for them.
var (
	// ErrTemperature is returned when a temperature is not a positive,
	// finite number of kelvins.
	ErrTemperature = errors.New("temperature must be positive and finite")

	// ErrOrder is returned when a stoichiometric order is not positive
	// and finite.
	ErrOrder = errors.New("stoichiometric order must be positive and finite")

	// ErrPressure is returned when a pressure is not positive and finite.
	ErrPressure = errors.New("pressure must be positive and finite")

	// ErrMoles is returned when an initial molar amount is negative
	// or not finite.
	ErrMoles = errors.New("initial moles must be non-negative and finite")

	// ErrLength is returned when the number of initial molar amounts
	// does not match the number of species.
	ErrLength = errors.New("initial moles do not match species")

	// ErrEmpty is returned when a reaction has no reactants or no products.
	ErrEmpty = errors.New("reaction needs at least one reactant and one product")

	// ErrBounds is returned when the physically admissible range of
	// extents of reaction is empty.
	ErrBounds = errors.New("admissible extent of reaction range is empty")

	// ErrNoSignChange is matched by *BracketError.
	ErrNoSignChange = errors.New("no sign change in bracket")

	// ErrNoConvergence is returned when the root search exhausts its
	// iteration budget.
	ErrNoConvergence = errors.New("root finding did not converge")
)

// BracketError is returned when the residual Q(χ) - K has the same sign
// at both ends of the admissible range, which means the target equilibrium
// constant cannot be reached by any physically possible extent of reaction.
type BracketError struct {
	ChiMin, ChiMax float64 // ends of the admissible range [mol]
	FMin, FMax     float64 // residuals at ChiMin and ChiMax
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("equilibrium: no sign change in bracket: f(%g)=%g, f(%g)=%g",
		e.ChiMin, e.FMin, e.ChiMax, e.FMax)
}

// Is allows errors.Is(err, ErrNoSignChange) to match a *BracketError.
func (e *BracketError) Is(target error) bool { return target == ErrNoSignChange }

// checkTemperature returns an error if T [K] is not physical.
func checkTemperature(T float64) error {
	if !(T > 0) || math.IsInf(T, 0) {
		return fmt.Errorf("%w: %g K", ErrTemperature, T)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
