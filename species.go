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
)

// Shomate holds the coefficients A, B, C, D, and E of the Shomate
// heat capacity correlation
//
//	Cp = A + B·t + C·t² + D·t³ + E/t²
//
// where t is the temperature in kelvins divided by 1000. The units of the
// integrals below are whatever units the coefficients encode; no
// conversion is done.
type Shomate [5]float64

// heatCapacity returns Cp at scaled temperature t.
func (s Shomate) heatCapacity(t float64) float64 {
	a, b, c, d, e := s[0], s[1], s[2], s[3], s[4]
	return a + b*t + c*t*t + d*t*t*t + e/(t*t)
}

// enthalpy returns the antiderivative of Cp with respect to t.
func (s Shomate) enthalpy(t float64) float64 {
	a, b, c, d, e := s[0], s[1], s[2], s[3], s[4]
	return a*t + b*t*t/2 + c*t*t*t/3 + d*t*t*t*t/4 - e/t
}

// entropy returns the antiderivative of Cp/t with respect to t.
func (s Shomate) entropy(t float64) float64 {
	a, b, c, d, e := s[0], s[1], s[2], s[3], s[4]
	return a*math.Log(t) + b*t + c*t*t/2 + d*t*t*t/3 - e/(2*t*t)
}

// Species is a chemical species taking part in a reaction. A Species
// is immutable once created and may be shared between reactions and
// goroutines.
type Species struct {
	name   string
	order  float64
	coeffs Shomate
}

// NewSpecies creates a species with the given name, stoichiometric order
// in the reaction it takes part in, and Shomate coefficients.
func NewSpecies(name string, order float64, coeffs Shomate) (*Species, error) {
	if !(order > 0) || math.IsInf(order, 0) {
		return nil, fmt.Errorf("equilibrium: species %s: %w: %g", name, ErrOrder, order)
	}
	return &Species{name: name, order: order, coeffs: coeffs}, nil
}

// Name returns the name of the species.
func (s *Species) Name() string { return s.name }

// Order returns the stoichiometric order of the species.
func (s *Species) Order() float64 { return s.order }

// Coeffs returns the Shomate coefficients of the species.
func (s *Species) Coeffs() Shomate { return s.coeffs }

func (s *Species) String() string {
	if s.order == 1 {
		return s.name
	}
	return fmt.Sprintf("%g %s", s.order, s.name)
}

// EnthalpyChange returns the change in enthalpy when the species is
// heated from initialTemp to finalTemp [K], in the energy units the
// coefficients encode (kJ/mol for NIST WebBook coefficients).
func (s *Species) EnthalpyChange(initialTemp, finalTemp float64) (float64, error) {
	if err := s.checkInterval(initialTemp, finalTemp); err != nil {
		return math.NaN(), err
	}
	return s.enthalpyChange(initialTemp, finalTemp), nil
}

// EntropyChange returns the change in entropy when the species is
// heated from initialTemp to finalTemp [K], typically in J/(mol K).
func (s *Species) EntropyChange(initialTemp, finalTemp float64) (float64, error) {
	if err := s.checkInterval(initialTemp, finalTemp); err != nil {
		return math.NaN(), err
	}
	return s.entropyChange(initialTemp, finalTemp), nil
}

// HeatCapacity returns the heat capacity of the species at temperature
// T [K], typically in J/(mol K).
func (s *Species) HeatCapacity(T float64) (float64, error) {
	if err := checkTemperature(T); err != nil {
		return math.NaN(), fmt.Errorf("equilibrium: species %s: %w", s.name, err)
	}
	return s.coeffs.heatCapacity(T / 1000), nil
}

func (s *Species) checkInterval(initialTemp, finalTemp float64) error {
	for _, T := range []float64{initialTemp, finalTemp} {
		if err := checkTemperature(T); err != nil {
			return fmt.Errorf("equilibrium: species %s: %w", s.name, err)
		}
	}
	return nil
}

// enthalpyChange and entropyChange assume that the temperatures
// have already been checked.
func (s *Species) enthalpyChange(initialTemp, finalTemp float64) float64 {
	return s.coeffs.enthalpy(finalTemp/1000) - s.coeffs.enthalpy(initialTemp/1000)
}

func (s *Species) entropyChange(initialTemp, finalTemp float64) float64 {
	return s.coeffs.entropy(finalTemp/1000) - s.coeffs.entropy(initialTemp/1000)
}
