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

package nist

import (
	"fmt"

	"github.com/spatialmodel/equilibrium"
)

type term struct {
	name  string
	order float64
}

// reaction builds an ideal gas reaction from tabulated species.
func reaction(reactants, products []term, dH, dS, T float64) (*equilibrium.Reaction, error) {
	build := func(terms []term) ([]*equilibrium.Species, error) {
		ss := make([]*equilibrium.Species, len(terms))
		for i, t := range terms {
			s, err := Species(t.name, t.order)
			if err != nil {
				return nil, err
			}
			ss[i] = s
		}
		return ss, nil
	}
	r, err := build(reactants)
	if err != nil {
		return nil, fmt.Errorf("nist: building reactants: %v", err)
	}
	p, err := build(products)
	if err != nil {
		return nil, fmt.Errorf("nist: building products: %v", err)
	}
	return equilibrium.NewReaction(r, p, dH, dS, IdealGas, T)
}

// IdealGas is the equation of state tag used by the reference reactions.
const IdealGas = "ideal"

// Haber returns the ammonia synthesis reaction N2 + 3 H2 <=> 2 NH3
// at temperature T [K], with ΔH° = -92 kJ/mol and ΔS° = -199 J/(mol K).
func Haber(T float64) (*equilibrium.Reaction, error) {
	return reaction(
		[]term{{"N2", 1}, {"H2", 3}},
		[]term{{"NH3", 2}},
		-92000, -199, T)
}

// WaterGasShift returns the reaction CO + H2O <=> CO2 + H2 at temperature
// T [K], with ΔH° = -41.2 kJ/mol and ΔS° = -42.0 J/(mol K). There is no
// change in the number of moles, so its equilibrium does not depend on
// pressure.
func WaterGasShift(T float64) (*equilibrium.Reaction, error) {
	return reaction(
		[]term{{"CO", 1}, {"H2O", 1}},
		[]term{{"CO2", 1}, {"H2", 1}},
		-41200, -42.0, T)
}

// SO2Oxidation returns the reaction 2 SO2 + O2 <=> 2 SO3 at temperature
// T [K], with ΔH° = -197.8 kJ/mol and ΔS° = -188.0 J/(mol K).
func SO2Oxidation(T float64) (*equilibrium.Reaction, error) {
	return reaction(
		[]term{{"SO2", 2}, {"O2", 1}},
		[]term{{"SO3", 2}},
		-197800, -188.0, T)
}

// SteamReforming returns the reaction CH4 + H2O <=> CO + 3 H2 at
// temperature T [K], with ΔH° = 206.1 kJ/mol and ΔS° = 214.7 J/(mol K).
func SteamReforming(T float64) (*equilibrium.Reaction, error) {
	return reaction(
		[]term{{"CH4", 1}, {"H2O", 1}},
		[]term{{"CO", 1}, {"H2", 3}},
		206100, 214.7, T)
}

// Reactions maps names to the reference reaction constructors.
var Reactions = map[string]func(T float64) (*equilibrium.Reaction, error){
	"haber":          Haber,
	"watergasshift":  WaterGasShift,
	"so2oxidation":   SO2Oxidation,
	"steamreforming": SteamReforming,
}
