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

// Package nist holds gas-phase Shomate heat capacity coefficients from the
// NIST Chemistry WebBook and some reference reactions built from them.
//
// With these coefficients, Cp and the entropy integral are in J/(mol K)
// while the enthalpy integral is in kJ/mol. The equilibrium package does
// no unit conversion, so the enthalpy corrections of reactions built here
// are added to the standard enthalpy change as they are.
package nist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/equilibrium"
)

// Entry holds the Shomate coefficients of a species and the temperature
// range [K] they were fit over.
type Entry struct {
	Coeffs     equilibrium.Shomate
	TMin, TMax float64
}

// Linstrom, P.J. and Mallard, W.G., Eds., NIST Chemistry WebBook, NIST
// Standard Reference Database Number 69, National Institute of Standards
// and Technology, Gaithersburg MD, https://doi.org/10.18434/T4D303
var entries = map[string]Entry{
	"N2":  {Coeffs: equilibrium.Shomate{19.50583, 19.88705, -8.598535, 1.369784, 0.527601}, TMin: 500, TMax: 2000},
	"H2":  {Coeffs: equilibrium.Shomate{33.066178, -11.363417, 11.432816, -2.772874, -0.158558}, TMin: 298, TMax: 1000},
	"NH3": {Coeffs: equilibrium.Shomate{19.99563, 49.77119, -15.37599, 1.921168, 0.189174}, TMin: 298, TMax: 1400},
	"O2":  {Coeffs: equilibrium.Shomate{31.32234, -20.23531, 57.86644, -36.50624, -0.007374}, TMin: 100, TMax: 700},
	"H2O": {Coeffs: equilibrium.Shomate{30.09200, 6.832514, 6.793435, -2.534480, 0.082139}, TMin: 500, TMax: 1700},
	"CO":  {Coeffs: equilibrium.Shomate{25.56759, 6.096130, 4.054656, -2.671301, 0.131021}, TMin: 298, TMax: 1300},
	"CO2": {Coeffs: equilibrium.Shomate{24.99735, 55.18696, -33.69137, 7.948387, -0.136638}, TMin: 298, TMax: 1200},
	"CH4": {Coeffs: equilibrium.Shomate{-0.703029, 108.4773, -42.52157, 5.862788, 0.678565}, TMin: 298, TMax: 1300},
	"SO2": {Coeffs: equilibrium.Shomate{21.43049, 74.35094, -57.75217, 16.35534, 0.086731}, TMin: 298, TMax: 1200},
	"SO3": {Coeffs: equilibrium.Shomate{24.02503, 119.4607, -94.38686, 26.96237, -0.117517}, TMin: 298, TMax: 1200},
}

// Names returns the names of the species in the table in sorted order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the table entry for the species with the given
// chemical formula.
func Lookup(name string) (Entry, error) {
	e, ok := entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("nist: no Shomate coefficients for '%s'; valid options are %s",
			name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Coefficients returns the Shomate coefficients for the named species.
func Coefficients(name string) (equilibrium.Shomate, error) {
	e, err := Lookup(name)
	return e.Coeffs, err
}

// Species returns a new species with the given stoichiometric order and
// the tabulated coefficients.
func Species(name string, order float64) (*equilibrium.Species, error) {
	c, err := Coefficients(name)
	if err != nil {
		return nil, err
	}
	return equilibrium.NewSpecies(name, order, c)
}

// InRange reports whether temperature T [K] is inside the range the
// coefficients for the named species were fit over.
func InRange(name string, T float64) bool {
	e, ok := entries[name]
	return ok && T >= e.TMin && T <= e.TMax
}
