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
	"math"
	"sort"
	"strings"
	"sync"
)

// EquationOfState is an interface for the way the reaction quotient is
// built from the extent of reaction, the pressure, and the initial
// composition. Implementations receive slices whose lengths have already
// been checked against the reaction's species, and may return non-finite
// values where the quotient is undefined.
type EquationOfState interface {
	// Name returns the tag the equation of state is registered under.
	Name() string

	// Quotient returns the reaction quotient Q at extent of reaction chi.
	Quotient(r *Reaction, chi, pressure float64, reacInit, prodInit []float64) float64
}

// IdealGas fulfils the EquationOfState interface for an ideal gas
// mixture, where the activity of each species is its partial pressure
// relative to the standard pressure.
type IdealGas struct{}

// Name returns "ideal".
func (IdealGas) Name() string { return "ideal" }

// Quotient returns the ideal gas reaction quotient
//
//	Q = ∏ n_p^ν_p / ∏ n_r^ν_r · n_total^(-Δν) · P^Δν
//
// where the species amounts n are evaluated at extent of reaction chi,
// which avoids normalizing to mole fractions.
func (IdealGas) Quotient(r *Reaction, chi, pressure float64, reacInit, prodInit []float64) float64 {
	numerator, denominator := 1., 1.
	var total float64
	for i, s := range r.Products {
		n := prodInit[i] + s.order*chi
		numerator *= math.Pow(n, s.order)
		total += n
	}
	for j, s := range r.Reactants {
		n := reacInit[j] - s.order*chi
		denominator *= math.Pow(n, s.order)
		total += n
	}
	dn := r.NetOrder()
	return numerator / denominator * math.Pow(total, -dn) * math.Pow(pressure, dn)
}

var eosRegistry = struct {
	sync.RWMutex
	m map[string]EquationOfState
}{
	m: map[string]EquationOfState{
		"":          IdealGas{},
		"ideal":     IdealGas{},
		"ideal gas": IdealGas{},
		"ig":        IdealGas{},
	},
}

func eosKey(tag string) string { return strings.ToLower(strings.TrimSpace(tag)) }

// RegisterEOS makes an equation of state available under the given tag.
// Tags are not case sensitive. Registering an existing tag replaces it.
func RegisterEOS(tag string, eos EquationOfState) {
	eosRegistry.Lock()
	eosRegistry.m[eosKey(tag)] = eos
	eosRegistry.Unlock()
}

// LookupEOS returns the equation of state registered under tag.
func LookupEOS(tag string) (EquationOfState, bool) {
	eosRegistry.RLock()
	defer eosRegistry.RUnlock()
	eos, ok := eosRegistry.m[eosKey(tag)]
	return eos, ok
}

// EOSTags returns the registered equation of state tags in sorted order.
func EOSTags() []string {
	eosRegistry.RLock()
	defer eosRegistry.RUnlock()
	var tags []string
	for t := range eosRegistry.m {
		if t != "" {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
