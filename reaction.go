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
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Reaction is a single reversible gas-phase reaction.
//
// Temperature is the only state that changes over the life of a
// Reaction. The methods without a temperature argument (Gibbs, GibbsRef,
// K, and Solve) read it when they are called, so a Reaction whose
// Temperature is being changed must not be used from more than one
// goroutine. The methods that take the temperature as an argument never
// read or write the field.
type Reaction struct {
	// Reactants and Products are paired by position with the initial
	// molar amounts passed to Quotient, Bounds, and Conversion.
	Reactants, Products []*Species

	// StdEnthalpy [J/mol] and StdEntropy [J/(mol K)] are the reaction
	// enthalpy and entropy changes at the reference temperature.
	StdEnthalpy, StdEntropy float64

	// EOS builds the reaction quotient.
	EOS EquationOfState

	// Temperature is the reaction temperature [K].
	Temperature float64

	// Log receives solver diagnostics. If nil, the logrus standard
	// logger is used.
	Log logrus.FieldLogger
}

// ReactionOption sets an optional property of a Reaction while it is
// being created.
type ReactionOption func(r *Reaction)

// WithLogger sets the Log field of a new Reaction, so that messages
// logged during construction also go to log.
func WithLogger(log logrus.FieldLogger) ReactionOption {
	return func(r *Reaction) { r.Log = log }
}

// NewReaction creates a new reaction. eos is the tag of a registered
// equation of state; unrecognized tags fall back to IdealGas with a
// warning, which goes to the logrus standard logger unless WithLogger
// is given.
func NewReaction(reactants, products []*Species, stdEnthalpy, stdEntropy float64, eos string, temperature float64, opts ...ReactionOption) (*Reaction, error) {
	if len(reactants) == 0 || len(products) == 0 {
		return nil, fmt.Errorf("equilibrium: %w", ErrEmpty)
	}
	for _, s := range append(append([]*Species{}, reactants...), products...) {
		if s == nil {
			return nil, fmt.Errorf("equilibrium: nil species in reaction")
		}
		if !(s.order > 0) || math.IsInf(s.order, 0) {
			return nil, fmt.Errorf("equilibrium: species %s: %w: %g", s.name, ErrOrder, s.order)
		}
	}
	r := &Reaction{
		Reactants:   reactants,
		Products:    products,
		StdEnthalpy: stdEnthalpy,
		StdEntropy:  stdEntropy,
		Temperature: temperature,
	}
	for _, opt := range opts {
		opt(r)
	}
	var ok bool
	r.EOS, ok = LookupEOS(eos)
	if !ok {
		r.EOS = IdealGas{}
		r.log().WithFields(logrus.Fields{
			"reaction": r.String(),
			"eos":      eos,
			"options":  strings.Join(EOSTags(), ", "),
		}).Warn("equilibrium: unrecognized equation of state; using ideal gas")
	}
	return r, nil
}

func (r *Reaction) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func (r *Reaction) eos() EquationOfState {
	if r.EOS == nil {
		return IdealGas{}
	}
	return r.EOS
}

// String returns the reaction equation, e.g. "N2 + 3 H2 <=> 2 NH3".
func (r *Reaction) String() string {
	side := func(ss []*Species) string {
		names := make([]string, len(ss))
		for i, s := range ss {
			names[i] = s.String()
		}
		return strings.Join(names, " + ")
	}
	return side(r.Reactants) + " <=> " + side(r.Products)
}

// Clone returns a copy of r that can be changed independently. The
// species are shared.
func (r *Reaction) Clone() *Reaction {
	c := *r
	c.Reactants = append([]*Species{}, r.Reactants...)
	c.Products = append([]*Species{}, r.Products...)
	return &c
}

func orders(ss []*Species) []float64 {
	o := make([]float64, len(ss))
	for i, s := range ss {
		o[i] = s.order
	}
	return o
}

// NetOrder returns the change in the number of moles per unit
// extent of reaction: the sum of the product orders minus the sum
// of the reactant orders.
func (r *Reaction) NetOrder() float64 {
	return floats.Sum(orders(r.Products)) - floats.Sum(orders(r.Reactants))
}

// Properties holds the thermodynamic properties of a reaction at
// a given temperature.
type Properties struct {
	Temperature          float64 // K
	ReferenceTemperature float64 // K
	Enthalpy             float64 // J/mol
	Entropy              float64 // J/(mol K)
	Gibbs                float64 // J/mol
	K                    float64 // dimensionless
}

// ThermoAt returns the reaction properties at temperature T [K] using
// standard-state data given at reference temperature refT [K].
// Each reactant contributes the heat needed to bring it from T to refT
// and each product the heat needed to bring it from refT to T, scaled
// by its stoichiometric order.
func (r *Reaction) ThermoAt(T, refT float64) (Properties, error) {
	if err := checkTemperature(T); err != nil {
		return Properties{}, fmt.Errorf("equilibrium: reaction temperature: %w", err)
	}
	if err := checkTemperature(refT); err != nil {
		return Properties{}, fmt.Errorf("equilibrium: reference temperature: %w", err)
	}
	p := Properties{Temperature: T, ReferenceTemperature: refT}
	for _, s := range r.Reactants {
		p.Enthalpy += s.enthalpyChange(T, refT) * s.order
		p.Entropy += s.entropyChange(T, refT) * s.order
	}
	for _, s := range r.Products {
		p.Enthalpy += s.enthalpyChange(refT, T) * s.order
		p.Entropy += s.entropyChange(refT, T) * s.order
	}
	p.Enthalpy += r.StdEnthalpy
	p.Entropy += r.StdEntropy
	p.Gibbs = p.Enthalpy - T*p.Entropy
	p.K = math.Exp(-p.Gibbs / (R * T))
	return p, nil
}

// GibbsAt returns the Gibbs free energy change of the reaction [J/mol]
// at temperature T [K] with standard-state data at refT [K].
func (r *Reaction) GibbsAt(T, refT float64) (float64, error) {
	p, err := r.ThermoAt(T, refT)
	return p.Gibbs, err
}

// KAt returns the equilibrium constant at temperature T [K] with
// standard-state data at StdTemp.
func (r *Reaction) KAt(T float64) (float64, error) {
	p, err := r.ThermoAt(T, StdTemp)
	return p.K, err
}

// Gibbs returns the Gibbs free energy change of the reaction [J/mol]
// at r.Temperature with standard-state data at StdTemp.
func (r *Reaction) Gibbs() (float64, error) {
	return r.GibbsAt(r.Temperature, StdTemp)
}

// GibbsRef is the same as Gibbs but with standard-state data at refT.
func (r *Reaction) GibbsRef(refT float64) (float64, error) {
	return r.GibbsAt(r.Temperature, refT)
}

// K returns the equilibrium constant at r.Temperature.
func (r *Reaction) K() (float64, error) {
	return r.KAt(r.Temperature)
}
