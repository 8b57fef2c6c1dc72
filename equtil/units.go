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

package equtil

import (
	"fmt"
	"io"
	"math"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/equilibrium"
)

// moleDim is the amount of substance dimension.
var moleDim = unit.NewDimension("mole")

var (
	// joulePerMole is molar energy [kg m2 s-2 mole-1].
	joulePerMole = unit.Dimensions{
		unit.MassDim:   1,
		unit.LengthDim: 2,
		unit.TimeDim:   -2,
		moleDim:        -1,
	}
	// joulePerMoleKelvin is molar entropy [kg m2 s-2 mole-1 K-1].
	joulePerMoleKelvin = unit.Dimensions{
		unit.MassDim:        1,
		unit.LengthDim:      2,
		unit.TimeDim:        -2,
		moleDim:             -1,
		unit.TemperatureDim: -1,
	}
)

// ThermoUnits holds the thermodynamic properties of a reaction
// with their dimensions.
type ThermoUnits struct {
	Temperature, ReferenceTemperature *unit.Unit
	Enthalpy, Entropy, Gibbs          *unit.Unit
	K                                 *unit.Unit
}

// NewThermoUnits attaches dimensions to p. The Gibbs free energy change
// and equilibrium constant are recalculated with dimension checking.
func NewThermoUnits(p equilibrium.Properties) (*ThermoUnits, error) {
	t := &ThermoUnits{
		Temperature:          unit.New(p.Temperature, unit.Kelvin),
		ReferenceTemperature: unit.New(p.ReferenceTemperature, unit.Kelvin),
		Enthalpy:             unit.New(p.Enthalpy, joulePerMole),
		Entropy:              unit.New(p.Entropy, joulePerMoleKelvin),
	}
	t.Gibbs = unit.Sub(t.Enthalpy, unit.Mul(t.Temperature, t.Entropy))
	if err := t.Gibbs.Check(joulePerMole); err != nil {
		return nil, fmt.Errorf("equilibrium: Gibbs free energy: %v", err)
	}
	R := unit.New(equilibrium.R, joulePerMoleKelvin)
	lnK := unit.Negate(unit.Div(t.Gibbs, unit.Mul(R, t.Temperature)))
	if err := lnK.Check(unit.Dimless); err != nil {
		return nil, fmt.Errorf("equilibrium: equilibrium constant: %v", err)
	}
	t.K = unit.New(math.Exp(lnK.Value()), unit.Dimless)
	return t, nil
}

// Fprint writes the properties to w.
func (t *ThermoUnits) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "T    = %g\nTref = %g\nΔH   = %.6g\nΔS   = %.6g\nΔG   = %.6g\nK    = %.6g\n",
		t.Temperature, t.ReferenceTemperature, t.Enthalpy, t.Entropy, t.Gibbs, t.K)
	return err
}
