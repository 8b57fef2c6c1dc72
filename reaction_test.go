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
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/floats"
)

// haber returns N2 + 3 H2 <=> 2 NH3 at temperature T.
func haber(t *testing.T, T float64) *Reaction {
	n2, err := NewSpecies("N2", 1, n2Coeffs)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := NewSpecies("H2", 3, h2Coeffs)
	if err != nil {
		t.Fatal(err)
	}
	nh3, err := NewSpecies("NH3", 2, nh3Coeffs)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReaction([]*Species{n2, h2}, []*Species{nh3}, -92000, -199, "ideal", T)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewReaction(t *testing.T) {
	n2, _ := NewSpecies("N2", 1, n2Coeffs)
	if _, err := NewReaction(nil, []*Species{n2}, 0, 0, "ideal", 300); !errors.Is(err, ErrEmpty) {
		t.Errorf("no reactants: have %v, want ErrEmpty", err)
	}
	if _, err := NewReaction([]*Species{n2}, nil, 0, 0, "ideal", 300); !errors.Is(err, ErrEmpty) {
		t.Errorf("no products: have %v, want ErrEmpty", err)
	}
	if _, err := NewReaction([]*Species{n2}, []*Species{nil}, 0, 0, "ideal", 300); err == nil {
		t.Error("nil product should be an error")
	}

	r := haber(t, 500)
	if have, want := r.String(), "N2 + 3 H2 <=> 2 NH3"; have != want {
		t.Errorf("String() = %q, want %q", have, want)
	}
	if r.NetOrder() != -2 {
		t.Errorf("net order = %g, want -2", r.NetOrder())
	}
	if _, ok := r.EOS.(IdealGas); !ok {
		t.Errorf("equation of state is %T, want IdealGas", r.EOS)
	}
}

func TestNewReactionUnknownEOS(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	n2, _ := NewSpecies("N2", 1, n2Coeffs)
	nh3, _ := NewSpecies("NH3", 2, nh3Coeffs)
	r, err := NewReaction([]*Species{n2}, []*Species{nh3}, 0, 0, "peng-robinson", 300)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.EOS.(IdealGas); !ok {
		t.Errorf("equation of state is %T, want IdealGas", r.EOS)
	}
	e := hook.LastEntry()
	if e == nil {
		t.Fatal("no warning logged")
	}
	if e.Level != logrus.WarnLevel {
		t.Errorf("log level %v, want warning", e.Level)
	}
	if e.Data["eos"] != "peng-robinson" {
		t.Errorf("logged eos = %v", e.Data["eos"])
	}
}

func TestNewReactionLogger(t *testing.T) {
	global := test.NewGlobal()
	defer global.Reset()
	logger, hook := test.NewNullLogger()

	n2, _ := NewSpecies("N2", 1, n2Coeffs)
	nh3, _ := NewSpecies("NH3", 2, nh3Coeffs)
	r, err := NewReaction([]*Species{n2}, []*Species{nh3}, 0, 0, "peng-robinson", 300, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if r.Log != logger {
		t.Error("logger not set")
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Errorf("warning not sent to the reaction logger: %+v", e)
	}
	if e := global.LastEntry(); e != nil {
		t.Errorf("warning sent to the standard logger: %+v", e)
	}
}

func TestNewReactionBadOrder(t *testing.T) {
	nh3, _ := NewSpecies("NH3", 2, nh3Coeffs)
	for _, order := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		bad := &Species{name: "N2", order: order, coeffs: n2Coeffs}
		_, err := NewReaction([]*Species{bad}, []*Species{nh3}, 0, 0, "ideal", 500)
		if !errors.Is(err, ErrOrder) {
			t.Errorf("order %g: have error %v, want ErrOrder", order, err)
		}
		_, err = NewReaction([]*Species{nh3}, []*Species{bad}, 0, 0, "ideal", 500)
		if !errors.Is(err, ErrOrder) {
			t.Errorf("product order %g: have error %v, want ErrOrder", order, err)
		}
	}
	_, err := NewReaction([]*Species{{name: "N2"}}, []*Species{nh3}, 0, 0, "ideal", 500)
	if !errors.Is(err, ErrOrder) {
		t.Errorf("zero value species: have error %v, want ErrOrder", err)
	}
}

func TestGibbsAtReferenceTemperature(t *testing.T) {
	r := haber(t, StdTemp)
	g, err := r.Gibbs()
	if err != nil {
		t.Fatal(err)
	}
	if want := -92000 - StdTemp*-199.; !floats.EqualWithinAbsOrRel(g, want, 1e-9, 1e-12) {
		t.Errorf("Gibbs = %g, want %g", g, want)
	}

	r.Temperature = 600
	g, err = r.GibbsRef(600)
	if err != nil {
		t.Fatal(err)
	}
	if want := -92000 - 600*-199.; !floats.EqualWithinAbsOrRel(g, want, 1e-9, 1e-12) {
		t.Errorf("GibbsRef(600) = %g, want %g", g, want)
	}
}

func TestK(t *testing.T) {
	var tests = []struct {
		T, gibbs, k float64
	}{
		{T: 500, gibbs: 17864.975687807455, k: 0.01360164531180882},
		{T: 600, gibbs: 43169.278880311205, k: 0.00017443944433945764},
		{T: 700, gibbs: 68392.80921073278, k: 7.875565007503677e-06},
	}
	r := haber(t, 300)
	for _, test := range tests {
		t.Run(fmt.Sprint(test.T), func(t *testing.T) {
			// Changing the temperature should leave nothing behind from
			// the previous calculation.
			r.Temperature = test.T
			g, err := r.Gibbs()
			if err != nil {
				t.Fatal(err)
			}
			if !floats.EqualWithinRel(g, test.gibbs, 1e-10) {
				t.Errorf("Gibbs = %g, want %g", g, test.gibbs)
			}
			k, err := r.K()
			if err != nil {
				t.Fatal(err)
			}
			if !(k > 0) {
				t.Errorf("K = %g, want > 0", k)
			}
			if !floats.EqualWithinRel(k, test.k, 1e-9) {
				t.Errorf("K = %g, want %g", k, test.k)
			}
			kAt, err := haber(t, 1).KAt(test.T)
			if err != nil {
				t.Fatal(err)
			}
			if kAt != k {
				t.Errorf("KAt = %g, K = %g", kAt, k)
			}
		})
	}
}

func TestKPositive(t *testing.T) {
	r := haber(t, 300)
	for T := 200.; T <= 2000; T += 50 {
		k, err := r.KAt(T)
		if err != nil {
			t.Fatal(err)
		}
		if !(k > 0) || math.IsInf(k, 0) {
			t.Errorf("K(%g) = %g", T, k)
		}
	}
}

// Re-expressing the standard-state data at a second reference temperature
// should not change the result.
func TestReferenceTemperatureRebasing(t *testing.T) {
	r := haber(t, 700)
	const ref2 = 450.
	atRef2, err := r.ThermoAt(ref2, StdTemp)
	if err != nil {
		t.Fatal(err)
	}
	r2 := r.Clone()
	r2.StdEnthalpy = atRef2.Enthalpy
	r2.StdEntropy = atRef2.Entropy

	want, err := r.ThermoAt(700, StdTemp)
	if err != nil {
		t.Fatal(err)
	}
	have, err := r2.ThermoAt(700, ref2)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinRel(have.Gibbs, want.Gibbs, 1e-9) {
		t.Errorf("rebased Gibbs = %g, want %g", have.Gibbs, want.Gibbs)
	}
	if !floats.EqualWithinRel(have.K, want.K, 1e-9) {
		t.Errorf("rebased K = %g, want %g", have.K, want.K)
	}
	if r.StdEnthalpy != -92000 {
		t.Error("Clone should not share standard-state data")
	}
}

func TestThermoAtBadTemperature(t *testing.T) {
	r := haber(t, 0)
	if _, err := r.K(); !errors.Is(err, ErrTemperature) {
		t.Errorf("have %v, want ErrTemperature", err)
	}
	if _, err := r.ThermoAt(500, -1); !errors.Is(err, ErrTemperature) {
		t.Errorf("have %v, want ErrTemperature", err)
	}
}
