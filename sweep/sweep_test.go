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

package sweep

import (
	"context"
	"errors"
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/equilibrium"
	"github.com/spatialmodel/equilibrium/science/nist"
	"gonum.org/v1/gonum/floats"
)

func haber(t *testing.T) *equilibrium.Reaction {
	r, err := nist.Haber(500)
	if err != nil {
		t.Fatal(err)
	}
	r.Log, _ = test.NewNullLogger()
	return r
}

func TestLinspace(t *testing.T) {
	x := Linspace(300, 2000, 100)
	if len(x) != 100 || x[0] != 300 || x[99] != 2000 {
		t.Errorf("Linspace(300, 2000, 100) = %v", x)
	}
	if !floats.EqualWithinAbs(x[1]-x[0], 1700./99, 1e-10) {
		t.Errorf("spacing = %g", x[1]-x[0])
	}
	for _, n := range []int{2, 3, 7, 100, 1000} {
		if x := Linspace(0.1, 0.7, n); x[0] != 0.1 || x[n-1] != 0.7 {
			t.Errorf("Linspace(0.1, 0.7, %d) ends are %v, %v", n, x[0], x[n-1])
		}
	}
	if x := Linspace(5, 10, 1); len(x) != 1 || x[0] != 5 {
		t.Errorf("Linspace(5, 10, 1) = %v", x)
	}
	if x := Linspace(5, 10, 0); x != nil {
		t.Errorf("Linspace(5, 10, 0) = %v", x)
	}
}

func TestRun(t *testing.T) {
	want := [][]float64{{65.8508}, {26.634}, {8.0312}}
	for _, workers := range []int{1, 4} {
		logger, hook := test.NewNullLogger()
		s := &Sweep{
			Reaction:      haber(t),
			Temperatures:  []float64{500, 600, 700},
			Pressures:     []float64{50},
			ReactantMoles: []float64{100, 300},
			ProductMoles:  []float64{0},
			Workers:       workers,
			Log:           logger,
		}
		res, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for i := range want {
			if !floats.EqualWithinRel(res.Chi[i][0], want[i][0], 1e-4) {
				t.Errorf("workers=%d, T=%g: chi = %g, want %g", workers, res.Temperatures[i], res.Chi[i][0], want[i][0])
			}
			k, _ := s.Reaction.KAt(res.Temperatures[i])
			if res.K[i] != k {
				t.Errorf("K[%d] = %g, want %g", i, res.K[i], k)
			}
		}
		if res.Failures() != 0 {
			t.Errorf("%d failures", res.Failures())
		}
		if e := hook.LastEntry(); e == nil || e.Message != "sweep: finished" {
			t.Errorf("last log entry %+v", e)
		}
		if s.Reaction.Temperature != 500 {
			t.Error("sweep should not change the reaction temperature")
		}
	}
}

func TestRunCachesK(t *testing.T) {
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  []float64{500, 600, 700},
		Pressures:     Linspace(10, 300, 4),
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Workers:       1,
		Log:           logrus.New(),
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.KEvaluations != 3 {
		t.Errorf("K calculated %d times, want 3", res.KEvaluations)
	}
	// Higher pressure favors fewer moles of gas.
	for i := range res.Chi {
		for j := 1; j < len(res.Chi[i]); j++ {
			if !(res.Chi[i][j] > res.Chi[i][j-1]) {
				t.Errorf("T=%g: chi does not increase with pressure: %v", res.Temperatures[i], res.Chi[i])
			}
		}
	}
}

func TestRunReusesCache(t *testing.T) {
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  []float64{500, 600, 700},
		Pressures:     []float64{10, 50},
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Workers:       4,
		Log:           logrus.New(),
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		res, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if res.KEvaluations != 0 {
			t.Fatalf("run %d: K calculated %d times, want 0", i, res.KEvaluations)
		}
	}
	time.Sleep(10 * time.Millisecond)
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("goroutines grew from %d to %d over 50 runs", before, after)
	}

	// A changed reaction must not reuse cached values.
	s.Reaction = haber(t)
	s.Reaction.StdEnthalpy = -90000
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.KEvaluations != 3 {
		t.Errorf("K calculated %d times after changing the reaction, want 3", res.KEvaluations)
	}
	for i, T := range res.Temperatures {
		k, _ := s.Reaction.KAt(T)
		if res.K[i] != k {
			t.Errorf("K[%d] = %g, want %g", i, res.K[i], k)
		}
	}
}

func TestRunFailures(t *testing.T) {
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  []float64{500, 0},
		Pressures:     []float64{10, 50},
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Workers:       2,
	}
	if _, err := s.Run(context.Background()); !errors.Is(err, equilibrium.ErrTemperature) {
		t.Errorf("have error %v, want ErrTemperature", err)
	}

	logger, hook := test.NewNullLogger()
	s.Log = logger
	s.SkipFailures = true
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Failures() != 2 {
		t.Errorf("%d failures, want 2", res.Failures())
	}
	for j := range res.Pressures {
		if !math.IsNaN(res.Chi[1][j]) || res.Err[1][j] == nil {
			t.Errorf("point (1, %d): chi = %g, err = %v", j, res.Chi[1][j], res.Err[1][j])
		}
		if math.IsNaN(res.Chi[0][j]) || res.Err[0][j] != nil {
			t.Errorf("point (0, %d): chi = %g, err = %v", j, res.Chi[0][j], res.Err[0][j])
		}
	}
	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("%d warnings, want 2", warnings)
	}
}

func TestRunInvalid(t *testing.T) {
	r := haber(t)
	var tests = []struct {
		name string
		s    *Sweep
	}{
		{"no reaction", &Sweep{Temperatures: []float64{500}, Pressures: []float64{1}}},
		{"no temperatures", &Sweep{Reaction: r, Pressures: []float64{1}, ReactantMoles: []float64{1, 3}, ProductMoles: []float64{0}}},
		{"bad moles", &Sweep{Reaction: r, Temperatures: []float64{500}, Pressures: []float64{1}, ReactantMoles: []float64{1}, ProductMoles: []float64{0}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.s.Run(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  Linspace(400, 800, 10),
		Pressures:     Linspace(10, 300, 10),
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Log:           logrus.New(),
	}
	if _, err := s.Run(ctx); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestResultConversion(t *testing.T) {
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  []float64{500, 600},
		Pressures:     []float64{50, 100},
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Log:           logrus.New(),
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	n2, err := res.Conversion(0)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := res.Conversion(1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range res.Chi {
		for j := range res.Chi[i] {
			if !floats.EqualWithinRel(n2[i][j], res.Chi[i][j]/100, 1e-14) {
				t.Errorf("N2 conversion %g for chi %g", n2[i][j], res.Chi[i][j])
			}
			// Stoichiometric feed: both reactants convert equally.
			if !floats.EqualWithinRel(n2[i][j], h2[i][j], 1e-14) {
				t.Errorf("N2 conversion %g != H2 conversion %g", n2[i][j], h2[i][j])
			}
		}
	}
	if _, err := res.Conversion(2); err == nil {
		t.Error("expected an error for a bad reactant index")
	}
}
