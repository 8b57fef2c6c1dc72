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
	"bytes"
	"context"
	"encoding/csv"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/equilibrium"
	"github.com/spatialmodel/equilibrium/science/nist"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/floats"
)

func testResult(t *testing.T) *Result {
	s := &Sweep{
		Reaction:      haber(t),
		Temperatures:  []float64{500, 600, 700},
		Pressures:     []float64{50, 100},
		ReactantMoles: []float64{100, 300},
		ProductMoles:  []float64{0},
		Log:           logrus.New(),
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

var testOutputs = map[string]string{
	"xNH3":   "NH3 / (N2 + H2 + NH3)",
	"convN2": "conv_N2 * 100",
	"lnK":    "log(K)",
}

func TestWriteCSV(t *testing.T) {
	res := testResult(t)
	var buf bytes.Buffer
	if err := res.WriteCSV(&buf, testOutputs); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 7 {
		t.Fatalf("%d lines, want 7", len(recs))
	}
	wantHeader := []string{"T", "P", "K", "chi", "convN2", "lnK", "xNH3"}
	for i, h := range wantHeader {
		if recs[0][i] != h {
			t.Errorf("header %v, want %v", recs[0], wantHeader)
			break
		}
	}
	// Second line is T=500 K, P=50.
	vals := make([]float64, len(recs[1]))
	for i, s := range recs[1] {
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			t.Fatal(err)
		}
	}
	if vals[0] != 500 || vals[1] != 50 || vals[3] != res.Chi[0][0] {
		t.Errorf("first row %v", vals)
	}
	chi := res.Chi[0][0]
	if !floats.EqualWithinRel(vals[4], chi, 1e-12) {
		t.Errorf("convN2 = %g, want %g", vals[4], chi)
	}
	if !floats.EqualWithinRel(vals[5], -4.297564514748005, 1e-9) {
		t.Errorf("lnK = %g", vals[5])
	}
	if want := 2 * chi / (400 - 2*chi); !floats.EqualWithinRel(vals[6], want, 1e-12) {
		t.Errorf("xNH3 = %g, want %g", vals[6], want)
	}
}

func TestOutputterErrors(t *testing.T) {
	res := testResult(t)
	var tests = []struct {
		name    string
		outputs map[string]string
	}{
		{"undefined", map[string]string{"x": "O2 * 2"}},
		{"reserved", map[string]string{"chi": "chi * 2"}},
		{"syntax", map[string]string{"x": "(chi * "}},
		{"arguments", map[string]string{"x": "exp(chi, K)"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := res.WriteCSV(&buf, test.outputs); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestOutputterSpeciesNames(t *testing.T) {
	coeffs, err := nist.Coefficients("N2")
	if err != nil {
		t.Fatal(err)
	}
	k, err := equilibrium.NewSpecies("K", 1, coeffs)
	if err != nil {
		t.Fatal(err)
	}
	nh3, err := nist.Species("NH3", 1)
	if err != nil {
		t.Fatal(err)
	}
	r, err := equilibrium.NewReaction([]*equilibrium.Species{k}, []*equilibrium.Species{nh3}, 0, 0, "ideal", 500)
	if err != nil {
		t.Fatal(err)
	}
	res := &Result{
		Reaction:      r,
		Temperatures:  []float64{500},
		Pressures:     []float64{1},
		ReactantMoles: []float64{1},
		ProductMoles:  []float64{0},
		K:             []float64{1},
		Chi:           [][]float64{{0.5}},
		Err:           [][]error{{nil}},
	}
	if _, err := res.NewOutputter(map[string]string{"x": "K * 2"}); err == nil {
		t.Error("expected an error for a species that shadows a column")
	}
	var buf bytes.Buffer
	if err := res.WriteCSV(&buf, nil); err != nil {
		t.Errorf("base columns only: %v", err)
	}
}

func TestWrite(t *testing.T) {
	res := testResult(t)
	dir, err := ioutil.TempDir("", "sweep")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	xlsxPath := filepath.Join(dir, "out.xlsx")
	if err := res.Write(xlsxPath, testOutputs); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}
	sheet, ok := f.Sheet["sweep"]
	if !ok {
		t.Fatal("missing worksheet")
	}
	if len(sheet.Rows) != 7 {
		t.Errorf("%d rows, want 7", len(sheet.Rows))
	}
	if len(sheet.Rows[0].Cells) != 7 || sheet.Rows[0].Cells[3].Value != "chi" {
		t.Errorf("bad header row")
	}
	v, err := sheet.Rows[1].Cells[0].Float()
	if err != nil {
		t.Fatal(err)
	}
	if v != 500 {
		t.Errorf("first temperature = %g", v)
	}

	csvPath := filepath.Join(dir, "out.csv")
	if err := res.Write(csvPath, nil); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("T,P,K,chi\n")) {
		t.Errorf("csv starts with %q", b[:20])
	}

	if err := res.Write(filepath.Join(dir, "out.shp"), nil); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}
