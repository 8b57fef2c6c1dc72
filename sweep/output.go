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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/equilibrium"
	"github.com/tealeg/xlsx"
)

// baseColumns are written for every grid point.
var baseColumns = []string{"T", "P", "K", "chi"}

// outputFunctions are available in output expressions.
var outputFunctions = map[string]govaluate.ExpressionFunction{
	"exp": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("sweep: got %d arguments for function 'exp', but needs 1", len(arg))
		}
		return math.Exp(arg[0].(float64)), nil
	},
	"log": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("sweep: got %d arguments for function 'log', but needs 1", len(arg))
		}
		return math.Log(arg[0].(float64)), nil
	},
}

// Outputter calculates derived output variables at each grid point.
// Expressions can use the variables T, P, K, and chi, the equilibrium
// amount [mol] of each species by name, and conv_<name>, the fractional
// conversion of each reactant that is initially present.
// The functions exp(x) and log(x) are also available.
type Outputter struct {
	names       []string
	expressions map[string]*govaluate.EvaluableExpression
}

// NewOutputter parses outputVariables, a map of column names to
// expressions, for results from r.
func (r *Result) NewOutputter(outputVariables map[string]string) (*Outputter, error) {
	available := make(map[string]bool)
	for name := range r.variables(0, 0) {
		available[name] = true
	}
	if len(outputVariables) > 0 {
		for _, ss := range [][]*equilibrium.Species{r.Reaction.Reactants, r.Reaction.Products} {
			for _, sp := range ss {
				for _, b := range baseColumns {
					if sp.Name() == b {
						return nil, fmt.Errorf("sweep: species name '%s' is reserved and can't be used in output variables", b)
					}
				}
			}
		}
	}
	o := &Outputter{expressions: make(map[string]*govaluate.EvaluableExpression)}
	for name, expr := range outputVariables {
		for _, b := range baseColumns {
			if name == b {
				return nil, fmt.Errorf("sweep: output variable name '%s' is reserved", name)
			}
		}
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("sweep: output variable '%s': %v", name, err)
		}
		for _, v := range e.Vars() {
			if !available[v] {
				return nil, fmt.Errorf("sweep: output variable '%s': undefined variable name '%s'", name, v)
			}
		}
		o.names = append(o.names, name)
		o.expressions[name] = e
	}
	sort.Strings(o.names)
	return o, nil
}

// Columns returns the names of the output columns in order.
func (o *Outputter) Columns() []string {
	return append(append([]string{}, baseColumns...), o.names...)
}

// variables returns the expression variables at temperature index i and
// pressure index j.
func (r *Result) variables(i, j int) map[string]interface{} {
	chi := math.NaN()
	if len(r.Chi) > i && len(r.Chi[i]) > j {
		chi = r.Chi[i][j]
	}
	vars := make(map[string]interface{})
	if c, err := r.Reaction.Composition(chi, r.ReactantMoles, r.ProductMoles); err == nil {
		for k, s := range r.Reaction.Reactants {
			vars[s.Name()] = c.Reactants[k]
			if r.ReactantMoles[k] > 0 {
				vars["conv_"+s.Name()] = s.Order() * chi / r.ReactantMoles[k]
			}
		}
		for k, s := range r.Reaction.Products {
			vars[s.Name()] = c.Products[k]
		}
	}
	vars["T"] = r.Temperatures[i]
	vars["P"] = r.Pressures[j]
	vars["K"] = r.K[i]
	vars["chi"] = chi
	return vars
}

// Row returns the output values at temperature index i and pressure
// index j in the order given by Columns.
func (o *Outputter) Row(r *Result, i, j int) ([]float64, error) {
	vars := r.variables(i, j)
	row := make([]float64, 0, len(baseColumns)+len(o.names))
	for _, b := range baseColumns {
		row = append(row, vars[b].(float64))
	}
	for _, name := range o.names {
		v, err := o.expressions[name].Evaluate(vars)
		if err != nil {
			return nil, fmt.Errorf("sweep: evaluating '%s' at T=%g, P=%g: %v",
				name, r.Temperatures[i], r.Pressures[j], err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("sweep: output variable '%s' is %T, not a number", name, v)
		}
		row = append(row, f)
	}
	return row, nil
}

// rows calls f with each grid point's output values, temperature
// varying slowest.
func (r *Result) rows(outputVariables map[string]string, f func(columns []string, row []float64) error) error {
	o, err := r.NewOutputter(outputVariables)
	if err != nil {
		return err
	}
	cols := o.Columns()
	for i := range r.Temperatures {
		for j := range r.Pressures {
			row, err := o.Row(r, i, j)
			if err != nil {
				return err
			}
			if err := f(cols, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCSV writes one line per grid point to w, after a header line.
func (r *Result) WriteCSV(w io.Writer, outputVariables map[string]string) error {
	cw := csv.NewWriter(w)
	header := true
	err := r.rows(outputVariables, func(cols []string, row []float64) error {
		if header {
			header = false
			if err := cw.Write(cols); err != nil {
				return err
			}
		}
		rec := make([]string, len(row))
		for k, v := range row {
			rec[k] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return cw.Write(rec)
	})
	if err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("sweep: writing csv: %v", err)
	}
	return nil
}

// WriteXLSX writes one row per grid point to a worksheet named
// "sweep" in a new Excel file at path.
func (r *Result) WriteXLSX(path string, outputVariables map[string]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("sweep")
	if err != nil {
		return fmt.Errorf("sweep: %v", err)
	}
	header := true
	err = r.rows(outputVariables, func(cols []string, row []float64) error {
		if header {
			header = false
			hr := sheet.AddRow()
			for _, c := range cols {
				hr.AddCell().SetString(c)
			}
		}
		xr := sheet.AddRow()
		for _, v := range row {
			xr.AddCell().SetFloat(v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("sweep: writing xlsx: %v", err)
	}
	return nil
}

// Write writes the results to path in CSV or Excel format depending
// on the file extension.
func (r *Result) Write(path string, outputVariables map[string]string) error {
	path = os.ExpandEnv(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("sweep: %v", err)
		}
		if err := r.WriteCSV(f, outputVariables); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".xlsx":
		return r.WriteXLSX(path, outputVariables)
	default:
		return fmt.Errorf("sweep: unsupported output file extension '%s'; valid options are .csv and .xlsx",
			filepath.Ext(path))
	}
}
