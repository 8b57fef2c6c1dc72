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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/equilibrium"
	"github.com/spatialmodel/equilibrium/science/nist"
	"github.com/spf13/cast"
)

// loadReaction creates the reaction specified by the ReactionFile
// configuration variable or, if that is empty, the reference reaction
// named by the Reaction variable.
func loadReaction(cfg *viper.Viper) (*equilibrium.Reaction, error) {
	T := cfg.GetFloat64("Temperature")
	if f := cfg.GetString("ReactionFile"); f != "" {
		c, err := ReadReactionFile(f)
		if err != nil {
			return nil, err
		}
		return c.Reaction(T)
	}
	name := strings.ToLower(os.ExpandEnv(cfg.GetString("Reaction")))
	f, ok := nist.Reactions[name]
	if !ok {
		names := make([]string, 0, len(nist.Reactions))
		for n := range nist.Reactions {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("equilibrium: unknown reaction '%s'; valid options are %s "+
			"or a reaction definition in ReactionFile", name, strings.Join(names, ", "))
	}
	return f(T)
}

// initialMoles returns the initial reactant and product amounts. If
// they are not specified, the reactants start at 100 times their
// stoichiometric order and the products at zero.
func initialMoles(cfg *viper.Viper, r *equilibrium.Reaction) (reac, prod []float64, err error) {
	reac, err = getFloat64Slice("ReactantMoles", cfg)
	if err != nil {
		return nil, nil, err
	}
	prod, err = getFloat64Slice("ProductMoles", cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(reac) == 0 {
		reac = make([]float64, len(r.Reactants))
		for i, s := range r.Reactants {
			reac[i] = 100 * s.Order()
		}
	}
	if len(prod) == 0 {
		prod = make([]float64, len(r.Products))
	}
	return reac, prod, nil
}

// getFloat64Slice returns a slice of numbers from a viper configuration,
// accounting for the fact that it may have been set as a list of strings
// or as a comma-separated string from a command line argument or
// environment variable.
func getFloat64Slice(varName string, cfg *viper.Viper) ([]float64, error) {
	var o []float64
	for _, s := range cast.ToStringSlice(cfg.Get(varName)) {
		for _, f := range strings.Split(s, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			v, err := cast.ToFloat64E(f)
			if err != nil {
				return nil, fmt.Errorf("equilibrium: reading %s: %v", varName, err)
			}
			o = append(o, v)
		}
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("equilibrium: reading %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("equilibrium: invalid type for %s: %#v", varName, i)
	}
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`equilibrium: you need to specify an output file configuration variable (for example: OutputFile="sweep.csv")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("equilibrium: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// setLogLevel sets the level of the standard logger.
func setLogLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("equilibrium: LogLevel: %v", err)
	}
	logrus.SetLevel(l)
	return nil
}
