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
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/equilibrium"
	"github.com/spatialmodel/equilibrium/science/nist"
	"gopkg.in/yaml.v3"
)

// ReactionConfig holds a reaction definition read from a file.
type ReactionConfig struct {
	Name string `toml:"Name" yaml:"Name"`

	Reactants []SpeciesConfig `toml:"Reactants" yaml:"Reactants"`
	Products  []SpeciesConfig `toml:"Products" yaml:"Products"`

	// StdEnthalpy [J/mol] and StdEntropy [J/(mol K)] are the reaction
	// enthalpy and entropy changes at the reference temperature.
	StdEnthalpy float64 `toml:"StdEnthalpy" yaml:"StdEnthalpy"`
	StdEntropy  float64 `toml:"StdEntropy" yaml:"StdEntropy"`

	// EOS is the equation of state tag, "ideal" if empty.
	EOS string `toml:"EOS" yaml:"EOS"`
}

// SpeciesConfig holds a species definition. If Shomate is empty, the
// coefficients are taken from the NIST table.
type SpeciesConfig struct {
	Name    string    `toml:"Name" yaml:"Name"`
	Order   float64   `toml:"Order" yaml:"Order"`
	Shomate []float64 `toml:"Shomate" yaml:"Shomate"`
}

// ReadReactionFile reads a reaction definition from a TOML (.toml) or
// YAML (.yaml or .yml) file. Environment variables in the path are expanded.
func ReadReactionFile(path string) (*ReactionConfig, error) {
	path = os.ExpandEnv(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: the reaction file you have specified, %s, could not "+
			"be opened. Please check the file name and location and try again: %v", path, err)
	}
	defer f.Close()

	c := new(ReactionConfig)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeReader(f, c); err != nil {
			return nil, fmt.Errorf("equilibrium: parsing reaction file %s: %v", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(c); err != nil {
			return nil, fmt.Errorf("equilibrium: parsing reaction file %s: %v", path, err)
		}
	default:
		return nil, fmt.Errorf("equilibrium: unsupported reaction file extension '%s'; "+
			"valid options are .toml, .yaml, and .yml", ext)
	}
	return c, nil
}

// Reaction creates the reaction at temperature T [K].
func (c *ReactionConfig) Reaction(T float64) (*equilibrium.Reaction, error) {
	reactants, err := buildSpecies(c.Reactants)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: reaction %s: %v", c.Name, err)
	}
	products, err := buildSpecies(c.Products)
	if err != nil {
		return nil, fmt.Errorf("equilibrium: reaction %s: %v", c.Name, err)
	}
	return equilibrium.NewReaction(reactants, products, c.StdEnthalpy, c.StdEntropy, c.EOS, T)
}

func buildSpecies(cs []SpeciesConfig) ([]*equilibrium.Species, error) {
	out := make([]*equilibrium.Species, len(cs))
	for i, sc := range cs {
		var s *equilibrium.Species
		var err error
		switch len(sc.Shomate) {
		case 0:
			s, err = nist.Species(sc.Name, sc.Order)
		case 5:
			var coeffs equilibrium.Shomate
			copy(coeffs[:], sc.Shomate)
			s, err = equilibrium.NewSpecies(sc.Name, sc.Order, coeffs)
		default:
			err = fmt.Errorf("species %s has %d Shomate coefficients; it needs 5", sc.Name, len(sc.Shomate))
		}
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
