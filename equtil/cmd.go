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

// Package equtil contains the command-line interface and configuration
// handling for the equilibrium program.
package equtil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/equilibrium"
	"github.com/spatialmodel/equilibrium/sweep"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the program.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Reaction",
			usage: `
              Reaction is the name of a built-in reaction to use when
              ReactionFile is not specified. Options are haber,
              watergasshift, so2oxidation, and steamreforming.`,
			defaultVal: "haber",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ReactionFile",
			usage: `
              ReactionFile is the path to a TOML or YAML file defining the
              reaction. Species without Shomate coefficients are looked up
              in the NIST table. It can include environment variables.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Temperature",
			usage: `
              Temperature is the reaction temperature [K].`,
			shorthand:  "T",
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{thermoCmd.Flags(), kCmd.Flags(), conversionCmd.Flags()},
		},
		{
			name: "ReferenceTemperature",
			usage: `
              ReferenceTemperature is the temperature [K] at which the
              standard reaction enthalpy and entropy are given.`,
			defaultVal: equilibrium.StdTemp,
			flagsets:   []*pflag.FlagSet{thermoCmd.Flags()},
		},
		{
			name: "Pressure",
			usage: `
              Pressure is the total pressure, in the units of the
              standard state (typically atm or bar).`,
			shorthand:  "P",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{conversionCmd.Flags()},
		},
		{
			name: "ReactantMoles",
			usage: `
              ReactantMoles is the initial amount [mol] of each reactant,
              in the order they are listed in the reaction. The default is
              100 times the stoichiometric order of each reactant.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{conversionCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "ProductMoles",
			usage: `
              ProductMoles is the initial amount [mol] of each product,
              in the order they are listed in the reaction. The default
              is zero.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{conversionCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Sweep.TMin",
			usage: `
              Sweep.TMin is the lowest temperature [K] in the sweep.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.TMax",
			usage: `
              Sweep.TMax is the highest temperature [K] in the sweep.`,
			defaultVal: 2000.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.NT",
			usage: `
              Sweep.NT is the number of temperatures in the sweep.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.PMin",
			usage: `
              Sweep.PMin is the lowest pressure in the sweep.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.PMax",
			usage: `
              Sweep.PMax is the highest pressure in the sweep.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.NP",
			usage: `
              Sweep.NP is the number of pressures in the sweep.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of sweep points to solve at once.
              If it is zero, the number of processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "SkipFailures",
			usage: `
              SkipFailures specifies whether sweep points that cannot be
              solved should be recorded as NaN instead of stopping the sweep.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the sweep output file. The
              extension (.csv or .xlsx) sets the format. It can include
              environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies extra sweep output columns as a map of
              column names to expressions. Expressions can use T, P, K, chi,
              the equilibrium amount of each species by name, conv_<name>
              for the fractional conversion of each reactant, and the
              functions exp(x) and log(x).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("EQUILIBRIUM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(thermoCmd)
	Root.AddCommand(kCmd)
	Root.AddCommand(conversionCmd)
	Root.AddCommand(sweepCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("equilibrium: problem reading configuration file: %v", err)
		}
	}
	return setLogLevel(Cfg.GetString("LogLevel"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "equilibrium",
	Short: "A gas-phase reaction equilibrium calculator.",
	Long: `equilibrium calculates the equilibrium constant and equilibrium extent
of a single reversible gas-phase reaction from standard-state reaction data
and Shomate heat capacity coefficients for each species.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'EQUILIBRIUM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of equilibrium.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "equilibrium v%s\n", equilibrium.Version)
	},
	DisableAutoGenTag: true,
}

var thermoCmd = &cobra.Command{
	Use:   "thermo",
	Short: "Calculate reaction thermodynamic properties",
	Long: `thermo calculates the enthalpy, entropy, and Gibbs free energy changes
and the equilibrium constant of the reaction at the reaction temperature.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadReaction(Cfg)
		if err != nil {
			return err
		}
		return Thermo(cmd.OutOrStdout(), r, Cfg.GetFloat64("ReferenceTemperature"))
	},
	DisableAutoGenTag: true,
}

var kCmd = &cobra.Command{
	Use:   "k",
	Short: "Calculate the equilibrium constant",
	Long:  `k prints the equilibrium constant of the reaction at the reaction temperature.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadReaction(Cfg)
		if err != nil {
			return err
		}
		k, err := r.K()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%g\n", k)
		return nil
	},
	DisableAutoGenTag: true,
}

var conversionCmd = &cobra.Command{
	Use:   "conversion",
	Short: "Calculate the equilibrium conversion",
	Long: `conversion calculates the equilibrium extent of reaction at the
reaction temperature and pressure, and the resulting conversion of each
reactant and equilibrium composition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadReaction(Cfg)
		if err != nil {
			return err
		}
		reac, prod, err := initialMoles(Cfg, r)
		if err != nil {
			return err
		}
		return Conversion(cmd.OutOrStdout(), r, Cfg.GetFloat64("Pressure"), reac, prod)
	},
	DisableAutoGenTag: true,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Calculate equilibrium over a temperature and pressure grid",
	Long: `sweep calculates the equilibrium extent of reaction at every
combination of Sweep.NT temperatures between Sweep.TMin and Sweep.TMax and
Sweep.NP pressures between Sweep.PMin and Sweep.PMax, and writes the
results to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadReaction(Cfg)
		if err != nil {
			return err
		}
		reac, prod, err := initialMoles(Cfg, r)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		s := &sweep.Sweep{
			Reaction:      r,
			Temperatures:  sweep.Linspace(Cfg.GetFloat64("Sweep.TMin"), Cfg.GetFloat64("Sweep.TMax"), Cfg.GetInt("Sweep.NT")),
			Pressures:     sweep.Linspace(Cfg.GetFloat64("Sweep.PMin"), Cfg.GetFloat64("Sweep.PMax"), Cfg.GetInt("Sweep.NP")),
			ReactantMoles: reac,
			ProductMoles:  prod,
			Workers:       Cfg.GetInt("Workers"),
			SkipFailures:  Cfg.GetBool("SkipFailures"),
		}
		return Sweep(context.Background(), cmd.OutOrStdout(), s, outputFile, checkOutputVars(outputVars))
	},
	DisableAutoGenTag: true,
}

// Thermo writes the thermodynamic properties of r at r.Temperature to w,
// using standard-state data at refT [K].
func Thermo(w io.Writer, r *equilibrium.Reaction, refT float64) error {
	p, err := r.ThermoAt(r.Temperature, refT)
	if err != nil {
		return err
	}
	t, err := NewThermoUnits(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, r)
	return t.Fprint(w)
}

// Conversion solves r for equilibrium at r.Temperature and the given
// pressure and initial amounts, and writes the results to w.
func Conversion(w io.Writer, r *equilibrium.Reaction, pressure float64, reac, prod []float64) error {
	s, err := r.Solve(pressure, reac, prod)
	if err != nil {
		return err
	}
	c, err := r.Composition(s.Chi, reac, prod)
	if err != nil {
		return err
	}
	xr, xp := c.MoleFractions()

	fmt.Fprintln(w, r)
	fmt.Fprintf(w, "T = %g K, P = %g\n", r.Temperature, pressure)
	fmt.Fprintf(w, "K = %g\n", s.K)
	fmt.Fprintf(w, "extent of reaction = %g mol\n", s.Chi)
	for i, sp := range r.Reactants {
		if reac[i] == 0 {
			continue
		}
		conv, err := r.ReactantConversion(i, s.Chi, reac)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "conversion of %s = %g\n", sp.Name(), conv)
	}
	fmt.Fprintf(w, "%-8s %12s %12s %12s\n", "species", "initial", "equilibrium", "fraction")
	for i, sp := range r.Reactants {
		fmt.Fprintf(w, "%-8s %12.6g %12.6g %12.6g\n", sp.Name(), reac[i], c.Reactants[i], xr[i])
	}
	for i, sp := range r.Products {
		fmt.Fprintf(w, "%-8s %12.6g %12.6g %12.6g\n", sp.Name(), prod[i], c.Products[i], xp[i])
	}
	return nil
}

// Sweep runs s and writes the results to outputFile, with the extra
// columns in outputVariables. A summary is written to w.
func Sweep(ctx context.Context, w io.Writer, s *sweep.Sweep, outputFile string, outputVariables map[string]string) error {
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := res.Write(outputFile, outputVariables); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d points (%d failed) to %s\n",
		len(res.Temperatures)*len(res.Pressures), res.Failures(), outputFile)
	return nil
}
