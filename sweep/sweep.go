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

// Package sweep solves a reaction for equilibrium over a grid of
// temperatures and pressures and writes the results to files.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/equilibrium"
	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	x := floats.Span(make([]float64, n), min, max)
	x[n-1] = max
	return x
}

// Sweep specifies a grid of equilibrium calculations. Equilibrium
// constants are cached across calls to Run, so a Sweep that is run
// repeatedly should be reused rather than recreated. Run must not be
// called concurrently on the same Sweep.
type Sweep struct {
	// Reaction is the reaction to solve. Its Temperature field is
	// neither read nor changed.
	Reaction *equilibrium.Reaction

	// Temperatures [K] and Pressures are the grid axes.
	Temperatures, Pressures []float64

	// ReactantMoles and ProductMoles are the initial molar amounts,
	// used at every grid point.
	ReactantMoles, ProductMoles []float64

	// Workers is the number of points solved concurrently. If zero,
	// runtime.GOMAXPROCS(-1) is used.
	Workers int

	// SkipFailures specifies that a point that cannot be solved is
	// recorded as NaN rather than ending the sweep.
	SkipFailures bool

	// Log receives progress messages. If nil, the logrus standard
	// logger is used.
	Log logrus.FieldLogger

	// kCache holds equilibrium constants between runs. It is created
	// by the first call to Run and lives as long as the Sweep.
	kCache    *requestcache.Cache
	cacheOnce sync.Once
}

// kCacheSize is the number of equilibrium constants kept in memory.
const kCacheSize = 4096

// kRequest is the request payload for the equilibrium constant cache.
type kRequest struct {
	r *equilibrium.Reaction
	T float64
}

// cache returns the equilibrium constant cache, creating it on first use
// with nprocs processors.
func (s *Sweep) cache(nprocs int) *requestcache.Cache {
	s.cacheOnce.Do(func() {
		s.kCache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			req := request.(kRequest)
			k, err := req.r.KAt(req.T)
			if err != nil {
				k = math.NaN()
			}
			return kResult{k: k, err: err}, nil
		}, nprocs, requestcache.Deduplicate(), requestcache.Memory(kCacheSize))
	})
	return s.kCache
}

// kKey identifies the equilibrium constant of r at temperature T. It
// covers everything K depends on, so a Reaction that is changed or
// replaced between runs gets new entries.
func kKey(r *equilibrium.Reaction, T float64) string {
	var b strings.Builder
	for _, ss := range [][]*equilibrium.Species{r.Reactants, r.Products} {
		for _, sp := range ss {
			fmt.Fprintf(&b, "%s %v %v;", sp.Name(), sp.Order(), sp.Coeffs())
		}
		b.WriteString("|")
	}
	fmt.Fprintf(&b, "%v %v|%s", r.StdEnthalpy, r.StdEntropy, strconv.FormatFloat(T, 'g', -1, 64))
	return b.String()
}

// Result holds the results of a Sweep.
type Result struct {
	Reaction                    *equilibrium.Reaction
	Temperatures, Pressures     []float64
	ReactantMoles, ProductMoles []float64

	// K holds the equilibrium constant at each temperature.
	K []float64

	// Chi holds the equilibrium extent of reaction [mol], indexed
	// by temperature and then pressure. Points that could not be solved
	// are NaN and have the reason in Err.
	Chi [][]float64
	Err [][]error

	// KEvaluations is the number of times the equilibrium constant
	// was calculated rather than taken from the cache.
	KEvaluations int
}

func (s *Sweep) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// kResult is stored in the request cache. Errors are carried in the
// payload because a failed request is not passed on to duplicates.
type kResult struct {
	k   float64
	err error
}

// Run solves every point on the grid. If a point cannot be solved and
// SkipFailures is false, Run returns the error for that point.
func (s *Sweep) Run(ctx context.Context) (*Result, error) {
	if s.Reaction == nil {
		return nil, fmt.Errorf("sweep: no reaction")
	}
	if len(s.Temperatures) == 0 || len(s.Pressures) == 0 {
		return nil, fmt.Errorf("sweep: empty grid: %d temperatures by %d pressures",
			len(s.Temperatures), len(s.Pressures))
	}
	if _, _, err := s.Reaction.Bounds(s.ReactantMoles, s.ProductMoles); err != nil {
		return nil, fmt.Errorf("sweep: %v", err)
	}

	nt, np := len(s.Temperatures), len(s.Pressures)
	res := &Result{
		Reaction:      s.Reaction,
		Temperatures:  append([]float64{}, s.Temperatures...),
		Pressures:     append([]float64{}, s.Pressures...),
		ReactantMoles: append([]float64{}, s.ReactantMoles...),
		ProductMoles:  append([]float64{}, s.ProductMoles...),
		K:             make([]float64, nt),
		Chi:           make([][]float64, nt),
		Err:           make([][]error, nt),
	}
	for i := range res.Chi {
		res.Chi[i] = make([]float64, np)
		res.Err[i] = make([]error, np)
	}

	nprocs := s.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(-1)
	}

	kCache := s.cache(nprocs)
	evaluated := kCache.Requests()

	log := s.log().WithField("reaction", s.Reaction.String())
	log.WithFields(logrus.Fields{
		"temperatures": nt,
		"pressures":    np,
		"workers":      nprocs,
	}).Info("sweep: starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errLock  sync.Mutex
		firstErr error
		failures int
	)
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < nt*np; ii += nprocs {
				if ctx.Err() != nil {
					return
				}
				i, j := ii/np, ii%np
				T, P := s.Temperatures[i], s.Pressures[j]

				r, err := kCache.NewRequest(ctx, kRequest{r: s.Reaction, T: T}, kKey(s.Reaction, T)).Result()
				if err != nil {
					return
				}
				kr := r.(kResult)
				if j == 0 {
					res.K[i] = kr.k
				}

				chi, err := math.NaN(), kr.err
				if err == nil {
					chi, err = s.Reaction.Conversion(P, s.ReactantMoles, s.ProductMoles, kr.k)
				}
				res.Chi[i][j] = chi
				if err == nil {
					log.WithFields(logrus.Fields{"T": T, "P": P, "K": kr.k, "chi": chi}).Debug("sweep: solved point")
					continue
				}
				err = fmt.Errorf("sweep: T=%g K, P=%g: %w", T, P, err)
				res.Err[i][j] = err
				errLock.Lock()
				failures++
				if !s.SkipFailures && firstErr == nil {
					firstErr = err
					cancel()
				}
				errLock.Unlock()
				if s.SkipFailures {
					log.WithFields(logrus.Fields{"T": T, "P": P}).Warn(err)
				}
			}
		}(pp)
	}
	wg.Wait()

	reqs := kCache.Requests()
	res.KEvaluations = reqs[len(reqs)-1] - evaluated[len(evaluated)-1]

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep: %v", err)
	}
	log.WithFields(logrus.Fields{
		"points":   nt * np,
		"failures": failures,
	}).Info("sweep: finished")
	return res, nil
}

// Failures returns the number of points that could not be solved.
func (r *Result) Failures() int {
	var n int
	for _, row := range r.Err {
		for _, err := range row {
			if err != nil {
				n++
			}
		}
	}
	return n
}

// Conversion returns the fractional conversion of the reactant at
// index i at every grid point, indexed the same way as Chi.
func (r *Result) Conversion(i int) ([][]float64, error) {
	out := make([][]float64, len(r.Chi))
	for ti, row := range r.Chi {
		out[ti] = make([]float64, len(row))
		for pi, chi := range row {
			c, err := r.Reaction.ReactantConversion(i, chi, r.ReactantMoles)
			if err != nil {
				return nil, fmt.Errorf("sweep: %v", err)
			}
			out[ti][pi] = c
		}
	}
	return out, nil
}
