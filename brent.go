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
)

// brent finds a root of f in the interval between xa and xb, where
// fa = f(xa) and fb = f(xb) must not have the same sign. It combines
// bisection, secant, and inverse quadratic interpolation steps as
// described in:
//
// Brent, R. P. (1973). Algorithms for Minimization Without Derivatives,
// Chapter 4. Prentice-Hall, Englewood Cliffs, NJ.
//
// The search stops when the bracket is narrower than xtol + rtol·|x|.
// It returns the root and the number of iterations used.
func brent(f func(float64) float64, xa, xb, fa, fb, xtol, rtol float64, maxIter int) (float64, int, error) {
	if fa*fb > 0 {
		return math.NaN(), 0, ErrNoSignChange
	}
	if fa == 0 {
		return xa, 0, nil
	}
	if fb == 0 {
		return xb, 0, nil
	}

	xpre, xcur := xa, xb
	fpre, fcur := fa, fb
	var xblk, fblk, spre, scur float64

	for i := 0; i < maxIter; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (xtol + rtol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, i + 1, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// secant
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// inverse quadratic interpolation
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}
		fcur = f(xcur)
	}
	return xcur, maxIter, fmt.Errorf("%w after %d iterations (last estimate %g)", ErrNoConvergence, maxIter, xcur)
}
