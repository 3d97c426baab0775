package glicko2

import (
	"fmt"
	"math"
)

// solveVolatility finds the new volatility for a competitor with current
// Glicko-2 deviation phi and volatility sigma, given the period's delta and
// variance v. It brackets the root of f and refines it with the Illinois
// method (step 5 of Glickman's paper).
//
// An endpoint on which f is exactly zero is returned as the root at once;
// the Illinois step cannot move away from it.
//
// Both the bracket search and the refinement are bounded by maxIterations.
// Hitting the bound is a defect in the inputs, reported as ErrNoConvergence.
func (c *Calculator) solveVolatility(phi, sigma, delta, v float64) (float64, int, error) {
	a := math.Log(sigma * sigma)
	tau2 := c.tau * c.tau
	phi2 := phi * phi
	delta2 := delta * delta

	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi2 + v + ex
		return ex*(delta2-phi2-v-ex)/(2.0*d*d) - (x-a)/tau2
	}

	A := a
	var B float64
	if delta2 > phi2+v {
		B = math.Log(delta2 - phi2 - v)
	} else {
		k := 1
		B = a - float64(k)*math.Abs(c.tau)
		for f(B) < 0 {
			if k >= c.maxIterations {
				return 0, 0, fmt.Errorf("%w: no bracket after %d steps", ErrNoConvergence, k)
			}
			k++
			B = a - float64(k)*math.Abs(c.tau)
		}
	}

	fA, fB := f(A), f(B)
	if !finite(fA) || !finite(fB) {
		return 0, 0, fmt.Errorf("%w: f(A)=%v f(B)=%v", ErrNonFinite, fA, fB)
	}
	if fB == 0 {
		return math.Exp(B / 2.0), 0, nil
	}
	if fA == 0 {
		return math.Exp(A / 2.0), 0, nil
	}

	iterations := 0
	for math.Abs(B-A) > ConvergenceTolerance {
		if iterations >= c.maxIterations {
			return 0, iterations, fmt.Errorf("%w: |B-A|=%g after %d iterations", ErrNoConvergence, math.Abs(B-A), iterations)
		}
		iterations++

		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if !finite(fC) {
			return 0, iterations, fmt.Errorf("%w: f(C)=%v", ErrNonFinite, fC)
		}
		if fC == 0 {
			return math.Exp(C / 2.0), iterations, nil
		}
		if fC*fB < 0 {
			A, fA = B, fB
		} else {
			fA /= 2.0
		}
		B, fB = C, fC
	}

	return math.Exp(A / 2.0), iterations, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
