package glicko2

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSolveVolatility(t *testing.T) {
	Convey("Given the intermediate quantities from Glickman's example", t, func() {
		calc, err := NewCalculator(WithTau(0.5))
		So(err, ShouldBeNil)

		phi := 1.1513
		v := 1.7785
		delta := -0.4834

		Convey("When the volatility is solved", func() {
			sigma, iterations, err := calc.solveVolatility(phi, 0.06, delta, v)

			Convey("Then it converges to the published value", func() {
				So(err, ShouldBeNil)
				So(sigma, ShouldAlmostEqual, 0.05999, 0.0001)
				So(iterations, ShouldBeGreaterThan, 0)
				So(iterations, ShouldBeLessThanOrEqualTo, defaultMaxIterations)
			})
		})

		Convey("When delta dominates phi^2 + v", func() {
			sigma, _, err := calc.solveVolatility(0.2, 0.06, 5, 1)

			Convey("Then the upper bracket is used and volatility rises", func() {
				So(err, ShouldBeNil)
				So(sigma, ShouldBeGreaterThan, 0.06)
			})
		})

		Convey("When the iteration bound is too small", func() {
			calc.maxIterations = 2
			_, _, err := calc.solveVolatility(phi, 0.06, delta, v)

			Convey("Then it reports non-convergence", func() {
				So(errors.Is(err, ErrNoConvergence), ShouldBeTrue)
			})
		})
	})
}

func TestSolveVolatility_ExactRoot(t *testing.T) {
	Convey("Given inputs whose Illinois step lands exactly on the root", t, func() {
		calc, err := NewCalculator(WithTau(1.0964686343149965))
		So(err, ShouldBeNil)

		phi := 0.3730888831830697
		sigma := 0.08386059712186841
		delta := 0.11397012075093281
		v := 1.5620741689024475

		Convey("When the volatility is solved with the default bound", func() {
			got, iterations, err := calc.solveVolatility(phi, sigma, delta, v)

			Convey("Then the root is returned instead of exhausting the bound", func() {
				So(err, ShouldBeNil)
				So(iterations, ShouldBeLessThan, 10)
				So(got, ShouldAlmostEqual, math.Exp(-4.95964868218/2), 1e-6)
			})
		})
	})

	Convey("Given a bracket endpoint that is already a root", t, func() {
		calc, err := NewCalculator(WithTau(0.5))
		So(err, ShouldBeNil)

		Convey("When delta^2 - phi^2 - v equals sigma^2", func() {
			got, iterations, err := calc.solveVolatility(0.5, 1, 1.5, 1)

			Convey("Then sigma is kept without refinement", func() {
				So(err, ShouldBeNil)
				So(iterations, ShouldEqual, 0)
				So(got, ShouldEqual, 1.0)
			})
		})
	})
}

func TestSolveVolatility_RealisticPeriods(t *testing.T) {
	Convey("Given many seeded random periods with realistic values", t, func() {
		rng := rand.New(rand.NewPCG(20240601, 7))
		between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
		player := func() *Rating {
			r, err := NewRating(uuid.New(), between(1000, 2000), between(30, 350), between(0.03, 0.10))
			if err != nil {
				panic(err)
			}
			return r
		}

		var failures []string
		for i := 0; i < 20000; i++ {
			calc, err := NewCalculator(WithTau(between(0.2, 1.5)))
			So(err, ShouldBeNil)

			p := player()
			games := 1 + rng.IntN(10)
			results := make([]*Result, 0, games)
			for j := 0; j < games; j++ {
				opp := player()
				var res *Result
				switch rng.IntN(3) {
				case 0:
					res, err = NewResult(p, opp)
				case 1:
					res, err = NewResult(opp, p)
				default:
					res, err = NewDraw(p, opp)
				}
				if err != nil {
					panic(err)
				}
				results = append(results, res)
			}

			u, err := calc.compute(p, results)
			if err != nil {
				failures = append(failures, fmt.Sprintf("tau=%v %v: %v", calc.tau, p, err))
				continue
			}
			if !positive(u.volatility) || !positive(u.deviation) || !finite(u.rating) {
				failures = append(failures, fmt.Sprintf("tau=%v %v: bad update %+v", calc.tau, p, u))
			}
		}

		Convey("Then every solve converges within the default bound", func() {
			So(failures, ShouldBeEmpty)
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Given the Glicko-2 helper functions", t, func() {
		Convey("Then g is one for a certain opponent and shrinks with deviation", func() {
			So(g(0), ShouldEqual, 1)
			So(g(0.1727), ShouldAlmostEqual, 0.9955, 0.0001)
			So(g(1.7269), ShouldAlmostEqual, 0.7242, 0.0001)
		})

		Convey("Then the expected score is a half between equals", func() {
			So(expectedScore(0.3, 0.3, 1.2), ShouldEqual, 0.5)
			So(expectedScore(0, -0.5756, 0.1727), ShouldAlmostEqual, 0.639, 0.001)
		})

		Convey("Then finite rejects NaN and infinities", func() {
			So(finite(1), ShouldBeTrue)
			So(finite(math.NaN()), ShouldBeFalse)
			So(finite(math.Inf(-1)), ShouldBeFalse)
		})
	})
}
