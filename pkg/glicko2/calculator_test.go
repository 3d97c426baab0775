package glicko2_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/glicko2"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingObserver struct {
	solves  []int
	periods [][3]int
}

func (o *recordingObserver) ObserveSolve(iterations int) {
	o.solves = append(o.solves, iterations)
}

func (o *recordingObserver) ObservePeriod(active, idle, results int) {
	o.periods = append(o.periods, [3]int{active, idle, results})
}

func mustRating(r, d, v float64) *glicko2.Rating {
	rating, err := glicko2.NewRating(uuid.New(), r, d, v)
	if err != nil {
		panic(err)
	}
	return rating
}

func TestNewCalculator(t *testing.T) {
	Convey("Given calculator options", t, func() {
		Convey("When none are supplied", func() {
			calc, err := glicko2.NewCalculator()

			Convey("Then the paper defaults apply", func() {
				So(err, ShouldBeNil)
				So(calc.Tau(), ShouldEqual, 0.75)
				So(calc.DefaultVolatility(), ShouldEqual, 0.06)
				So(calc.DefaultRating(), ShouldEqual, 1500.0)
				So(calc.DefaultDeviation(), ShouldEqual, 350.0)
			})
		})

		Convey("When tau and volatility are supplied", func() {
			calc, err := glicko2.NewCalculator(glicko2.WithTau(0.5), glicko2.WithDefaultVolatility(0.09))

			Convey("Then they are used", func() {
				So(err, ShouldBeNil)
				So(calc.Tau(), ShouldEqual, 0.5)
				So(calc.DefaultVolatility(), ShouldEqual, 0.09)
			})

			Convey("And new ratings get the system defaults", func() {
				id := uuid.New()
				r := calc.NewRating(id)
				So(r.ID(), ShouldEqual, id)
				So(r.Rating(), ShouldEqual, 1500.0)
				So(r.Deviation(), ShouldEqual, 350.0)
				So(r.Volatility(), ShouldEqual, 0.09)
				So(r.ResultCount(), ShouldEqual, 0)
			})
		})

		Convey("When tau is not positive", func() {
			_, err := glicko2.NewCalculator(glicko2.WithTau(0))

			Convey("Then construction fails", func() {
				So(errors.Is(err, glicko2.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the default volatility is negative", func() {
			_, err := glicko2.NewCalculator(glicko2.WithDefaultVolatility(-0.06))

			Convey("Then construction fails", func() {
				So(errors.Is(err, glicko2.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the iteration bound is zero", func() {
			_, err := glicko2.NewCalculator(glicko2.WithMaxIterations(0))

			Convey("Then construction fails", func() {
				So(errors.Is(err, glicko2.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestUpdateRatings_GlickmanExample(t *testing.T) {
	Convey("Given the example from Glickman's paper", t, func() {
		obs := &recordingObserver{}
		calc, err := glicko2.NewCalculator(
			glicko2.WithDefaultVolatility(0.06),
			glicko2.WithTau(0.5),
			glicko2.WithObserver(obs),
		)
		So(err, ShouldBeNil)

		player := mustRating(1500, 200, 0.06)
		o1 := mustRating(1400, 30, 0.06)
		o2 := mustRating(1550, 100, 0.06)
		o3 := mustRating(1700, 300, 0.06)
		idle := calc.NewRating(uuid.New())

		set := glicko2.NewPeriodResultSet()
		set.AddParticipant(idle)

		Convey("Then the player starts at the scale origin", func() {
			So(player.InternalRating(), ShouldAlmostEqual, 0, 0.00001)
			So(player.InternalDeviation(), ShouldAlmostEqual, 1.1513, 0.00001)
		})

		Convey("When the period is rated", func() {
			So(set.AddResult(player, o1), ShouldBeNil)
			So(set.AddResult(o2, player), ShouldBeNil)
			So(set.AddResult(o3, player), ShouldBeNil)

			So(calc.UpdateRatings(set), ShouldBeNil)

			Convey("Then the player matches the published values", func() {
				So(player.Rating(), ShouldAlmostEqual, 1464.06, 0.01)
				So(player.Deviation(), ShouldAlmostEqual, 151.52, 0.01)
				So(player.Volatility(), ShouldAlmostEqual, 0.05999, 0.001)
				So(player.ResultCount(), ShouldEqual, 3)
			})

			Convey("And opponents were updated from one result each", func() {
				So(o1.ResultCount(), ShouldEqual, 1)
				So(o1.Rating(), ShouldBeLessThan, 1400)
				So(o2.Rating(), ShouldBeGreaterThan, 1550)
				So(o3.Rating(), ShouldBeGreaterThan, 1700)
			})

			Convey("And the idle competitor only grew uncertain", func() {
				So(idle.Rating(), ShouldEqual, 1500.0)
				So(idle.Volatility(), ShouldEqual, 0.06)
				So(idle.Deviation(), ShouldBeGreaterThan, 350.0)
				So(idle.ResultCount(), ShouldEqual, 0)
			})

			Convey("And the results were cleared but the registration kept", func() {
				So(set.ResultCount(), ShouldEqual, 0)
				So(set.ResultsFor(player), ShouldBeEmpty)
				So(set.Participants(), ShouldHaveLength, 1)
				So(set.Tracked(idle), ShouldBeTrue)
			})

			Convey("And the observer saw four solves and one period", func() {
				So(obs.solves, ShouldHaveLength, 4)
				for _, it := range obs.solves {
					So(it, ShouldBeGreaterThan, 0)
				}
				So(obs.periods, ShouldResemble, [][3]int{{4, 1, 3}})
			})
		})
	})
}

func TestUpdateRatings_IdleCompetitor(t *testing.T) {
	Convey("Given a competitor registered without results", t, func() {
		calc, err := glicko2.NewCalculator(glicko2.WithTau(0.5))
		So(err, ShouldBeNil)
		r := mustRating(1720, 80, 0.07)
		set := glicko2.NewPeriodResultSet(r)

		Convey("When several periods pass", func() {
			prev := r.Deviation()
			for i := 0; i < 3; i++ {
				So(calc.UpdateRatings(set), ShouldBeNil)

				So(r.Rating(), ShouldAlmostEqual, 1720, 1e-9)
				So(r.Volatility(), ShouldEqual, 0.07)
				So(r.Deviation(), ShouldBeGreaterThan, prev)
				prev = r.Deviation()
			}

			Convey("Then the deviation follows sqrt(phi^2 + sigma^2) per period", func() {
				phi := glicko2.ToInternalDeviation(80)
				for i := 0; i < 3; i++ {
					phi = phi*phi + 0.07*0.07
					phi = sqrtNewton(phi)
				}
				So(r.Deviation(), ShouldAlmostEqual, glicko2.ToOriginalDeviation(phi), 1e-9)
			})
		})
	})
}

// sqrtNewton keeps the expectation independent of the code under test.
func sqrtNewton(x float64) float64 {
	z := x
	for i := 0; i < 50; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

type seed struct{ r, d, v float64 }

type game struct {
	a, b int
	draw bool
}

func ratePeriod(calc *glicko2.Calculator, seeds []seed, games []game) []*glicko2.Rating {
	players := make([]*glicko2.Rating, len(seeds))
	for i, s := range seeds {
		players[i] = mustRating(s.r, s.d, s.v)
	}
	set := glicko2.NewPeriodResultSet()
	for _, gm := range games {
		var err error
		if gm.draw {
			err = set.AddDraw(players[gm.a], players[gm.b])
		} else {
			err = set.AddResult(players[gm.a], players[gm.b])
		}
		if err != nil {
			panic(err)
		}
	}
	if err := calc.UpdateRatings(set); err != nil {
		panic(err)
	}
	return players
}

func permutations(games []game) [][]game {
	if len(games) <= 1 {
		return [][]game{append([]game(nil), games...)}
	}
	var out [][]game
	for i := range games {
		rest := make([]game, 0, len(games)-1)
		rest = append(rest, games[:i]...)
		rest = append(rest, games[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]game{games[i]}, p...))
		}
	}
	return out
}

func TestUpdateRatings_OrderIndependence(t *testing.T) {
	Convey("Given a period with wins, losses and draws among four competitors", t, func() {
		calc, err := glicko2.NewCalculator(glicko2.WithTau(0.5))
		So(err, ShouldBeNil)

		seeds := []seed{{1500, 200, 0.06}, {1400, 30, 0.06}, {1550, 100, 0.06}, {1700, 300, 0.06}}
		games := []game{{0, 1, false}, {2, 0, false}, {3, 0, false}, {1, 2, true}, {3, 1, false}}
		reference := ratePeriod(calc, seeds, games)

		Convey("When the results are recorded in every possible order", func() {
			orders := permutations(games)
			So(orders, ShouldHaveLength, 120)

			Convey("Then every competitor ends up with the same values", func() {
				for _, order := range orders {
					got := ratePeriod(calc, seeds, order)
					for i := range got {
						So(got[i].Rating(), ShouldAlmostEqual, reference[i].Rating(), 1e-9)
						So(got[i].Deviation(), ShouldAlmostEqual, reference[i].Deviation(), 1e-9)
						So(got[i].Volatility(), ShouldAlmostEqual, reference[i].Volatility(), 1e-12)
						So(got[i].ResultCount(), ShouldEqual, reference[i].ResultCount())
					}
				}
			})
		})

		Convey("When the update is compared with rating each competitor alone", func() {
			// Rating competitor 0 against frozen copies of its opponents must
			// give the same answer as the batch.
			p := mustRating(1500, 200, 0.06)
			set := glicko2.NewPeriodResultSet()
			So(set.AddResult(p, mustRating(1400, 30, 0.06)), ShouldBeNil)
			So(set.AddResult(mustRating(1550, 100, 0.06), p), ShouldBeNil)
			So(set.AddResult(mustRating(1700, 300, 0.06), p), ShouldBeNil)
			So(calc.UpdateRatings(set), ShouldBeNil)

			Convey("Then the batch did not leak new ratings into the computation", func() {
				So(reference[0].Rating(), ShouldAlmostEqual, p.Rating(), 1e-9)
				So(reference[0].Deviation(), ShouldAlmostEqual, p.Deviation(), 1e-9)
			})
		})
	})
}

func TestUpdateRatings_Atomicity(t *testing.T) {
	Convey("Given a period where one competitor cannot be rated", t, func() {
		calc, err := glicko2.NewCalculator(glicko2.WithTau(0.5))
		So(err, ShouldBeNil)

		good1 := mustRating(1500, 200, 0.06)
		good2 := mustRating(1600, 150, 0.06)
		// Far enough above everyone that its expected score is exactly one.
		bad := mustRating(1e300, 90, 0.06)

		set := glicko2.NewPeriodResultSet()
		So(set.AddResult(good1, good2), ShouldBeNil)
		So(set.AddResult(bad, good1), ShouldBeNil)
		before := []glicko2.Snapshot{good1.Snapshot(), good2.Snapshot(), bad.Snapshot()}

		Convey("When the period is rated", func() {
			err := calc.UpdateRatings(set)

			Convey("Then the batch fails as a whole", func() {
				So(errors.Is(err, glicko2.ErrNonFinite), ShouldBeTrue)
				So(good1.Snapshot(), ShouldResemble, before[0])
				So(good2.Snapshot(), ShouldResemble, before[1])
				So(bad.Snapshot(), ShouldResemble, before[2])
			})

			Convey("And the results are still there for a retry", func() {
				So(set.ResultCount(), ShouldEqual, 2)
				So(set.ResultsFor(good1), ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a solver bound too small to converge", t, func() {
		calc, err := glicko2.NewCalculator(glicko2.WithTau(0.5), glicko2.WithMaxIterations(1))
		So(err, ShouldBeNil)

		player := mustRating(1500, 200, 0.06)
		opp := mustRating(1400, 30, 0.06)
		set := glicko2.NewPeriodResultSet()
		So(set.AddResult(player, opp), ShouldBeNil)

		Convey("When the period is rated", func() {
			err := calc.UpdateRatings(set)

			Convey("Then the defect is surfaced and nothing is committed", func() {
				So(errors.Is(err, glicko2.ErrNoConvergence), ShouldBeTrue)
				So(player.Rating(), ShouldEqual, 1500.0)
				So(player.Deviation(), ShouldEqual, 200.0)
				So(opp.Rating(), ShouldEqual, 1400.0)
				So(player.ResultCount(), ShouldEqual, 0)
			})
		})
	})
}

func TestUpdateRatings_Identity(t *testing.T) {
	Convey("Given two competitors with identical state", t, func() {
		calc, err := glicko2.NewCalculator()
		So(err, ShouldBeNil)
		id := uuid.New()
		a, _ := glicko2.NewRating(id, 1500, 350, 0.06)
		b, _ := glicko2.NewRating(id, 1500, 350, 0.06)

		Convey("When one beats the other", func() {
			set := glicko2.NewPeriodResultSet()
			So(set.AddResult(a, b), ShouldBeNil)
			So(set.Participants(), ShouldHaveLength, 2)
			So(calc.UpdateRatings(set), ShouldBeNil)

			Convey("Then they are rated as distinct competitors", func() {
				So(a.Rating(), ShouldBeGreaterThan, 1500)
				So(b.Rating(), ShouldBeLessThan, 1500)
				So(a.Rating()-1500, ShouldAlmostEqual, 1500-b.Rating(), 1e-9)
			})
		})
	})
}
