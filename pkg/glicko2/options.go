package glicko2

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithTau sets the constraint on volatility change over time.
// Reasonable values sit between 0.3 and 1.2.
func WithTau(tau float64) Option {
	return func(c *Calculator) {
		c.tau = tau
	}
}

// WithDefaultVolatility sets the volatility given to new competitors.
func WithDefaultVolatility(volatility float64) Option {
	return func(c *Calculator) {
		c.defaultVolatility = volatility
	}
}

// WithMaxIterations bounds both the bracket search and the Illinois
// refinement of the volatility solver.
func WithMaxIterations(n int) Option {
	return func(c *Calculator) {
		c.maxIterations = n
	}
}

// WithObserver registers an observer for solver and period statistics.
func WithObserver(o Observer) Option {
	return func(c *Calculator) {
		if o != nil {
			c.observer = o
		}
	}
}
