package simulate

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	progressInterval     = time.Second
)

// Strength model constants.
const (
	// strengthScale converts a strength gap into a logistic win probability,
	// matching the Elo convention that 400 points is a 10:1 favourite.
	strengthScale = 400.0
	baseStrength  = 1500.0
)
