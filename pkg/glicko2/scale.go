package glicko2

// System constants from Glickman's paper.
const (
	DefaultRating        = 1500.0
	DefaultDeviation     = 350.0
	Scale                = 173.7178
	ConvergenceTolerance = 1e-6
)

// ToInternalRating converts a rating from the original (Elo-like) scale to the
// Glicko-2 scale.
func ToInternalRating(r float64) float64 { return (r - DefaultRating) / Scale }

// ToOriginalRating converts a Glicko-2 scale rating back to the original scale.
func ToOriginalRating(r float64) float64 { return r*Scale + DefaultRating }

// ToInternalDeviation converts a deviation from the original scale to the Glicko-2 scale.
func ToInternalDeviation(d float64) float64 { return d / Scale }

// ToOriginalDeviation converts a Glicko-2 scale deviation back to the original scale.
func ToOriginalDeviation(d float64) float64 { return d * Scale }
